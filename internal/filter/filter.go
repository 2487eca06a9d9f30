// Package filter narrows a record set by year, government function and
// paid-amount range.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/repasses-dev/repasses/internal/model"
)

// Criteria selects records. Every dimension is optional: a nil or empty
// set does not restrict, and the amount range applies only when both
// bounds are set. Dimensions combine with AND.
type Criteria struct {
	Years     []int32
	Functions []string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// IsZero reports whether c restricts nothing.
func (c Criteria) IsZero() bool {
	return len(c.Years) == 0 && len(c.Functions) == 0 && !c.hasRange()
}

func (c Criteria) hasRange() bool {
	return c.MinAmount != nil && c.MaxAmount != nil
}

// Apply returns the records matching c in their original order. The input
// slice is never modified; the result is always a new slice.
func Apply(records []model.Record, c Criteria) []model.Record {
	years := make(map[int32]bool, len(c.Years))
	for _, y := range c.Years {
		years[y] = true
	}
	functions := make(map[string]bool, len(c.Functions))
	for _, f := range c.Functions {
		functions[f] = true
	}

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if len(years) > 0 && !years[r.Year] {
			continue
		}
		if len(functions) > 0 && !functions[r.Function] {
			continue
		}
		if c.hasRange() && (r.AmountPaid.LessThan(*c.MinAmount) || r.AmountPaid.GreaterThan(*c.MaxAmount)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Key is a canonical, order-independent encoding of c for cache keys.
func (c Criteria) Key() string {
	years := slices.Clone(c.Years)
	slices.Sort(years)
	years = slices.Compact(years)
	ys := make([]string, len(years))
	for i, y := range years {
		ys[i] = strconv.Itoa(int(y))
	}

	functions := slices.Clone(c.Functions)
	slices.Sort(functions)
	functions = slices.Compact(functions)

	rng := "*"
	if c.hasRange() {
		rng = c.MinAmount.String() + ".." + c.MaxAmount.String()
	}
	return fmt.Sprintf("y=%s|f=%s|v=%s", strings.Join(ys, ","), strings.Join(functions, "\x1f"), rng)
}

// ParseYears converts flag values such as "2021" into years.
func ParseYears(values []string) ([]int32, error) {
	out := make([]int32, 0, len(values))
	for _, v := range values {
		y, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", v, err)
		}
		out = append(out, int32(y))
	}
	return out, nil
}

// ParseAmount converts a flag value into an amount bound; "" yields nil.
func ParseAmount(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return &d, nil
}
