// Package loader turns a raw source table into validated records for the
// requested municipalities.
package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/repasses-dev/repasses/internal/log"
	"github.com/repasses-dev/repasses/internal/model"
	"github.com/repasses-dev/repasses/internal/source"
)

// ErrNoMunicipality is returned when Load is called without a usable name.
var ErrNoMunicipality = errors.New("no municipality requested")

// LoadError is the single failure a load reports. No records accompany it.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Result is the outcome of a successful load.
type Result struct {
	Records        []model.Record
	Municipalities []string // normalized request, first-seen order
	Dropped        int      // rows of the requested municipalities that failed coercion
	Source         string
}

// Loader reads records from one source location.
type Loader struct {
	reader   source.Reader
	location string
	log      *log.Logger
}

// New creates a Loader.
func New(reader source.Reader, location string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{reader: reader, location: location, log: logger.WithComponent(log.ComponentLoader)}
}

// Location returns the source location this loader reads.
func (l *Loader) Location() string { return l.location }

// Load reads every row of the source and keeps the valid rows of the given
// municipalities. Any read or parse failure fails the whole call with a
// *LoadError and a nil Result.
func (l *Loader) Load(ctx context.Context, municipalities ...string) (*Result, error) {
	start := time.Now()
	res, err := l.load(ctx, municipalities)
	if err != nil {
		l.log.ErrorContext(ctx, "load failed",
			log.FieldSource, l.location,
			log.FieldMunicipalities, strings.Join(municipalities, ","),
			log.FieldError, err)
		return nil, &LoadError{Source: l.location, Err: err}
	}
	if res.Dropped > 0 {
		l.log.WarnContext(ctx, "dropped invalid rows",
			log.FieldSource, l.location,
			log.FieldDropped, res.Dropped)
	}
	l.log.DebugContext(ctx, "loaded records",
		log.FieldSource, l.location,
		log.FieldMunicipalities, strings.Join(res.Municipalities, ","),
		log.FieldKept, len(res.Records),
		log.FieldDropped, res.Dropped,
		log.FieldDuration, time.Since(start).Milliseconds())
	return res, nil
}

func (l *Loader) load(ctx context.Context, municipalities []string) (*Result, error) {
	want := model.NormalizeMunicipalities(municipalities)
	if len(want) == 0 {
		return nil, ErrNoMunicipality
	}
	tbl, err := l.reader.Read(ctx, l.location)
	if err != nil {
		return nil, err
	}
	res, err := Parse(tbl, want)
	if err != nil {
		return nil, err
	}
	res.Source = l.location
	return res, nil
}

// Parse filters and coerces a raw table. Rows outside the requested
// municipalities are skipped; rows inside them that fail coercion are
// dropped and counted.
func Parse(tbl *source.Table, municipalities []string) (*Result, error) {
	want := model.NormalizeMunicipalities(municipalities)
	if len(want) == 0 {
		return nil, ErrNoMunicipality
	}
	cols, err := tbl.Columns()
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(want))
	for _, m := range want {
		keep[m] = true
	}

	res := &Result{Municipalities: want, Records: make([]model.Record, 0)}
	for i, row := range tbl.Rows {
		muni := model.NormalizeMunicipality(source.Cell(row, cols[source.ColMunicipality]))
		if !keep[muni] {
			continue
		}
		rec, err := UnmarshalRecord(row, cols)
		if err != nil {
			res.Dropped++
			continue
		}
		rec.Municipality = muni
		rec.Row = i + 2
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// UnmarshalRecord coerces one raw row. cols maps required column names to
// row indexes, as returned by source.Table.Columns.
func UnmarshalRecord(row []string, cols map[string]int) (model.Record, error) {
	year, err := ParseYear(source.Cell(row, cols[source.ColYear]))
	if err != nil {
		return model.Record{}, err
	}
	amount, err := ParseAmount(source.Cell(row, cols[source.ColAmount]))
	if err != nil {
		return model.Record{}, err
	}
	return model.Record{
		Municipality: model.NormalizeMunicipality(source.Cell(row, cols[source.ColMunicipality])),
		Year:         year,
		AmountPaid:   amount,
		Beneficiary:  model.FillMissing(source.Cell(row, cols[source.ColBeneficiary])),
		Function:     model.FillMissing(source.Cell(row, cols[source.ColFunction])),
	}, nil
}

// ParseYear coerces a fiscal year. Fractional values are truncated
// ("2021.0" -> 2021); the result must fit in an int32.
func ParseYear(s string) (int32, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("parsing exercicio %q: %w", s, err)
	}
	y := d.Truncate(0)
	if y.LessThan(decimal.NewFromInt(math.MinInt32)) || y.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, fmt.Errorf("parsing exercicio %q: out of range", s)
	}
	return int32(y.IntPart()), nil
}

// ParseAmount coerces a paid amount. Negative amounts are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseNumber(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing vl_pago %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("parsing vl_pago %q: negative amount", s)
	}
	return d, nil
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}
	return decimal.NewFromString(s)
}
