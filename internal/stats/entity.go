package stats

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/repasses-dev/repasses/internal/model"
)

// EntityStats aggregates the disbursements of one beneficiary.
type EntityStats struct {
	Beneficiary    string
	Count          int
	Sum            decimal.Decimal
	Mean           float64
	Functions      []string // distinct, first-seen order
	FunctionsLabel string   // Functions joined with ", "
}

// ByEntity aggregates per beneficiary and returns the topN largest by total
// paid, descending. Equal totals keep the order in which the beneficiaries
// first appear in records. topN <= 0 returns every beneficiary.
func ByEntity(records []model.Record, topN int) []EntityStats {
	index := make(map[string]int)
	var out []EntityStats
	funcsSeen := make([]map[string]bool, 0)

	for _, r := range records {
		i, ok := index[r.Beneficiary]
		if !ok {
			i = len(out)
			index[r.Beneficiary] = i
			out = append(out, EntityStats{Beneficiary: r.Beneficiary, Sum: decimal.Zero})
			funcsSeen = append(funcsSeen, make(map[string]bool))
		}
		e := &out[i]
		e.Count++
		e.Sum = e.Sum.Add(r.AmountPaid)
		if !funcsSeen[i][r.Function] {
			funcsSeen[i][r.Function] = true
			e.Functions = append(e.Functions, r.Function)
		}
	}

	for i := range out {
		e := &out[i]
		e.Mean = e.Sum.InexactFloat64() / float64(e.Count)
		e.FunctionsLabel = strings.Join(e.Functions, ", ")
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sum.GreaterThan(out[j].Sum)
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
