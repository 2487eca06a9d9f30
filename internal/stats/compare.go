package stats

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/repasses-dev/repasses/internal/model"
)

// MunicipalityStats is one column of a comparison.
type MunicipalityStats struct {
	Municipality string
	HasData      bool
	Stats
	Years       []Group[int32]
	TopEntities []EntityStats
}

// PivotRow holds, for one government function, the total paid by each
// municipality that has records under it.
type PivotRow struct {
	Function string
	Sums     map[string]decimal.Decimal
}

// Comparison lines up N municipalities side by side.
type Comparison struct {
	Municipalities []MunicipalityStats // request order
	Years          []int32             // union of years, ascending
	Functions      []PivotRow          // ascending by function
}

// Compare builds a comparison for the given municipality ids. A municipality
// without records is kept with HasData false so callers can show a
// placeholder instead of failing.
func Compare(records []model.Record, municipalities []string, topN int) Comparison {
	ids := model.NormalizeMunicipalities(municipalities)
	parts := make(map[string][]model.Record, len(ids))
	for _, r := range records {
		parts[r.Municipality] = append(parts[r.Municipality], r)
	}

	cmp := Comparison{
		Municipalities: make([]MunicipalityStats, 0, len(ids)),
		Years:          distinctSorted(records, func(r model.Record) int32 { return r.Year }),
	}
	for _, id := range ids {
		recs := parts[id]
		cmp.Municipalities = append(cmp.Municipalities, MunicipalityStats{
			Municipality: id,
			HasData:      len(recs) > 0,
			Stats:        compute(recs),
			Years:        ByYear(recs),
			TopEntities:  ByEntity(recs, topN),
		})
	}

	pivot := make(map[string]map[string]decimal.Decimal)
	for _, id := range ids {
		for _, r := range parts[id] {
			row, ok := pivot[r.Function]
			if !ok {
				row = make(map[string]decimal.Decimal)
				pivot[r.Function] = row
			}
			row[id] = row[id].Add(r.AmountPaid)
		}
	}
	functions := make([]string, 0, len(pivot))
	for f := range pivot {
		functions = append(functions, f)
	}
	slices.Sort(functions)
	for _, f := range functions {
		cmp.Functions = append(cmp.Functions, PivotRow{Function: f, Sums: pivot[f]})
	}
	return cmp
}
