// Package stats computes summaries and group-by aggregations over loaded
// records. Every function is pure; results are fresh values that the caller
// may cache and must treat as read-only.
package stats

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"

	"github.com/repasses-dev/repasses/internal/model"
)

// Stats are the per-group statistics of paid amounts.
// StdDev is the sample standard deviation; it is NaN for groups of one.
type Stats struct {
	Count         int
	Sum           decimal.Decimal
	Mean          float64
	Median        float64
	StdDev        float64
	Beneficiaries int
}

// Group pairs a grouping key with its statistics.
type Group[K comparable] struct {
	Key K
	Stats
}

// Summary describes a whole record set.
type Summary struct {
	Total         decimal.Decimal
	Mean          float64
	Median        float64
	StdDev        float64
	Min           float64
	Max           float64
	Count         int
	Beneficiaries int
	Years         []int32
	Functions     []string
}

// Global summarizes records. On an empty set counts and total are zero and
// every float statistic is NaN.
func Global(records []model.Record) Summary {
	st := compute(records)
	values := amounts(records)
	s := Summary{
		Total:         st.Sum,
		Mean:          st.Mean,
		Median:        st.Median,
		StdDev:        st.StdDev,
		Min:           math.NaN(),
		Max:           math.NaN(),
		Count:         st.Count,
		Beneficiaries: st.Beneficiaries,
		Years:         distinctSorted(records, func(r model.Record) int32 { return r.Year }),
		Functions:     distinctSorted(records, func(r model.Record) string { return r.Function }),
	}
	if len(values) > 0 {
		s.Min = slices.Min(values)
		s.Max = slices.Max(values)
	}
	return s
}

// ByYear groups records by fiscal year, ascending.
func ByYear(records []model.Record) []Group[int32] {
	return groupBy(records, func(r model.Record) int32 { return r.Year })
}

// ByFunction groups records by government function, ascending.
func ByFunction(records []model.Record) []Group[string] {
	return groupBy(records, func(r model.Record) string { return r.Function })
}

// ByMunicipality groups records by municipality id, ascending.
func ByMunicipality(records []model.Record) []Group[string] {
	return groupBy(records, func(r model.Record) string { return r.Municipality })
}

// groupBy partitions records by key and returns groups sorted by key.
func groupBy[K constraints.Ordered](records []model.Record, key func(model.Record) K) []Group[K] {
	parts := make(map[K][]model.Record)
	for _, r := range records {
		k := key(r)
		parts[k] = append(parts[k], r)
	}
	keys := make([]K, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]Group[K], 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group[K]{Key: k, Stats: compute(parts[k])})
	}
	return groups
}

func compute(records []model.Record) Stats {
	values := amounts(records)
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.AmountPaid)
	}
	return Stats{
		Count:         len(records),
		Sum:           sum,
		Mean:          mean(values),
		Median:        median(values),
		StdDev:        stdDev(values),
		Beneficiaries: countDistinct(records, func(r model.Record) string { return r.Beneficiary }),
	}
}

func amounts(records []model.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.AmountPaid.InexactFloat64()
	}
	return out
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

func stdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// median averages the two middle values of an even-sized set.
func median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func countDistinct[K comparable](records []model.Record, key func(model.Record) K) int {
	seen := make(map[K]struct{}, len(records))
	for _, r := range records {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

func distinctSorted[K constraints.Ordered](records []model.Record, key func(model.Record) K) []K {
	seen := make(map[K]struct{})
	out := make([]K, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
