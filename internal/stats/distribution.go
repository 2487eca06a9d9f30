package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/repasses-dev/repasses/internal/model"
)

// Distribution extends Summary with shape statistics.
type Distribution struct {
	Summary
	Skewness       float64 // adjusted Fisher-Pearson; NaN below 3 values
	ExcessKurtosis float64 // sample-adjusted; NaN below 4 values
}

// Advanced summarizes records including skewness and excess kurtosis.
// A set of identical values has zero skewness and kurtosis.
func Advanced(records []model.Record) Distribution {
	d := Distribution{
		Summary:        Global(records),
		Skewness:       math.NaN(),
		ExcessKurtosis: math.NaN(),
	}
	x := amounts(records)
	constant := len(x) > 0 && d.Min == d.Max
	if len(x) >= 3 {
		if constant {
			d.Skewness = 0
		} else {
			d.Skewness = stat.Skew(x, nil)
		}
	}
	if len(x) >= 4 {
		if constant {
			d.ExcessKurtosis = 0
		} else {
			d.ExcessKurtosis = stat.ExKurtosis(x, nil)
		}
	}
	return d
}
