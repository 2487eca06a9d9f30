// Package export writes aggregation results as CSV files.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/repasses-dev/repasses/internal/model"
	"github.com/repasses-dev/repasses/internal/stats"
)

// Kinds of export.
const (
	KindYears     = "years"
	KindFunctions = "functions"
	KindEntities  = "entities"
	KindRecords   = "records"
	KindCompare   = "compare"
)

// Kinds lists every supported export kind.
var Kinds = []string{KindYears, KindFunctions, KindEntities, KindRecords, KindCompare}

// YearRow is one line of a per-year export.
type YearRow struct {
	Year          int32  `csv:"exercicio"`
	Count         int    `csv:"quantidade"`
	Total         string `csv:"total"`
	Mean          string `csv:"media"`
	Median        string `csv:"mediana"`
	StdDev        string `csv:"desvio_padrao"`
	Beneficiaries int    `csv:"beneficiarios"`
}

// FunctionRow is one line of a per-function export.
type FunctionRow struct {
	Function      string `csv:"funcao_de_governo"`
	Count         int    `csv:"quantidade"`
	Total         string `csv:"total"`
	Mean          string `csv:"media"`
	Median        string `csv:"mediana"`
	StdDev        string `csv:"desvio_padrao"`
	Beneficiaries int    `csv:"beneficiarios"`
}

// EntityRow is one line of a beneficiary ranking.
type EntityRow struct {
	Rank        int    `csv:"posicao"`
	Beneficiary string `csv:"razao_social"`
	Count       int    `csv:"quantidade"`
	Total       string `csv:"total"`
	Mean        string `csv:"media"`
	Functions   string `csv:"funcoes"`
}

// RecordRow is one validated disbursement.
type RecordRow struct {
	Municipality string `csv:"municipio"`
	Year         int32  `csv:"exercicio"`
	AmountPaid   string `csv:"vl_pago"`
	Beneficiary  string `csv:"razao_social"`
	Function     string `csv:"funcao_de_governo"`
	Row          int    `csv:"linha"`
}

// CompareRow is one cell of the function by municipality pivot.
type CompareRow struct {
	Function     string `csv:"funcao_de_governo"`
	Municipality string `csv:"municipio"`
	Total        string `csv:"total"`
}

// YearRows converts per-year groups.
func YearRows(groups []stats.Group[int32]) []YearRow {
	out := make([]YearRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, YearRow{
			Year:          g.Key,
			Count:         g.Count,
			Total:         g.Sum.StringFixed(2),
			Mean:          fixed(g.Mean),
			Median:        fixed(g.Median),
			StdDev:        fixed(g.StdDev),
			Beneficiaries: g.Beneficiaries,
		})
	}
	return out
}

// FunctionRows converts per-function groups.
func FunctionRows(groups []stats.Group[string]) []FunctionRow {
	out := make([]FunctionRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, FunctionRow{
			Function:      g.Key,
			Count:         g.Count,
			Total:         g.Sum.StringFixed(2),
			Mean:          fixed(g.Mean),
			Median:        fixed(g.Median),
			StdDev:        fixed(g.StdDev),
			Beneficiaries: g.Beneficiaries,
		})
	}
	return out
}

// EntityRows converts a beneficiary ranking.
func EntityRows(entities []stats.EntityStats) []EntityRow {
	out := make([]EntityRow, 0, len(entities))
	for i, e := range entities {
		out = append(out, EntityRow{
			Rank:        i + 1,
			Beneficiary: e.Beneficiary,
			Count:       e.Count,
			Total:       e.Sum.StringFixed(2),
			Mean:        fixed(e.Mean),
			Functions:   e.FunctionsLabel,
		})
	}
	return out
}

// RecordRows converts records.
func RecordRows(records []model.Record) []RecordRow {
	out := make([]RecordRow, 0, len(records))
	for _, r := range records {
		out = append(out, RecordRow{
			Municipality: r.Municipality,
			Year:         r.Year,
			AmountPaid:   r.AmountPaid.StringFixed(2),
			Beneficiary:  r.Beneficiary,
			Function:     r.Function,
			Row:          r.Row,
		})
	}
	return out
}

// CompareRows flattens a comparison pivot. Municipalities without records
// under a function are written with a zero total.
func CompareRows(cmp stats.Comparison) []CompareRow {
	var out []CompareRow
	for _, p := range cmp.Functions {
		for _, m := range cmp.Municipalities {
			sum := p.Sums[m.Municipality]
			out = append(out, CompareRow{
				Function:     p.Function,
				Municipality: m.Municipality,
				Total:        sum.StringFixed(2),
			})
		}
	}
	return out
}

// Write encodes rows as CSV with a header line.
func Write[T any](w io.Writer, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	return nil
}

// WriteFile encodes rows into a new file at path.
func WriteFile[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fixed(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}
