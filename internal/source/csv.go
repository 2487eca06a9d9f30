package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// FormatCSV is the registry key of CSVReader.
const FormatCSV = "csv"

// csvRow holds the required columns of one CSV line.
type csvRow struct {
	Municipality string `csv:"municipio"`
	Year         string `csv:"exercicio"`
	Amount       string `csv:"vl_pago"`
	Beneficiary  string `csv:"razao_social"`
	Function     string `csv:"funcao_de_governo"`
}

// CSVReader reads a CSV export. The delimiter is "," or ";" (the usual
// choice of Brazilian spreadsheet exports), detected from the header line.
type CSVReader struct{}

// Format returns the reader name.
func (r *CSVReader) Format() string { return FormatCSV }

// Read parses the CSV file at path.
func (r *CSVReader) Read(ctx context.Context, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseCSV(data)
}

// ParseCSV decodes CSV bytes into a Table holding the required columns.
func ParseCSV(data []byte) (*Table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	hr := &headerReader{r: cr}

	var rows []csvRow
	if err := gocsv.UnmarshalCSV(hr, &rows); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	// gocsv ignores absent struct fields, so required columns are checked here.
	if _, err := (&Table{Header: hr.header}).Columns(); err != nil {
		return nil, err
	}

	t := &Table{Header: RequiredColumns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{row.Municipality, row.Year, row.Amount, row.Beneficiary, row.Function})
	}
	return t, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// headerReader normalizes the header row before gocsv matches it against
// struct tags, so "Municipio " and "MUNICIPIO" both bind.
type headerReader struct {
	r      *csv.Reader
	header []string
}

func (h *headerReader) Read() ([]string, error) {
	rec, err := h.r.Read()
	if err != nil {
		return nil, err
	}
	if h.header == nil {
		h.normalize(rec)
	}
	return rec, nil
}

func (h *headerReader) ReadAll() ([][]string, error) {
	recs, err := h.r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 && h.header == nil {
		h.normalize(recs[0])
	}
	return recs, nil
}

func (h *headerReader) normalize(rec []string) {
	for i := range rec {
		rec[i] = normalizeHeader(rec[i])
	}
	h.header = rec
}
