// Package source reads the raw disbursement table from a spreadsheet-like
// location: an xlsx workbook, a CSV export, a Google Sheet or a SQLite table.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Required column names, as they appear in the source header.
const (
	ColMunicipality = "municipio"
	ColYear         = "exercicio"
	ColAmount       = "vl_pago"
	ColBeneficiary  = "razao_social"
	ColFunction     = "funcao_de_governo"
)

// RequiredColumns lists every column a source must provide.
var RequiredColumns = []string{ColMunicipality, ColYear, ColAmount, ColBeneficiary, ColFunction}

var (
	// ErrMissingColumn reports a source without one of RequiredColumns.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnknownFormat reports a format with no registered Reader.
	ErrUnknownFormat = errors.New("unknown source format")
)

// Table is the raw content of a source: a header and string cells.
// Rows may be shorter than Header when trailing cells are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns maps every required column to its index in the header.
// Header names are matched case-insensitively after trimming.
func (t *Table) Columns() (map[string]int, error) {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := normalizeHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	cols := make(map[string]int, len(RequiredColumns))
	for _, c := range RequiredColumns {
		i, ok := idx[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		cols[c] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// Cell returns row[i], or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// Reader loads a Table from a location.
type Reader interface {
	Read(ctx context.Context, location string) (*Table, error)
	Format() string
}

// Registry holds named readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate source format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// Lookup is Get with an ErrUnknownFormat error instead of nil.
func (r *Registry) Lookup(format string) (Reader, error) {
	rd := r.Get(format)
	if rd == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return rd, nil
}

// Options configures the built-in readers.
type Options struct {
	Sheet           string // xlsx sheet name; first sheet when empty
	Table           string // sqlite table name
	CredentialsFile string // Google service-account JSON
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register(&XLSXReader{Sheet: opts.Sheet})
	r.Register(&CSVReader{})
	r.Register(&SQLiteReader{Table: opts.Table})
	r.Register(&SheetsReader{CredentialsFile: opts.CredentialsFile})
	return r
}

// SheetsPrefix marks a Google Sheets location: "sheets:<spreadsheetID>[!range]".
const SheetsPrefix = "sheets:"

// DetectFormat guesses a reader format from a location.
func DetectFormat(location string) (string, error) {
	if strings.HasPrefix(location, SheetsPrefix) {
		return FormatSheets, nil
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: cannot detect format of %q", ErrUnknownFormat, location)
}

// Fingerprint identifies the current version of a location. Local files
// use size and modification time; remote sources return a constant, so
// their cached results only go away on explicit invalidation or TTL.
func Fingerprint(location string) (string, error) {
	if strings.HasPrefix(location, SheetsPrefix) {
		return "remote", nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", location, err)
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}
