package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

// FormatSQLite is the registry key of SQLiteReader.
const FormatSQLite = "sqlite"

// DefaultSQLiteTable is read when SQLiteReader.Table is empty.
const DefaultSQLiteTable = "repasses"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteReader reads the required columns from a table in a SQLite file.
// The database is opened read-only.
type SQLiteReader struct {
	Table string
}

// Format returns the reader name.
func (r *SQLiteReader) Format() string { return FormatSQLite }

// Read selects every row of the table.
func (r *SQLiteReader) Read(ctx context.Context, path string) (*Table, error) {
	table := r.Table
	if table == "" {
		table = DefaultSQLiteTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	if _, err := (&Table{Header: cols}).Columns(); err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(RequiredColumns, ", "), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	t := &Table{Header: RequiredColumns}
	for rows.Next() {
		cells := make([]sql.NullString, len(RequiredColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return t, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}
