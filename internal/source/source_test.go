package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns(t *testing.T) {
	tbl := &Table{Header: []string{"ID", " Municipio ", "EXERCICIO", "vl_pago", "razao_social", "funcao_de_governo"}}
	cols, err := tbl.Columns()
	require.NoError(t, err)
	assert.Equal(t, 1, cols[ColMunicipality])
	assert.Equal(t, 2, cols[ColYear])
	assert.Equal(t, 5, cols[ColFunction])
}

func TestColumnsMissing(t *testing.T) {
	tbl := &Table{Header: []string{"municipio", "exercicio"}}
	_, err := tbl.Columns()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "vl_pago")
	assert.Contains(t, err.Error(), "funcao_de_governo")
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "b", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"data/repasses.xlsx", FormatXLSX},
		{"data/REPASSES.XLSX", FormatXLSX},
		{"export.csv", FormatCSV},
		{"repasses.db", FormatSQLite},
		{"repasses.sqlite", FormatSQLite},
		{"sheets:1AbC", FormatSheets},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.location)
		require.NoError(t, err, tt.location)
		assert.Equal(t, tt.want, got, tt.location)
	}

	_, err := DetectFormat("repasses.json")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(Options{})
	for _, f := range []string{"xlsx", "CSV", "sqlite", "sheets"} {
		assert.NotNil(t, r.Get(f), f)
	}
	assert.Nil(t, r.Get("parquet"))

	_, err := r.Lookup("parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Panics(t, func() { r.Register(&CSVReader{}) })
}

func TestXLSXReader(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"municipio", "exercicio", "vl_pago", "razao_social", "funcao_de_governo"},
		{"Cotia", 2021, 1234.56, "Santa Casa", "Saúde"},
		{"Itapevi", 2022, 10, "APAE", "Educação"},
	})

	tbl, err := (&XLSXReader{}).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Cotia", "2021", "1234.56", "Santa Casa", "Saúde"}, tbl.Rows[0])
}

func TestXLSXReaderNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Repasses", [][]any{
		{"municipio", "exercicio", "vl_pago", "razao_social", "funcao_de_governo"},
		{"Cotia", 2021, 5, "X", "Y"},
	})

	tbl, err := (&XLSXReader{Sheet: "Repasses"}).Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	_, err = (&XLSXReader{Sheet: "Nope"}).Read(context.Background(), path)
	assert.Error(t, err)
}

func TestXLSXReaderMissingFile(t *testing.T) {
	_, err := (&XLSXReader{}).Read(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseCSV(t *testing.T) {
	data := "\ufeffMunicipio;Exercicio;VL_PAGO;razao_social;funcao_de_governo;extra\n" +
		"Cotia;2021;1234.56;Santa Casa;Saúde;x\n" +
		"Itapevi;2022;;;Educação;y\n"

	tbl, err := ParseCSV([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Cotia", "2021", "1234.56", "Santa Casa", "Saúde"}, tbl.Rows[0])
	assert.Equal(t, []string{"Itapevi", "2022", "", "", "Educação"}, tbl.Rows[1])
}

func TestParseCSVCommaDelimited(t *testing.T) {
	data := "municipio,exercicio,vl_pago,razao_social,funcao_de_governo\n" +
		"Cotia,2021,10.5,\"Instituto A, B\",Saúde\n"

	tbl, err := ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Instituto A, B", tbl.Rows[0][3])
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := ParseCSV([]byte("municipio,exercicio\nCotia,2021\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestCSVReaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repasses.csv")
	require.NoError(t, os.WriteFile(path, []byte("municipio,exercicio,vl_pago,razao_social,funcao_de_governo\nCotia,2020,1,A,B\n"), 0o644))

	tbl, err := (&CSVReader{}).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestSQLiteReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repasses.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE repasses (
		id INTEGER PRIMARY KEY,
		municipio TEXT, exercicio INTEGER, vl_pago REAL,
		razao_social TEXT, funcao_de_governo TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO repasses (municipio, exercicio, vl_pago, razao_social, funcao_de_governo)
		VALUES ('Cotia', 2021, 1234.5, 'Santa Casa', 'Saúde'), ('Itapevi', 2022, 7, NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl, err := (&SQLiteReader{}).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Cotia", "2021", "1234.5", "Santa Casa", "Saúde"}, tbl.Rows[0])
	assert.Equal(t, []string{"Itapevi", "2022", "7", "", ""}, tbl.Rows[1])
}

func TestSQLiteReaderMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repasses.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE repasses (municipio TEXT, exercicio INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = (&SQLiteReader{}).Read(context.Background(), path)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSQLiteReaderRejectsBadTable(t *testing.T) {
	_, err := (&SQLiteReader{Table: "x; DROP TABLE y"}).Read(context.Background(), "whatever.db")
	assert.Error(t, err)
}

func TestParseSheetsLocation(t *testing.T) {
	id, rng, err := parseSheetsLocation("sheets:abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "A:Z", rng)

	id, rng, err = parseSheetsLocation("sheets:abc123!Repasses!A:E")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "Repasses!A:E", rng)

	_, _, err = parseSheetsLocation("sheets:")
	assert.Error(t, err)
}

func TestValuesToTable(t *testing.T) {
	tbl, err := valuesToTable([][]interface{}{
		{"municipio", "exercicio", "vl_pago", "razao_social", "funcao_de_governo"},
		{"Cotia", 2021.0, 1234.56, "A", nil},
		{"Cotia", 2022.0, 12345678.9},
	})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Cotia", "2021", "1234.56", "A", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"Cotia", "2022", "12345678.9"}, tbl.Rows[1])

	_, err = valuesToTable(nil)
	assert.Error(t, err)
}

func TestSheetsReaderNeedsCredentials(t *testing.T) {
	_, err := (&SheetsReader{}).Read(context.Background(), "sheets:abc")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	fp1, err := Fingerprint(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("xyz"), 0o644))
	fp2, err := Fingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp2)

	fp, err := Fingerprint("sheets:abc")
	require.NoError(t, err)
	assert.Equal(t, "remote", fp)

	_, err = Fingerprint(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
