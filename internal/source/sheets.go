package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// FormatSheets is the registry key of SheetsReader.
const FormatSheets = "sheets"

const defaultSheetsRange = "A:Z"

// SheetsReader reads a Google Sheet through the Sheets v4 API using a
// service-account credentials file. Locations look like
// "sheets:<spreadsheetID>" or "sheets:<spreadsheetID>!Repasses!A:E".
type SheetsReader struct {
	CredentialsFile string
}

// Format returns the reader name.
func (r *SheetsReader) Format() string { return FormatSheets }

// Read fetches the sheet values, unformatted.
func (r *SheetsReader) Read(ctx context.Context, location string) (*Table, error) {
	id, rng, err := parseSheetsLocation(location)
	if err != nil {
		return nil, err
	}

	svc, err := r.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s range %s: %w", id, rng, err)
	}
	return valuesToTable(resp.Values)
}

func (r *SheetsReader) service(ctx context.Context) (*gsheet.Service, error) {
	if strings.TrimSpace(r.CredentialsFile) == "" {
		return nil, errors.New("sheets source needs a service-account credentials file")
	}
	svc, err := gsheet.NewService(ctx,
		option.WithCredentialsFile(r.CredentialsFile),
		option.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// parseSheetsLocation splits "sheets:<id>[!range]" into id and range.
func parseSheetsLocation(location string) (id, rng string, err error) {
	rest := strings.TrimPrefix(location, SheetsPrefix)
	id, rng, _ = strings.Cut(rest, "!")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("invalid sheets location %q: missing spreadsheet id", location)
	}
	if strings.TrimSpace(rng) == "" {
		rng = defaultSheetsRange
	}
	return id, rng, nil
}

func valuesToTable(values [][]interface{}) (*Table, error) {
	if len(values) == 0 {
		return nil, errors.New("sheet is empty")
	}
	t := &Table{Header: cellsToStrings(values[0]), Rows: make([][]string, 0, len(values)-1)}
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, cellsToStrings(row))
	}
	return t, nil
}

func cellsToStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(x)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
