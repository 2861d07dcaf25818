// Package dataset loads venture-capital investment tables and normalizes them
// into canonical typed records.
//
// Sources are CSV files addressed by a local path or an http(s) URL. Loading
// fails only on structural problems; individual malformed values are recovered
// as nulls during cleaning.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// naValues are the cell contents treated as missing.
var naValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// RawValue is a single untyped cell.
type RawValue struct {
	Text string
	Null bool
}

// RawRow maps the column name as it appears in the source to its cell.
type RawRow map[string]RawValue

// RawTable is a source table before cleaning. Column names are kept verbatim.
type RawTable struct {
	Path    string
	Columns []string
	Rows    []RawRow
}

// Loader reads raw tables from local files or remote URLs.
type Loader struct {
	rest *resty.Client
}

// NewLoader creates a loader whose remote fetches time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second)
	}
	return &Loader{rest: r}
}

// Load reads the CSV at path into a RawTable.
func (l *Loader) Load(ctx context.Context, path string) (*RawTable, error) {
	data, err := l.read(ctx, path)
	if err != nil {
		return nil, &DataAccessError{Path: path, Err: err}
	}

	records, err := readRecords(data)
	if err != nil {
		return nil, &DataAccessError{Path: path, Err: fmt.Errorf("parse csv: %w", err)}
	}

	// a header without data rows is a valid, empty table
	if len(records) == 1 {
		log.Debug().Str("path", path).Msg("Raw table has no data rows")
		return &RawTable{Path: path, Columns: records[0], Rows: []RawRow{}}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		return nil, &DataAccessError{Path: path, Err: fmt.Errorf("parse csv: %w", df.Err)}
	}

	table := &RawTable{
		Path:    path,
		Columns: df.Names(),
		Rows:    make([]RawRow, df.Nrow()),
	}
	for i := range table.Rows {
		table.Rows[i] = make(RawRow, len(table.Columns))
	}

	for _, name := range table.Columns {
		col := df.Col(name)
		for i := 0; i < col.Len(); i++ {
			elem := col.Elem(i)
			if elem.IsNA() {
				table.Rows[i][name] = RawValue{Null: true}
				continue
			}
			table.Rows[i][name] = RawValue{Text: elem.String()}
		}
	}

	log.Debug().
		Str("path", path).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("Raw table loaded")

	return table, nil
}

func (l *Loader) read(ctx context.Context, path string) ([]byte, error) {
	if isRemote(path) {
		resp, err := l.rest.R().SetContext(ctx).Get(path)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return data, nil
}

// readRecords splits data into CSV records. Rows shorter than the header are
// padded with empty cells, which load as nulls; longer rows are an error.
func readRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	width := len(records[0])
	for i, rec := range records[1:] {
		switch {
		case len(rec) > width:
			return nil, fmt.Errorf("record on line %d: %d fields, header has %d", i+2, len(rec), width)
		case len(rec) < width:
			records[i+1] = append(rec, make([]string, width-len(rec))...)
		}
	}
	return records, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
