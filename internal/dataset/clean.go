package dataset

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"vcstatus/internal/common"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog/log"
)

// CanonicalRecord is one cleaned investment record. Nil pointers are nulls.
type CanonicalRecord struct {
	Row             int
	FundingTotalUSD *float64
	FundingRounds   *float64
	FoundedAt       *time.Time
	FirstFundingAt  *time.Time
	LastFundingAt   *time.Time
	CountryCode     *string
	Status          string
	Extra           map[string]string
}

// CanonicalTable holds the cleaned records of a source.
type CanonicalTable struct {
	Path    string
	Columns []string
	Records []CanonicalRecord
	Dropped int // rows discarded for a null status
}

// LoadAndClean loads path with l and cleans the result.
func LoadAndClean(ctx context.Context, l *Loader, path string) (*CanonicalTable, error) {
	raw, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return Clean(raw)
}

// Clean trims column names, coerces the funding amount, funding rounds and
// the three date columns, and discards rows without a status.
func Clean(raw *RawTable) (*CanonicalTable, error) {
	// trimmed name -> name as found in the source
	byName := make(map[string]string, len(raw.Columns))
	columns := make([]string, 0, len(raw.Columns))
	for _, c := range raw.Columns {
		trimmed := strings.TrimSpace(c)
		if _, dup := byName[trimmed]; dup {
			continue
		}
		byName[trimmed] = c
		columns = append(columns, trimmed)
	}

	for _, col := range common.MandatoryColumns {
		if _, ok := byName[col]; !ok {
			return nil, &DataAccessError{Path: raw.Path, Column: col, Err: ErrMissingColumn}
		}
	}

	known := make(map[string]bool, len(common.MandatoryColumns))
	for _, col := range common.MandatoryColumns {
		known[col] = true
	}

	out := &CanonicalTable{
		Path:    raw.Path,
		Columns: columns,
		Records: make([]CanonicalRecord, 0, len(raw.Rows)),
	}

	for i, row := range raw.Rows {
		get := func(col string) RawValue { return row[byName[col]] }

		status := get(common.ColStatus)
		if status.Null || status.Text == "" {
			out.Dropped++
			continue
		}

		rec := CanonicalRecord{
			Row:             i,
			FundingTotalUSD: ParseAmount(get(common.ColFundingTotalUSD)),
			FundingRounds:   ParseAmount(get(common.ColFundingRounds)),
			FoundedAt:       ParseDate(get(common.ColFoundedAt)),
			FirstFundingAt:  ParseDate(get(common.ColFirstFundingAt)),
			LastFundingAt:   ParseDate(get(common.ColLastFundingAt)),
			Status:          status.Text,
			Extra:           make(map[string]string),
		}
		if cc := get(common.ColCountryCode); !cc.Null {
			code := cc.Text
			rec.CountryCode = &code
		}
		for _, col := range columns {
			if known[col] {
				continue
			}
			rec.Extra[col] = get(col).Text
		}

		out.Records = append(out.Records, rec)
	}

	log.Info().
		Str("path", raw.Path).
		Int("rows_in", len(raw.Rows)).
		Int("rows_out", len(out.Records)).
		Int("dropped_null_status", out.Dropped).
		Msg("Records cleaned")

	return out, nil
}

// ParseAmount parses locale-formatted numbers such as " 1,200,000 ".
// Anything unparsable, NaN or infinite yields nil.
func ParseAmount(v RawValue) *float64 {
	if v.Null {
		return nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(v.Text, ",", ""))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseDate parses a date or date-time in UTC. Unparsable values yield nil.
func ParseDate(v RawValue) (t *time.Time) {
	if v.Null {
		return nil
	}
	s := strings.TrimSpace(v.Text)
	if s == "" {
		return nil
	}

	// malformed values must never abort cleaning
	defer func() {
		if r := recover(); r != nil {
			t = nil
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}
