package features

import (
	"testing"
	"time"

	"vcstatus/internal/dataset"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func TestFundingDurationDays(t *testing.T) {
	testCases := []struct {
		name     string
		first    *time.Time
		last     *time.Time
		expected *int64
	}{
		{"one year", date(2011, 1, 1), date(2012, 1, 1), i64(365)},
		{"same day", date(2011, 1, 1), date(2011, 1, 1), i64(0)},
		{"last before first", date(2012, 6, 1), date(2011, 6, 1), i64(-366)},
		{"missing first", nil, date(2012, 1, 1), nil},
		{"missing last", date(2012, 1, 1), nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FundingDurationDays(tc.first, tc.last)
			if tc.expected == nil {
				if got != nil {
					t.Errorf("Expected nil, got %d", *got)
				}
				return
			}
			if got == nil || *got != *tc.expected {
				t.Errorf("Expected %d, got %v", *tc.expected, got)
			}
		})
	}
}

func TestFundingDurationDays_TruncatesPartialDays(t *testing.T) {
	first := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(2*day + 23*time.Hour)
	if got := FundingDurationDays(&first, &last); got == nil || *got != 2 {
		t.Errorf("Expected 2 days, got %v", got)
	}

	back := first.Add(-(2*day + 23*time.Hour))
	if got := FundingDurationDays(&first, &back); got == nil || *got != -2 {
		t.Errorf("Expected -2 days, got %v", got)
	}
}

func TestIsInUS(t *testing.T) {
	testCases := []struct {
		name     string
		code     *string
		expected int
	}{
		{"exact", str("USA"), 1},
		{"lowercase", str("usa"), 0},
		{"padded", str(" USA"), 0},
		{"other", str("GBR"), 0},
		{"empty", str(""), 0},
		{"missing", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsInUS(tc.code); got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestDerive_KeepsRowsAndFields(t *testing.T) {
	amount := 1500.0
	records := []dataset.CanonicalRecord{
		{Row: 0, FundingTotalUSD: &amount, CountryCode: str("USA"), Status: "operating",
			FirstFundingAt: date(2010, 1, 1), LastFundingAt: date(2010, 1, 11),
			Extra: map[string]string{"name": "Alpha"}},
		{Row: 4, Status: "closed"},
	}

	out := Derive(records)
	if len(out) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(out))
	}

	if out[0].Row != 0 || out[0].Status != "operating" || out[0].Extra["name"] != "Alpha" {
		t.Errorf("Canonical fields not preserved: %+v", out[0].CanonicalRecord)
	}
	if out[0].FundingDurationDays == nil || *out[0].FundingDurationDays != 10 {
		t.Errorf("Expected duration 10, got %v", out[0].FundingDurationDays)
	}
	if out[0].IsInUS != 1 {
		t.Errorf("Expected is_in_us 1, got %d", out[0].IsInUS)
	}

	if out[1].Row != 4 || out[1].FundingDurationDays != nil || out[1].IsInUS != 0 {
		t.Errorf("Unexpected derived values for sparse record: %+v", out[1])
	}

	// input untouched
	if records[1].FundingTotalUSD != nil {
		t.Error("Derive must not mutate its input")
	}
}

func TestVector_FillsNullsWithZero(t *testing.T) {
	amount, rounds := 500000.0, 2.0
	full := FeaturizedRecord{
		CanonicalRecord:     dataset.CanonicalRecord{FundingTotalUSD: &amount, FundingRounds: &rounds},
		FundingDurationDays: i64(365),
		IsInUS:              1,
	}
	if got := full.Vector(); got != (Vector{500000, 2, 365, 1}) {
		t.Errorf("Unexpected vector %v", got)
	}

	var empty FeaturizedRecord
	if got := empty.Vector(); got != (Vector{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
}

func TestFromMap(t *testing.T) {
	got := FromMap(map[string]float64{"funding_rounds": 3, "is_in_us": 1, "unrelated": 9})
	if got != (Vector{0, 3, 0, 1}) {
		t.Errorf("Unexpected vector %v", got)
	}
}

func i64(v int64) *int64 { return &v }
