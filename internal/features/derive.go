package features

import (
	"time"

	"vcstatus/internal/common"
	"vcstatus/internal/dataset"
)

// Vector is the model input: funding_total_usd, funding_rounds,
// funding_duration_days, is_in_us.
type Vector [4]float64

type FeaturizedRecord struct {
	dataset.CanonicalRecord
	FundingDurationDays *int64
	IsInUS              int
}

const day = 24 * time.Hour

func Derive(records []dataset.CanonicalRecord) []FeaturizedRecord {
	out := make([]FeaturizedRecord, len(records))
	for i, rec := range records {
		out[i] = FeaturizedRecord{
			CanonicalRecord:     rec,
			FundingDurationDays: FundingDurationDays(rec.FirstFundingAt, rec.LastFundingAt),
			IsInUS:              IsInUS(rec.CountryCode),
		}
	}
	return out
}

// FundingDurationDays is last-first in whole days, truncated toward zero.
// Negative spans are kept.
func FundingDurationDays(first, last *time.Time) *int64 {
	if first == nil || last == nil {
		return nil
	}
	d := int64(last.Sub(*first) / day)
	return &d
}

func IsInUS(code *string) int {
	if code != nil && *code == common.USCountryCode {
		return 1
	}
	return 0
}

// Vector fills remaining nulls with 0.
func (r FeaturizedRecord) Vector() Vector {
	var v Vector
	if r.FundingTotalUSD != nil {
		v[0] = *r.FundingTotalUSD
	}
	if r.FundingRounds != nil {
		v[1] = *r.FundingRounds
	}
	if r.FundingDurationDays != nil {
		v[2] = float64(*r.FundingDurationDays)
	}
	v[3] = float64(r.IsInUS)
	return v
}

// FromMap builds a vector from named feature values; absent keys are 0.
func FromMap(values map[string]float64) Vector {
	var v Vector
	for i, name := range common.FeatureNames {
		v[i] = values[name]
	}
	return v
}
