package tracking

import (
	"time"

	"deeplink-attribution/services/fingerprint"
)

const (
	// RecordTTL is the fixed lifetime of a record, counted from CreatedAt.
	RecordTTL = 24 * time.Hour
	// MaxMatches bounds how often one record can be consumed.
	MaxMatches = 3
	// SimilarityThreshold is the minimum score a fuzzy candidate needs.
	SimilarityThreshold = 0.8
)

// TrackingRecord is one saved install intent.
type TrackingRecord struct {
	FingerprintID string                         `json:"fingerprintId"`
	Fingerprint   *fingerprint.DeviceFingerprint `json:"fingerprint"`
	Params        map[string]string              `json:"params"`
	CreatedAt     time.Time                      `json:"createdAt"`
	ClientIP      string                         `json:"clientIp,omitempty"`
	ExpiresAt     time.Time                      `json:"expiresAt"`
	Matched       bool                           `json:"matched"`
	MatchCount    int                            `json:"matchCount"`
}

// Eligible reports whether r may still be consumed by a match.
func (r *TrackingRecord) Eligible() bool {
	return !r.Matched && r.MatchCount < MaxMatches
}

type MatchMethod string

const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
)

type MatchResult struct {
	Record *TrackingRecord
	Method MatchMethod
	// Score is the similarity of a fuzzy match; exact matches report 1.
	Score float64
}
