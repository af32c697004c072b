package models

import (
	"fmt"
	"time"
)

// Source identifies where a sentiment sample was scored.
type Source string

const (
	SourceNews   Source = "news"
	SourceSocial Source = "social"
	SourceMarket Source = "market"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceNews, SourceSocial, SourceMarket:
		return true
	default:
		return false
	}
}

// SentimentSample is a single scored observation for a symbol.
// Samples are immutable once stored; the store only ever appends.
type SentimentSample struct {
	Symbol     string    `json:"symbol"`
	Source     Source    `json:"source"`
	Score      float64   `json:"score"`      // [-1, 1]
	Confidence float64   `json:"confidence"` // [0, 1]
	Timestamp  time.Time `json:"timestamp"`
}

// Validate checks sample ranges and that the timestamp is not in the
// future beyond the allowed clock skew. Violations wrap ErrInvalidSample.
func (s *SentimentSample) Validate(now time.Time, skew time.Duration) error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidSample)
	}
	if !s.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidSample, s.Source)
	}
	if s.Score < -1 || s.Score > 1 {
		return fmt.Errorf("%w: score %.4f out of [-1,1]", ErrInvalidSample, s.Score)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.4f out of [0,1]", ErrInvalidSample, s.Confidence)
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrInvalidSample)
	}
	if s.Timestamp.After(now.Add(skew)) {
		return fmt.Errorf("%w: timestamp %s ahead of clock by more than %s",
			ErrInvalidSample, s.Timestamp.Format(time.RFC3339), skew)
	}
	return nil
}

// AggregatedSentiment is the reduction of one symbol's sample window.
// It is derived state: always reproducible from the store plus the
// window, never a source of truth.
type AggregatedSentiment struct {
	Symbol      string    `json:"symbol"`
	Value       float64   `json:"value"` // [-1, 1]
	SampleCount int       `json:"sample_count"`
	ComputedAt  time.Time `json:"computed_at"`
}
