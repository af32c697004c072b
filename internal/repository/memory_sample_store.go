package repository

import (
	"sort"
	"sync"
	"time"

	"asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
)

// MemorySampleStore is the append-only, in-memory sentiment sample
// store. Samples are validated on the way in and never mutated after;
// they leave only through retention eviction. Retention must cover at
// least the longest configured aggregation window.
type MemorySampleStore struct {
	mu        sync.RWMutex
	samples   map[string][]models.SentimentSample
	retention time.Duration
	skew      time.Duration
	now       func() time.Time // injectable clock for tests
}

func NewMemorySampleStore(retention, clockSkewTolerance time.Duration) *MemorySampleStore {
	return &MemorySampleStore{
		samples:   make(map[string][]models.SentimentSample),
		retention: retention,
		skew:      clockSkewTolerance,
		now:       time.Now,
	}
}

// SetClock overrides the store's clock. Tests only.
func (s *MemorySampleStore) SetClock(now func() time.Time) { s.now = now }

// Add validates and appends a sample, keeping the per-symbol slice
// time-ordered even when samples arrive slightly out of order.
func (s *MemorySampleStore) Add(sample *models.SentimentSample) error {
	now := s.now()
	if err := sample.Validate(now, s.skew); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.samples[sample.Symbol]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Timestamp.After(sample.Timestamp)
	})
	list = append(list, models.SentimentSample{})
	copy(list[i+1:], list[i:])
	list[i] = *sample

	// Evict beyond retention.
	cutoff := now.Add(-s.retention)
	drop := 0
	for drop < len(list) && list[drop].Timestamp.Before(cutoff) {
		drop++
	}
	s.samples[sample.Symbol] = list[drop:]
	return nil
}

// Query returns the time-ordered samples with timestamps in
// [now-window, now]. The result is a copy; re-querying with the same
// now and unchanged contents yields the same set.
func (s *MemorySampleStore) Query(symbol string, now time.Time, window time.Duration) []models.SentimentSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.samples[symbol]
	if len(list) == 0 {
		return nil
	}
	from := now.Add(-window)

	lo := sort.Search(len(list), func(i int) bool {
		return !list[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(list), func(i int) bool {
		return list[i].Timestamp.After(now)
	})
	if lo >= hi {
		return nil
	}
	out := make([]models.SentimentSample, hi-lo)
	copy(out, list[lo:hi])
	return out
}

// Len reports the number of retained samples for symbol.
func (s *MemorySampleStore) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples[symbol])
}

var _ domrepo.SampleStore = (*MemorySampleStore)(nil)
