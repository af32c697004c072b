package repository

import (
	"errors"
	"testing"
	"time"

	"asdts/internal/domain/models"
)

var storeNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func storeFixture() *MemorySampleStore {
	s := NewMemorySampleStore(30*time.Minute, 5*time.Second)
	s.SetClock(func() time.Time { return storeNow })
	return s
}

func sample(score float64, at time.Time) *models.SentimentSample {
	return &models.SentimentSample{
		Symbol:     "BTCUSDT",
		Source:     models.SourceNews,
		Score:      score,
		Confidence: 0.8,
		Timestamp:  at,
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := storeFixture()

	bad := sample(1.5, storeNow)
	if err := s.Add(bad); !errors.Is(err, models.ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample for score, got %v", err)
	}

	noSym := sample(0.5, storeNow)
	noSym.Symbol = ""
	if err := s.Add(noSym); !errors.Is(err, models.ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample for symbol, got %v", err)
	}

	badSrc := sample(0.5, storeNow)
	badSrc.Source = "astrology"
	if err := s.Add(badSrc); !errors.Is(err, models.ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample for source, got %v", err)
	}

	if s.Len("BTCUSDT") != 0 {
		t.Fatalf("invalid samples must not be stored")
	}
}

func TestStoreClockSkew(t *testing.T) {
	s := storeFixture()

	// Within tolerance: accepted.
	if err := s.Add(sample(0.5, storeNow.Add(3*time.Second))); err != nil {
		t.Fatalf("sample within skew rejected: %v", err)
	}
	// Beyond tolerance: rejected.
	if err := s.Add(sample(0.5, storeNow.Add(10*time.Second))); !errors.Is(err, models.ErrInvalidSample) {
		t.Fatalf("expected skew rejection, got %v", err)
	}
}

func TestStoreQueryWindowBounds(t *testing.T) {
	s := storeFixture()

	inOld := sample(0.1, storeNow.Add(-10*time.Minute))
	onEdge := sample(0.2, storeNow.Add(-30*time.Minute)) // exactly now-window
	recent := sample(0.3, storeNow.Add(-1*time.Minute))
	for _, smp := range []*models.SentimentSample{inOld, onEdge, recent} {
		if err := s.Add(smp); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := s.Query("BTCUSDT", storeNow, 30*time.Minute)
	if len(got) != 3 {
		t.Fatalf("expected 3 samples (edge inclusive), got %d", len(got))
	}

	got = s.Query("BTCUSDT", storeNow, 5*time.Minute)
	if len(got) != 1 || got[0].Score != 0.3 {
		t.Fatalf("expected only the recent sample, got %+v", got)
	}
}

func TestStoreOrdersOutOfOrderInserts(t *testing.T) {
	s := storeFixture()

	times := []time.Duration{-5 * time.Minute, -20 * time.Minute, -1 * time.Minute, -10 * time.Minute}
	for i, d := range times {
		if err := s.Add(sample(float64(i)/10, storeNow.Add(d))); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := s.Query("BTCUSDT", storeNow, 30*time.Minute)
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("samples out of order at %d: %v after %v", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}
}

func TestStoreEvictsBeyondRetention(t *testing.T) {
	s := storeFixture()

	if err := s.Add(sample(0.1, storeNow.Add(-25*time.Minute))); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Len("BTCUSDT") != 1 {
		t.Fatalf("expected 1 retained sample")
	}

	// Advance the clock past retention for the first sample; the next
	// Add triggers eviction.
	s.SetClock(func() time.Time { return storeNow.Add(10 * time.Minute) })
	if err := s.Add(sample(0.2, storeNow.Add(9*time.Minute))); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Len("BTCUSDT") != 1 {
		t.Fatalf("expected old sample evicted, have %d", s.Len("BTCUSDT"))
	}
}

func TestStoreQueryReturnsCopy(t *testing.T) {
	s := storeFixture()

	if err := s.Add(sample(0.5, storeNow.Add(-time.Minute))); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := s.Query("BTCUSDT", storeNow, 30*time.Minute)
	got[0].Score = -1

	again := s.Query("BTCUSDT", storeNow, 30*time.Minute)
	if again[0].Score != 0.5 {
		t.Fatalf("query result aliases store memory")
	}
}
