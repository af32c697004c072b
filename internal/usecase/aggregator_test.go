package usecase

import (
	"math"
	"testing"
	"time"

	"asdts/internal/domain/models"
)

func aggFixture(now time.Time, clamp float64) (*Aggregator, *fakeStore) {
	store := newFakeStore(now)
	agg := NewAggregator(store, AggregatorConfig{
		Window:       30 * time.Minute,
		HalfLife:     15 * time.Minute,
		OutlierClamp: clamp,
	})
	return agg, store
}

func addSample(t *testing.T, store *fakeStore, symbol string, score, confidence float64, at time.Time) {
	t.Helper()
	err := store.Add(&models.SentimentSample{
		Symbol:     symbol,
		Source:     models.SourceNews,
		Score:      score,
		Confidence: confidence,
		Timestamp:  at,
	})
	if err != nil {
		t.Fatalf("add sample: %v", err)
	}
}

func TestAggregateEmptyWindow(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, _ := aggFixture(now, 0.2)

	got := agg.Aggregate("BTCUSDT", now)
	if got.Value != 0 {
		t.Fatalf("expected neutral value, got %v", got.Value)
	}
	if got.SampleCount != 0 {
		t.Fatalf("expected zero samples, got %d", got.SampleCount)
	}
}

func TestAggregateRecencyWeighting(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, store := aggFixture(now, 1) // clamp off for this test

	// Equal confidence: the recent positive sample must outweigh the
	// old negative one through decay alone.
	addSample(t, store, "BTCUSDT", -1, 0.8, now.Add(-25*time.Minute))
	addSample(t, store, "BTCUSDT", 1, 0.8, now.Add(-1*time.Minute))

	got := agg.Aggregate("BTCUSDT", now)
	if got.Value <= 0 {
		t.Fatalf("expected positive value, got %v", got.Value)
	}
	if got.SampleCount != 2 {
		t.Fatalf("expected 2 samples, got %d", got.SampleCount)
	}
}

func TestAggregateConfidenceWeighting(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, store := aggFixture(now, 1)

	// Same age: confidence decides.
	at := now.Add(-5 * time.Minute)
	addSample(t, store, "BTCUSDT", 1, 0.9, at)
	addSample(t, store, "BTCUSDT", -1, 0.1, at)

	got := agg.Aggregate("BTCUSDT", now)
	if got.Value <= 0 {
		t.Fatalf("expected positive value, got %v", got.Value)
	}
}

func TestAggregateDeterminism(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, store := aggFixture(now, 0.2)

	addSample(t, store, "BTCUSDT", 0.4, 0.7, now.Add(-10*time.Minute))
	addSample(t, store, "BTCUSDT", -0.2, 0.5, now.Add(-3*time.Minute))

	a := agg.Aggregate("BTCUSDT", now)
	b := agg.Aggregate("BTCUSDT", now)
	if a.Value != b.Value || a.SampleCount != b.SampleCount {
		t.Fatalf("aggregate not deterministic: %+v vs %+v", a, b)
	}
}

func TestAggregateOutlierClamp(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	at := now.Add(-5 * time.Minute)
	symbol := "BTCUSDT"

	baseline := func(clamp float64, withOutlier bool) float64 {
		agg, store := aggFixture(now, clamp)
		for i := 0; i < 8; i++ {
			addSample(t, store, symbol, 0.3, 0.6, at)
		}
		if withOutlier {
			addSample(t, store, symbol, -1, 1, at)
		}
		return agg.Aggregate(symbol, now).Value
	}

	clamp := 0.05
	clean := baseline(clamp, false)
	dirty := baseline(clamp, true)

	shift := math.Abs(clean - dirty)
	if shift > clamp+0.02 {
		t.Fatalf("outlier shifted mean by %v, clamp %v", shift, clamp)
	}
	// The outlier is down-weighted, not dropped: some shift remains.
	if shift == 0 {
		t.Fatalf("expected outlier to retain some influence")
	}
}

func TestAggregateMonotonicAddPositive(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	symbol := "BTCUSDT"

	type sample struct {
		score, confidence float64
		age               time.Duration
	}
	mixes := [][]sample{
		{{-1, 1, 5 * time.Minute}},
		{{0.3, 0.6, 5 * time.Minute}, {0.3, 0.6, 5 * time.Minute}, {-1, 1, 5 * time.Minute}},
		{{0.9, 0.9, time.Minute}, {-0.8, 0.5, 10 * time.Minute}},
		{{-0.4, 0.2, 25 * time.Minute}, {-0.6, 0.9, 2 * time.Minute}, {0.1, 0.3, 8 * time.Minute}},
		{{1, 1, time.Minute}, {1, 1, 2 * time.Minute}, {1, 1, 3 * time.Minute}},
	}

	// Adding a score=+1, confidence=1 sample at now must never lower
	// the aggregate, even when the clamp re-weights the others.
	for _, clampVal := range []float64{0.05, 0.2, 0.5} {
		for mi, mix := range mixes {
			agg, store := aggFixture(now, clampVal)
			for _, s := range mix {
				addSample(t, store, symbol, s.score, s.confidence, now.Add(-s.age))
			}
			before := agg.Aggregate(symbol, now).Value

			addSample(t, store, symbol, 1, 1, now)
			after := agg.Aggregate(symbol, now).Value

			if after < before-1e-12 {
				t.Fatalf("clamp %v mix %d: value fell from %v to %v", clampVal, mi, before, after)
			}
		}
	}
}

func TestAggregateValueRange(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, store := aggFixture(now, 0.2)

	for i := 0; i < 5; i++ {
		addSample(t, store, "BTCUSDT", 1, 1, now.Add(-time.Duration(i)*time.Minute))
	}

	got := agg.Aggregate("BTCUSDT", now)
	if got.Value < -1 || got.Value > 1 {
		t.Fatalf("value %v out of range", got.Value)
	}
}

func TestAggregateWindowOverride(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	agg, store := aggFixture(now, 0.2)

	addSample(t, store, "BTCUSDT", 0.5, 0.8, now.Add(-20*time.Minute))
	addSample(t, store, "BTCUSDT", -0.5, 0.8, now.Add(-2*time.Minute))

	// A 5m window only sees the recent negative sample.
	got := agg.AggregateWindow("BTCUSDT", now, 5*time.Minute)
	if got.SampleCount != 1 {
		t.Fatalf("expected 1 sample in 5m window, got %d", got.SampleCount)
	}
	if got.Value >= 0 {
		t.Fatalf("expected negative value, got %v", got.Value)
	}

	// Non-positive window falls back to the configured 30m.
	got = agg.AggregateWindow("BTCUSDT", now, 0)
	if got.SampleCount != 2 {
		t.Fatalf("expected 2 samples with default window, got %d", got.SampleCount)
	}
}
