package marketfeed

import (
	"testing"
	"time"

	"asdts/internal/domain/models"
)

func printAt(symbol string, price float64, at time.Time) *models.TradePrint {
	return &models.TradePrint{Symbol: symbol, Price: price, Volume: 1, Timestamp: at}
}

func TestScorerNeedsTwoPoints(t *testing.T) {
	m := NewMomentumScorer(5*time.Minute, 50, 15*time.Second)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	if s := m.Observe(printAt("BTCUSDT", 100, at)); s != nil {
		t.Fatalf("expected nil on first print, got %+v", s)
	}
}

func TestScorerSignFollowsMove(t *testing.T) {
	m := NewMomentumScorer(5*time.Minute, 50, 15*time.Second)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	m.Observe(printAt("BTCUSDT", 100, at))
	up := m.Observe(printAt("BTCUSDT", 102, at.Add(time.Minute)))
	if up == nil {
		t.Fatalf("expected sample")
	}
	if up.Score <= 0 {
		t.Fatalf("upward move scored %v", up.Score)
	}
	if up.Source != models.SourceMarket {
		t.Fatalf("source %s, want market", up.Source)
	}
	if up.Score < -1 || up.Score > 1 {
		t.Fatalf("score %v out of range", up.Score)
	}

	m2 := NewMomentumScorer(5*time.Minute, 50, 15*time.Second)
	m2.Observe(printAt("BTCUSDT", 100, at))
	down := m2.Observe(printAt("BTCUSDT", 98, at.Add(time.Minute)))
	if down == nil || down.Score >= 0 {
		t.Fatalf("downward move scored %+v", down)
	}
}

func TestScorerEmitInterval(t *testing.T) {
	m := NewMomentumScorer(5*time.Minute, 50, 15*time.Second)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	m.Observe(printAt("BTCUSDT", 100, at))
	if s := m.Observe(printAt("BTCUSDT", 101, at.Add(5*time.Second))); s == nil {
		t.Fatalf("expected first emission")
	}
	// Inside the interval: suppressed.
	if s := m.Observe(printAt("BTCUSDT", 103, at.Add(10*time.Second))); s != nil {
		t.Fatalf("expected suppression inside interval, got %+v", s)
	}
	// Past the interval: emitted again.
	if s := m.Observe(printAt("BTCUSDT", 103, at.Add(25*time.Second))); s == nil {
		t.Fatalf("expected emission after interval")
	}
}

func TestScorerEvictsOldPoints(t *testing.T) {
	m := NewMomentumScorer(time.Minute, 50, time.Second)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	m.Observe(printAt("BTCUSDT", 50, at))
	// Two minutes later the 50 print is out of the window; a single
	// remaining point cannot score.
	if s := m.Observe(printAt("BTCUSDT", 100, at.Add(2*time.Minute))); s != nil {
		t.Fatalf("expected nil after eviction, got %+v", s)
	}
}

func TestScorerConfidenceGrows(t *testing.T) {
	m := NewMomentumScorer(5*time.Minute, 50, time.Millisecond)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	m.Observe(printAt("BTCUSDT", 100, at))
	a := m.Observe(printAt("BTCUSDT", 101, at.Add(time.Second)))
	b := m.Observe(printAt("BTCUSDT", 102, at.Add(2*time.Second)))
	if a == nil || b == nil {
		t.Fatalf("expected samples")
	}
	if b.Confidence <= a.Confidence {
		t.Fatalf("confidence did not grow: %v then %v", a.Confidence, b.Confidence)
	}
	if b.Confidence >= 1 {
		t.Fatalf("confidence %v out of range", b.Confidence)
	}
}

func TestScorerIgnoresBadPrints(t *testing.T) {
	m := NewMomentumScorer(5*time.Minute, 50, time.Second)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	if s := m.Observe(nil); s != nil {
		t.Fatalf("nil print scored")
	}
	if s := m.Observe(printAt("", 100, at)); s != nil {
		t.Fatalf("empty symbol scored")
	}
	if s := m.Observe(printAt("BTCUSDT", 0, at)); s != nil {
		t.Fatalf("zero price scored")
	}
}
