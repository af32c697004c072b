package usecase

import (
	"math"
	"testing"
	"time"

	"asdts/internal/domain/models"
)

func genAt(value float64, at time.Time) models.AggregatedSentiment {
	return models.AggregatedSentiment{Symbol: "BTCUSDT", Value: value, ComputedAt: at}
}

func TestSignalHysteresisSequence(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	values := []float64{0.05, 0.35, 0.2, 0.1}
	want := []models.Direction{
		models.DirectionHold,
		models.DirectionBuy,
		models.DirectionBuy, // deadband: held by hysteresis
		models.DirectionHold,
	}

	var prev models.Signal
	for i, v := range values {
		sig := gen.Generate(genAt(v, now), prev)
		if sig.Direction != want[i] {
			t.Fatalf("step %d value %v: got %s, want %s", i, v, sig.Direction, want[i])
		}
		prev = sig
	}
}

func TestSignalHysteresisExitBoundary(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	values := []float64{0.05, 0.35, 0.15, 0.05}
	want := []models.Direction{
		models.DirectionHold,
		models.DirectionBuy,
		models.DirectionBuy, // exactly at the exit threshold: still held
		models.DirectionHold,
	}

	var prev models.Signal
	for i, v := range values {
		sig := gen.Generate(genAt(v, now), prev)
		if sig.Direction != want[i] {
			t.Fatalf("step %d value %v: got %s, want %s", i, v, sig.Direction, want[i])
		}
		prev = sig
	}
}

func TestSignalHysteresisSellSide(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	var prev models.Signal
	sig := gen.Generate(genAt(-0.4, now), prev)
	if sig.Direction != models.DirectionSell {
		t.Fatalf("expected SELL, got %s", sig.Direction)
	}
	prev = sig

	// Inside the deadband: the SELL holds.
	sig = gen.Generate(genAt(-0.2, now), prev)
	if sig.Direction != models.DirectionSell {
		t.Fatalf("expected SELL held, got %s", sig.Direction)
	}
	prev = sig

	sig = gen.Generate(genAt(-0.1, now), prev)
	if sig.Direction != models.DirectionHold {
		t.Fatalf("expected HOLD after exit, got %s", sig.Direction)
	}
}

func TestSignalStrength(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	sig := gen.Generate(genAt(0.65, now), models.Signal{})
	want := (0.65 - 0.3) / (1 - 0.3)
	if math.Abs(sig.Strength-want) > 1e-9 {
		t.Fatalf("strength %v, want %v", sig.Strength, want)
	}

	sig = gen.Generate(genAt(1, now), models.Signal{})
	if sig.Strength != 1 {
		t.Fatalf("expected full strength at 1, got %v", sig.Strength)
	}
}

func TestSignalStrengthZeroWhenHeld(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	prev := gen.Generate(genAt(0.5, now), models.Signal{})
	held := gen.Generate(genAt(0.2, now), prev)
	if held.Direction != models.DirectionBuy {
		t.Fatalf("expected held BUY, got %s", held.Direction)
	}
	if held.Strength != 0 {
		t.Fatalf("held signal strength %v, want 0", held.Strength)
	}
}

func TestSignalDeterministic(t *testing.T) {
	gen := NewSignalGenerator(SignalGeneratorConfig{ThresholdEnter: 0.3, ThresholdExit: 0.15})
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	agg := genAt(0.42, now)
	prev := models.Signal{Direction: models.DirectionHold}
	a := gen.Generate(agg, prev)
	b := gen.Generate(agg, prev)
	if a != b {
		t.Fatalf("generator not deterministic: %+v vs %+v", a, b)
	}
	if !a.GeneratedAt.Equal(agg.ComputedAt) {
		t.Fatalf("signal time %v, want aggregate time %v", a.GeneratedAt, agg.ComputedAt)
	}
}
