package usecase

import (
	"asdts/internal/domain/models"
)

// SignalGeneratorConfig holds the hysteresis thresholds. Enter must be
// strictly greater than exit; config validation enforces this before
// the pipeline runs.
type SignalGeneratorConfig struct {
	ThresholdEnter float64
	ThresholdExit  float64
}

// SignalGenerator maps an aggregated sentiment value plus the last
// emitted signal to a discrete trading signal. Entering BUY or SELL
// requires the value to pass the enter threshold; leaving requires it
// to fall back inside the tighter exit band. The deadband keeps noisy
// values near the boundary from flapping.
type SignalGenerator struct {
	enter float64
	exit  float64
}

func NewSignalGenerator(cfg SignalGeneratorConfig) *SignalGenerator {
	return &SignalGenerator{enter: cfg.ThresholdEnter, exit: cfg.ThresholdExit}
}

// Generate is a pure function of (aggregated, previous): the same
// inputs always yield the same direction and strength. The timestamp
// is taken from the aggregate's ComputedAt.
func (g *SignalGenerator) Generate(agg models.AggregatedSentiment, prev models.Signal) models.Signal {
	v := agg.Value

	prevDir := prev.Direction
	if prevDir == "" {
		prevDir = models.DirectionHold
	}

	var dir models.Direction
	switch {
	case v >= g.enter:
		dir = models.DirectionBuy
	case v <= -g.enter:
		dir = models.DirectionSell
	case prevDir == models.DirectionBuy && v >= g.exit:
		// Inside the deadband: hold the prior BUY until the value
		// crosses back through the exit threshold.
		dir = models.DirectionBuy
	case prevDir == models.DirectionSell && v <= -g.exit:
		dir = models.DirectionSell
	default:
		dir = models.DirectionHold
	}

	return models.Signal{
		Symbol:      agg.Symbol,
		Direction:   dir,
		Strength:    g.strength(v, dir),
		GeneratedAt: agg.ComputedAt,
	}
}

// strength is the normalized distance past the entry threshold,
// clamped to [0,1]. A signal held only by hysteresis has strength 0.
func (g *SignalGenerator) strength(v float64, dir models.Direction) float64 {
	if dir == models.DirectionHold {
		return 0
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if g.enter >= 1 {
		if abs >= g.enter {
			return 1
		}
		return 0
	}
	return clamp((abs-g.enter)/(1-g.enter), 0, 1)
}
