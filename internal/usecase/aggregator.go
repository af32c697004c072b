package usecase

import (
	"math"
	"time"

	"asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
)

// AggregatorConfig tunes the window reduction.
type AggregatorConfig struct {
	Window       time.Duration
	HalfLife     time.Duration // decay half-life; window/2 when zero
	OutlierClamp float64       // max shift one sample may cause on the mean
}

// Aggregator reduces a symbol's sample window into one confidence- and
// recency-weighted sentiment value. It is a pure computation over
// already-stored samples: no I/O beyond the store read.
type Aggregator struct {
	store  domrepo.SampleStore
	window time.Duration
	lambda float64
	clamp  float64
}

func NewAggregator(store domrepo.SampleStore, cfg AggregatorConfig) *Aggregator {
	half := cfg.HalfLife
	if half <= 0 {
		half = cfg.Window / 2
	}
	return &Aggregator{
		store:  store,
		window: cfg.Window,
		lambda: math.Ln2 / half.Seconds(),
		clamp:  cfg.OutlierClamp,
	}
}

// Window returns the configured aggregation window.
func (a *Aggregator) Window() time.Duration { return a.window }

// Aggregate computes the weighted sentiment for symbol at now. An
// empty window yields the neutral result (value 0, count 0); the call
// never fails. For a fixed now and unchanged store contents the result
// is bit-identical across calls.
func (a *Aggregator) Aggregate(symbol string, now time.Time) models.AggregatedSentiment {
	return a.AggregateWindow(symbol, now, a.window)
}

// AggregateWindow is Aggregate with an explicit window, used by the
// read API for window overrides. Non-positive windows fall back to the
// configured one.
func (a *Aggregator) AggregateWindow(symbol string, now time.Time, window time.Duration) models.AggregatedSentiment {
	if window <= 0 {
		window = a.window
	}
	agg := models.AggregatedSentiment{Symbol: symbol, ComputedAt: now}

	samples := a.store.Query(symbol, now, window)
	if len(samples) == 0 {
		return agg
	}
	agg.SampleCount = len(samples)

	// weight = confidence * exp(-lambda * age)
	weights := make([]float64, len(samples))
	for i, s := range samples {
		age := now.Sub(s.Timestamp).Seconds()
		if age < 0 {
			age = 0
		}
		weights[i] = s.Confidence * math.Exp(-a.lambda*age)
	}

	mean, total := weightedMean(samples, weights)
	if total == 0 {
		return agg
	}

	// Winsorize: down-weight any sample whose removal would shift the
	// mean by more than the clamp. Outliers lose influence but are
	// never dropped, so one source cannot steer the result alone.
	adjusted := false
	for i := range samples {
		rest := total - weights[i]
		if rest <= 0 {
			continue
		}
		without := (mean*total - samples[i].Score*weights[i]) / rest
		influence := math.Abs(mean - without)
		if influence > a.clamp {
			weights[i] *= a.clamp / influence
			adjusted = true
		}
	}
	if adjusted {
		mean, total = weightedMean(samples, weights)
		if total == 0 {
			return agg
		}
	}

	agg.Value = clamp(mean, -1, 1)
	return agg
}

func weightedMean(samples []models.SentimentSample, weights []float64) (mean, total float64) {
	var sum float64
	for i, s := range samples {
		sum += s.Score * weights[i]
		total += weights[i]
	}
	if total == 0 {
		return 0, 0
	}
	return sum / total, total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
