package marketfeed

import (
	"math"
	"sync"
	"time"

	"asdts/internal/domain/models"
)

// MomentumScorer converts trade prints into market-source sentiment
// samples. It keeps a rolling price window per symbol and scores the
// return over that window through tanh, so the score stays in [-1,1]
// and saturates on large moves. At most one sample per symbol per
// SampleInterval is emitted; confidence grows with the number of
// prints behind the observation.
type MomentumScorer struct {
	window   time.Duration
	gain     float64
	interval time.Duration

	mu       sync.Mutex
	history  map[string][]pricePoint
	lastEmit map[string]time.Time
}

type pricePoint struct {
	price float64
	at    time.Time
}

// NewMomentumScorer creates a scorer. gain scales the window return
// before the tanh squash: gain 50 means a 2% move scores tanh(1).
func NewMomentumScorer(window time.Duration, gain float64, interval time.Duration) *MomentumScorer {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if gain <= 0 {
		gain = 50
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &MomentumScorer{
		window:   window,
		gain:     gain,
		interval: interval,
		history:  make(map[string][]pricePoint),
		lastEmit: make(map[string]time.Time),
	}
}

// Observe records a trade print and, when an emission is due, returns
// the derived sample. Returns nil when no sample is due.
func (m *MomentumScorer) Observe(tp *models.TradePrint) *models.SentimentSample {
	if tp == nil || tp.Symbol == "" || tp.Price <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hist := append(m.history[tp.Symbol], pricePoint{price: tp.Price, at: tp.Timestamp})

	// evict points older than the momentum window
	cutoff := tp.Timestamp.Add(-m.window)
	start := 0
	for start < len(hist) && hist[start].at.Before(cutoff) {
		start++
	}
	hist = hist[start:]
	m.history[tp.Symbol] = hist

	if len(hist) < 2 {
		return nil
	}
	if last, ok := m.lastEmit[tp.Symbol]; ok && tp.Timestamp.Sub(last) < m.interval {
		return nil
	}
	m.lastEmit[tp.Symbol] = tp.Timestamp

	first := hist[0].price
	ret := (tp.Price - first) / first
	score := math.Tanh(m.gain * ret)

	// more prints behind the window means a steadier estimate
	confidence := float64(len(hist)) / (float64(len(hist)) + 10)

	return &models.SentimentSample{
		Symbol:     tp.Symbol,
		Source:     models.SourceMarket,
		Score:      score,
		Confidence: confidence,
		Timestamp:  tp.Timestamp,
	}
}
