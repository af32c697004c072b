package usecase

import (
	"context"
	"sync"
	"time"

	"asdts/internal/domain/models"
)

// fakeStore is a minimal SampleStore for aggregator and engine tests.
type fakeStore struct {
	mu      sync.Mutex
	samples map[string][]models.SentimentSample
	now     time.Time
	skew    time.Duration
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		samples: make(map[string][]models.SentimentSample),
		now:     now,
		skew:    5 * time.Second,
	}
}

func (s *fakeStore) Add(sample *models.SentimentSample) error {
	if err := sample.Validate(s.now, s.skew); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[sample.Symbol] = append(s.samples[sample.Symbol], *sample)
	return nil
}

func (s *fakeStore) Query(symbol string, now time.Time, window time.Duration) []models.SentimentSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := now.Add(-window)
	var out []models.SentimentSample
	for _, smp := range s.samples[symbol] {
		if smp.Timestamp.Before(from) || smp.Timestamp.After(now) {
			continue
		}
		out = append(out, smp)
	}
	return out
}

// fakeRouter records submitted intents and can be made to fail.
type fakeRouter struct {
	mu      sync.Mutex
	intents []*models.OrderIntent
	err     error
}

func (r *fakeRouter) Submit(_ context.Context, intent *models.OrderIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.intents = append(r.intents, intent)
	return nil
}

func (r *fakeRouter) Close() error { return nil }

func (r *fakeRouter) submitted() []*models.OrderIntent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.OrderIntent, len(r.intents))
	copy(out, r.intents)
	return out
}

// fakeAudit counts records per kind.
type fakeAudit struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{counts: make(map[string]int)}
}

func (a *fakeAudit) bump(kind string) {
	a.mu.Lock()
	a.counts[kind]++
	a.mu.Unlock()
}

func (a *fakeAudit) count(kind string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[kind]
}

func (a *fakeAudit) Init(context.Context) error { return nil }
func (a *fakeAudit) RecordAggregate(context.Context, *models.AggregatedSentiment) error {
	a.bump("aggregate")
	return nil
}
func (a *fakeAudit) RecordSignal(context.Context, *models.Signal) error {
	a.bump("signal")
	return nil
}
func (a *fakeAudit) RecordIntent(context.Context, *models.OrderIntent) error {
	a.bump("intent")
	return nil
}
func (a *fakeAudit) RecordRejection(context.Context, string, string, string) error {
	a.bump("rejection")
	return nil
}
func (a *fakeAudit) RecordPositionEvent(context.Context, string, *models.Position, *models.Fill) error {
	a.bump("position")
	return nil
}
func (a *fakeAudit) Health(context.Context) error { return nil }
func (a *fakeAudit) Close() error                 { return nil }

// fakeMetrics counts recorded events per name.
type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{counts: make(map[string]int)}
}

func (m *fakeMetrics) bump(name string) {
	m.mu.Lock()
	m.counts[name]++
	m.mu.Unlock()
}

func (m *fakeMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func (m *fakeMetrics) RecordSampleIngested(string, string) { m.bump("sample") }
func (m *fakeMetrics) RecordSignal(string, string) { m.bump("signal") }
func (m *fakeMetrics) RecordRejection(reason string) { m.bump("reject_" + reason) }
func (m *fakeMetrics) RecordSentiment(string, float64) { m.bump("sentiment") }
func (m *fakeMetrics) RecordLastPrice(string, float64) { m.bump("price") }
func (m *fakeMetrics) RecordRealizedPnL(float64) { m.bump("pnl") }
func (m *fakeMetrics) RecordError(kind string) { m.bump("err_" + kind) }
func (m *fakeMetrics) RecordLatency(string, float64) { m.bump("latency") }
