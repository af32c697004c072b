package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"asdts/internal/domain/models"
)

type stubIngestor struct {
	mu      sync.Mutex
	err     error
	samples []*models.SentimentSample
}

func (s *stubIngestor) Ingest(_ context.Context, smp *models.SentimentSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.samples = append(s.samples, smp)
	return nil
}

func (s *stubIngestor) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

type countMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{counts: make(map[string]int)}
}

func (m *countMetrics) bump(name string) {
	m.mu.Lock()
	m.counts[name]++
	m.mu.Unlock()
}

func (m *countMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

func (m *countMetrics) RecordSampleIngested(string, string) { m.bump("sample") }
func (m *countMetrics) RecordSignal(string, string)         { m.bump("signal") }
func (m *countMetrics) RecordRejection(string)              { m.bump("rejection") }
func (m *countMetrics) RecordSentiment(string, float64)     { m.bump("sentiment") }
func (m *countMetrics) RecordLastPrice(string, float64)     { m.bump("price") }
func (m *countMetrics) RecordRealizedPnL(float64)           { m.bump("pnl") }
func (m *countMetrics) RecordError(kind string)             { m.bump("err_" + kind) }
func (m *countMetrics) RecordLatency(string, float64)       { m.bump("latency") }

func testSample(symbol string) *models.SentimentSample {
	return &models.SentimentSample{
		Symbol:     symbol,
		Source:     models.SourceNews,
		Score:      0.5,
		Confidence: 0.8,
		Timestamp:  time.Now(),
	}
}

func TestPipelineForwards(t *testing.T) {
	sink := &stubIngestor{}
	p := NewSamplePipeline(sink, newCountMetrics())

	if err := p.Ingest(context.Background(), testSample("BTCUSDT")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if sink.received() != 1 {
		t.Fatalf("downstream received %d, want 1", sink.received())
	}
}

func TestPipelineThrottleDropsSilently(t *testing.T) {
	sink := &stubIngestor{}
	metrics := newCountMetrics()
	p := NewSamplePipeline(sink, metrics, WithMaxRPS(2))

	for i := 0; i < 10; i++ {
		if err := p.Ingest(context.Background(), testSample("BTCUSDT")); err != nil {
			t.Fatalf("throttled ingest must not error: %v", err)
		}
	}
	if sink.received() >= 10 {
		t.Fatalf("throttle had no effect: %d forwarded", sink.received())
	}
	if metrics.count("err_pipeline_throttle") == 0 {
		t.Fatalf("throttle drops not counted")
	}
}

func TestPipelineValidationErrorNotBuffered(t *testing.T) {
	sink := &stubIngestor{err: fmt.Errorf("%w: bad score", models.ErrInvalidSample)}
	metrics := newCountMetrics()
	p := NewSamplePipeline(sink, metrics)

	err := p.Ingest(context.Background(), testSample("BTCUSDT"))
	if !errors.Is(err, models.ErrInvalidSample) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if metrics.count("err_pipeline_process") != 0 {
		t.Fatalf("validation failure must not enter the retry buffer")
	}
}

func TestPipelineBuffersDownstreamFailure(t *testing.T) {
	sink := &stubIngestor{err: errors.New("store busy")}
	metrics := newCountMetrics()
	p := NewSamplePipeline(sink, metrics, WithBufferSize(4))

	if err := p.Ingest(context.Background(), testSample("BTCUSDT")); err == nil {
		t.Fatalf("expected downstream error")
	}
	if metrics.count("err_pipeline_process") != 1 {
		t.Fatalf("downstream failure not counted")
	}

	// The buffered sample flushes once the downstream recovers.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sink.received() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sink.received() != 1 {
		t.Fatalf("buffered sample not flushed")
	}
}

func TestPipelineRestartsAfterStop(t *testing.T) {
	sink := &stubIngestor{err: errors.New("store busy")}
	p := NewSamplePipeline(sink, newCountMetrics(), WithBufferSize(4))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First lifecycle: nothing to flush.
	p.Start(ctx)
	p.Stop()

	if err := p.Ingest(ctx, testSample("BTCUSDT")); err == nil {
		t.Fatalf("expected downstream error")
	}

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	// Second lifecycle must flush the buffered sample.
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sink.received() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sink.received() != 1 {
		t.Fatalf("buffered sample not flushed after restart")
	}
}

func TestPipelineNilSample(t *testing.T) {
	p := NewSamplePipeline(&stubIngestor{}, newCountMetrics())
	if err := p.Ingest(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil sample")
	}
}
