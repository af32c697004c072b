package usecase

import (
	"context"
	"math"
	"testing"

	"asdts/internal/domain/models"
	"asdts/internal/middleware"
)

type captureIngestor struct {
	samples []*models.SentimentSample
}

func (c *captureIngestor) Ingest(_ context.Context, s *models.SentimentSample) error {
	c.samples = append(c.samples, s)
	return nil
}

func TestSamplesHandlerDecodes(t *testing.T) {
	sink := &captureIngestor{}
	pipe := middleware.NewSamplePipeline(sink, newFakeMetrics())
	h := NewKafkaSamplesHandler("sentiment.samples", pipe)

	if h.Topic() != "sentiment.samples" {
		t.Fatalf("topic %s", h.Topic())
	}

	payload := []byte(`{"symbol":"BTCUSDT","source":"social","score":-0.4,"confidence":0.7,"t":1774958400}`)

	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(sink.samples))
	}
	s := sink.samples[0]
	if s.Symbol != "BTCUSDT" || s.Source != models.SourceSocial {
		t.Fatalf("unexpected sample %+v", s)
	}
	if math.Abs(s.Score-(-0.4)) > 1e-9 || math.Abs(s.Confidence-0.7) > 1e-9 {
		t.Fatalf("unexpected score/confidence %+v", s)
	}
	if s.Timestamp.Unix() != 1774958400 {
		t.Fatalf("timestamp %v", s.Timestamp)
	}
}

func TestSamplesHandlerRejectsGarbage(t *testing.T) {
	pipe := middleware.NewSamplePipeline(&captureIngestor{}, newFakeMetrics())
	h := NewKafkaSamplesHandler("sentiment.samples", pipe)

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFillsHandlerAppliesFill(t *testing.T) {
	router := &fakeRouter{}
	engine, _, _, _ := engineFixture(10000, router)
	h := NewKafkaFillsHandler("orders.fills", engine)

	payload := []byte(`{"symbol":"BTCUSDT","price":100,"qty":0.5,"t":1774958400}`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	pos, ok := engine.Ledger().Position("BTCUSDT")
	if !ok {
		t.Fatalf("expected open position")
	}
	if math.Abs(pos.Quantity-0.5) > 1e-9 || math.Abs(pos.EntryPrice-100) > 1e-9 {
		t.Fatalf("unexpected position %+v", pos)
	}
}

func TestFillsHandlerRejectsGarbage(t *testing.T) {
	router := &fakeRouter{}
	engine, _, _, _ := engineFixture(10000, router)
	h := NewKafkaFillsHandler("orders.fills", engine)

	if err := h.Handle(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}
