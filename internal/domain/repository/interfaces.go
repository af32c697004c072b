package repository

import (
	"context"
	"time"

	"asdts/internal/domain/models"
)

// SampleStore holds time-stamped sentiment samples per symbol.
// Append-only: Add rejects invalid samples, Query returns the
// time-ordered window [now-window, now]. Re-querying with the same
// now yields the same set.
type SampleStore interface {
	Add(sample *models.SentimentSample) error
	Query(symbol string, now time.Time, window time.Duration) []models.SentimentSample
}

// SampleStream is the boundary to a live feed that produces trade
// prints (the market-source scoring input).
type SampleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.TradePrint, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// OrderRouter hands order intents to the execution collaborator.
// Fills come back asynchronously on a separate channel (Kafka topic);
// the router never blocks the core on execution.
type OrderRouter interface {
	Submit(ctx context.Context, intent *models.OrderIntent) error
	Close() error
}

// AuditSink is the persistence collaborator: a write-only, eventually
// consistent projection of pipeline state. Nothing here is ever read
// back into the decision path.
type AuditSink interface {
	Init(ctx context.Context) error
	RecordAggregate(ctx context.Context, agg *models.AggregatedSentiment) error
	RecordSignal(ctx context.Context, sig *models.Signal) error
	RecordIntent(ctx context.Context, intent *models.OrderIntent) error
	RecordRejection(ctx context.Context, symbol string, reason, detail string) error
	RecordPositionEvent(ctx context.Context, event string, pos *models.Position, fill *models.Fill) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics abstracts pipeline instrumentation.
type Metrics interface {
	RecordSampleIngested(source, symbol string)
	RecordSignal(symbol, direction string)
	RecordRejection(reason string)
	RecordSentiment(symbol string, value float64)
	RecordLastPrice(symbol string, price float64)
	RecordRealizedPnL(total float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
