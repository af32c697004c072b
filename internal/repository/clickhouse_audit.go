package repository

import (
	"context"
	"database/sql"
	"fmt"

	"asdts/internal/domain/models"
	"asdts/internal/domain/repository"
)

// ClickHouseAudit implements AuditSink on ClickHouse. It is a
// write-only projection: the pipeline records what it decided, and
// nothing here is ever read back into the decision path.
type ClickHouseAudit struct {
	db       *sql.DB
	database string
}

func NewClickHouseAudit(db *sql.DB, database string) repository.AuditSink {
	return &ClickHouseAudit{db: db, database: database}
}

func (a *ClickHouseAudit) Init(ctx context.Context) error {
	return nil // schema created by the client at startup
}

func (a *ClickHouseAudit) RecordAggregate(ctx context.Context, agg *models.AggregatedSentiment) error {
	q := fmt.Sprintf("INSERT INTO %s.sentiment_agg (ts, symbol, value, sample_count) VALUES (?, ?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q, agg.ComputedAt, agg.Symbol, agg.Value, agg.SampleCount)
	return err
}

func (a *ClickHouseAudit) RecordSignal(ctx context.Context, sig *models.Signal) error {
	q := fmt.Sprintf("INSERT INTO %s.signals (ts, symbol, direction, strength) VALUES (?, ?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q, sig.GeneratedAt, sig.Symbol, string(sig.Direction), sig.Strength)
	return err
}

func (a *ClickHouseAudit) RecordIntent(ctx context.Context, intent *models.OrderIntent) error {
	q := fmt.Sprintf("INSERT INTO %s.order_intents (ts, symbol, side, quantity, reason, stop_loss) VALUES (?, ?, ?, ?, ?, ?)", a.database)
	stopLoss := uint8(0)
	if intent.StopLoss {
		stopLoss = 1
	}
	_, err := a.db.ExecContext(ctx, q, intent.CreatedAt, intent.Symbol, string(intent.Side), intent.Quantity, intent.Reason, stopLoss)
	return err
}

func (a *ClickHouseAudit) RecordRejection(ctx context.Context, symbol, reason, detail string) error {
	q := fmt.Sprintf("INSERT INTO %s.rejections (symbol, reason, detail) VALUES (?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q, symbol, reason, detail)
	return err
}

func (a *ClickHouseAudit) RecordPositionEvent(ctx context.Context, event string, pos *models.Position, fill *models.Fill) error {
	q := fmt.Sprintf("INSERT INTO %s.position_events (ts, symbol, event, quantity, entry_price, fill_price, fill_quantity, realized_pnl, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q,
		fill.Timestamp,
		pos.Symbol,
		event,
		pos.Quantity,
		pos.EntryPrice,
		fill.Price,
		fill.Quantity,
		pos.RealizedPnL,
		string(pos.Status),
	)
	return err
}

func (a *ClickHouseAudit) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseAudit) Close() error {
	return nil // pool owned by the client
}

// AuditSchema returns the idempotent DDL for the audit tables.
func AuditSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.sentiment_agg (ts DateTime64(3), symbol String, value Float64, sample_count UInt32) ENGINE=MergeTree ORDER BY (symbol, ts)", database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.signals (ts DateTime64(3), symbol String, direction String, strength Float64) ENGINE=MergeTree ORDER BY (symbol, ts)", database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.order_intents (ts DateTime64(3), symbol String, side String, quantity Float64, reason String, stop_loss UInt8) ENGINE=MergeTree ORDER BY (symbol, ts)", database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.rejections (ts DateTime64(3) DEFAULT now64(3), symbol String, reason String, detail String) ENGINE=MergeTree ORDER BY (symbol, ts)", database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.position_events (ts DateTime64(3), symbol String, event String, quantity Float64, entry_price Float64, fill_price Float64, fill_quantity Float64, realized_pnl Float64, status String) ENGINE=MergeTree ORDER BY (symbol, ts)", database),
	}
}

// NopAudit discards all records. Used when ClickHouse is disabled.
type NopAudit struct{}

func (NopAudit) Init(context.Context) error { return nil }
func (NopAudit) RecordAggregate(context.Context, *models.AggregatedSentiment) error {
	return nil
}
func (NopAudit) RecordSignal(context.Context, *models.Signal) error      { return nil }
func (NopAudit) RecordIntent(context.Context, *models.OrderIntent) error { return nil }
func (NopAudit) RecordRejection(context.Context, string, string, string) error {
	return nil
}
func (NopAudit) RecordPositionEvent(context.Context, string, *models.Position, *models.Fill) error {
	return nil
}
func (NopAudit) Health(context.Context) error { return nil }
func (NopAudit) Close() error                 { return nil }
