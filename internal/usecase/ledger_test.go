package usecase

import (
	"math"
	"testing"
	"time"

	"asdts/internal/domain/models"
)

var ledgerDay = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func ledgerFixture() *PositionLedger {
	return NewPositionLedger(LedgerConfig{StopLossPct: 0.05, TakeProfitPct: 0.10})
}

func fill(qty, price float64, at time.Time) models.Fill {
	return models.Fill{Symbol: "BTCUSDT", Quantity: qty, Price: price, Timestamp: at}
}

func TestLedgerOpenThenClose(t *testing.T) {
	l := ledgerFixture()

	events, err := l.Apply(fill(1, 100, ledgerDay))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(events) != 1 || events[0].Type != "open" {
		t.Fatalf("expected one open event, got %+v", events)
	}
	pos, ok := l.Position("BTCUSDT")
	if !ok || pos.Status != models.PositionOpen {
		t.Fatalf("expected open position, got %+v", pos)
	}

	events, err = l.Apply(fill(-1, 110, ledgerDay.Add(time.Minute)))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(events) != 1 || events[0].Type != "close" {
		t.Fatalf("expected one close event, got %+v", events)
	}
	if math.Abs(events[0].Realized-10) > 1e-9 {
		t.Fatalf("realized %v, want 10", events[0].Realized)
	}
	if events[0].Position.Status != models.PositionClosed {
		t.Fatalf("closed position status %s", events[0].Position.Status)
	}
	if _, ok := l.Position("BTCUSDT"); ok {
		t.Fatalf("position still open after close")
	}
	if math.Abs(l.RealizedTotal()-10) > 1e-9 {
		t.Fatalf("realized total %v, want 10", l.RealizedTotal())
	}
	if len(l.ClosedPositions()) != 1 {
		t.Fatalf("closed record not retained")
	}
}

func TestLedgerAdjustWeightedAverage(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(1, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	events, err := l.Apply(fill(1, 120, ledgerDay.Add(time.Minute)))
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(events) != 1 || events[0].Type != "adjust" {
		t.Fatalf("expected adjust event, got %+v", events)
	}

	pos, _ := l.Position("BTCUSDT")
	if math.Abs(pos.Quantity-2) > 1e-9 {
		t.Fatalf("quantity %v, want 2", pos.Quantity)
	}
	if math.Abs(pos.EntryPrice-110) > 1e-9 {
		t.Fatalf("entry %v, want 110", pos.EntryPrice)
	}
}

func TestLedgerPartialReduce(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(2, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	events, err := l.Apply(fill(-1, 120, ledgerDay.Add(time.Minute)))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(events) != 1 || events[0].Type != "adjust" {
		t.Fatalf("expected adjust event, got %+v", events)
	}
	if math.Abs(events[0].Realized-20) > 1e-9 {
		t.Fatalf("realized %v, want 20", events[0].Realized)
	}

	pos, _ := l.Position("BTCUSDT")
	if math.Abs(pos.Quantity-1) > 1e-9 {
		t.Fatalf("remaining quantity %v, want 1", pos.Quantity)
	}
}

func TestLedgerSignFlipClosesThenOpens(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(1, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	events, err := l.Apply(fill(-3, 110, ledgerDay.Add(time.Minute)))
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected close+open, got %+v", events)
	}
	if events[0].Type != "close" || events[1].Type != "open" {
		t.Fatalf("event order %s, %s", events[0].Type, events[1].Type)
	}
	if math.Abs(events[0].Realized-10) > 1e-9 {
		t.Fatalf("realized %v, want 10", events[0].Realized)
	}

	pos, ok := l.Position("BTCUSDT")
	if !ok {
		t.Fatalf("expected new short position")
	}
	if math.Abs(pos.Quantity-(-2)) > 1e-9 {
		t.Fatalf("quantity %v, want -2", pos.Quantity)
	}
	if math.Abs(pos.EntryPrice-110) > 1e-9 {
		t.Fatalf("entry %v, want 110", pos.EntryPrice)
	}
}

func TestLedgerShortRealization(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(-1, 100, ledgerDay)); err != nil {
		t.Fatalf("open short: %v", err)
	}
	events, err := l.Apply(fill(1, 90, ledgerDay.Add(time.Minute)))
	if err != nil {
		t.Fatalf("cover: %v", err)
	}
	// Short covered lower: profit of 10.
	if math.Abs(events[0].Realized-10) > 1e-9 {
		t.Fatalf("realized %v, want 10", events[0].Realized)
	}
}

func TestLedgerProtectivePrices(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(1, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	pos, _ := l.Position("BTCUSDT")
	if math.Abs(pos.StopLossPrice-95) > 1e-9 {
		t.Fatalf("long stop %v, want 95", pos.StopLossPrice)
	}
	if math.Abs(pos.TakeProfitPrice-110) > 1e-9 {
		t.Fatalf("long take-profit %v, want 110", pos.TakeProfitPrice)
	}

	if _, err := l.Apply(fill(-1, 100, ledgerDay)); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := l.Apply(fill(-1, 200, ledgerDay)); err != nil {
		t.Fatalf("open short: %v", err)
	}
	pos, _ = l.Position("BTCUSDT")
	if math.Abs(pos.StopLossPrice-210) > 1e-9 {
		t.Fatalf("short stop %v, want 210", pos.StopLossPrice)
	}
}

func TestLedgerDailyLossRollsOver(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(1, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := l.Apply(fill(-1, 90, ledgerDay.Add(time.Hour))); err != nil {
		t.Fatalf("close at loss: %v", err)
	}
	if got := l.DailyLoss("BTCUSDT", ledgerDay.Add(2*time.Hour)); math.Abs(got-10) > 1e-9 {
		t.Fatalf("daily loss %v, want 10", got)
	}

	nextDay := ledgerDay.Add(24 * time.Hour)
	if got := l.DailyLoss("BTCUSDT", nextDay); got != 0 {
		t.Fatalf("daily loss after rollover %v, want 0", got)
	}
	// Realized total survives the rollover.
	if math.Abs(l.RealizedTotal()-(-10)) > 1e-9 {
		t.Fatalf("realized total %v, want -10", l.RealizedTotal())
	}
}

func TestLedgerStaleFillKeepsDailyLoss(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(fill(1, 100, ledgerDay)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := l.Apply(fill(-1, 90, ledgerDay.Add(time.Hour))); err != nil {
		t.Fatalf("close at loss: %v", err)
	}
	if got := l.DailyLoss("BTCUSDT", ledgerDay.Add(2*time.Hour)); math.Abs(got-10) > 1e-9 {
		t.Fatalf("daily loss %v, want 10", got)
	}

	// A late-arriving fill stamped yesterday must not wipe today's
	// tally; its loss books into the current day.
	stale := ledgerDay.Add(-24 * time.Hour)
	if _, err := l.Apply(fill(1, 100, stale)); err != nil {
		t.Fatalf("stale open: %v", err)
	}
	if got := l.DailyLoss("BTCUSDT", ledgerDay.Add(3*time.Hour)); math.Abs(got-10) > 1e-9 {
		t.Fatalf("daily loss after stale fill %v, want 10", got)
	}

	if _, err := l.Apply(fill(-1, 95, stale.Add(time.Hour))); err != nil {
		t.Fatalf("stale close at loss: %v", err)
	}
	if got := l.DailyLoss("BTCUSDT", ledgerDay.Add(4*time.Hour)); math.Abs(got-15) > 1e-9 {
		t.Fatalf("daily loss after stale close %v, want 15", got)
	}
}

func TestLedgerRejectsMalformedFills(t *testing.T) {
	l := ledgerFixture()

	if _, err := l.Apply(models.Fill{Price: 100, Quantity: 1, Timestamp: ledgerDay}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
	if _, err := l.Apply(fill(1, 0, ledgerDay)); err == nil {
		t.Fatalf("expected error for zero price")
	}
	if _, err := l.Apply(fill(0, 100, ledgerDay)); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
}
