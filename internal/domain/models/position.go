package models

import "time"

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// Position is one symbol's open (or retained closed) position. Owned
// exclusively by the ledger; quantity sign determines long/short and
// is nonzero only while OPEN.
type Position struct {
	Symbol          string         `json:"symbol"`
	Quantity        float64        `json:"quantity"` // signed
	EntryPrice      float64        `json:"entry_price"`
	StopLossPrice   float64        `json:"stop_loss_price"`
	TakeProfitPrice float64        `json:"take_profit_price"`
	OpenedAt        time.Time      `json:"opened_at"`
	ClosedAt        time.Time      `json:"closed_at,omitempty"`
	Status          PositionStatus `json:"status"`
	RealizedPnL     float64        `json:"realized_pnl"`
}

// Notional is the absolute position value at the given mark price.
func (p *Position) Notional(mark float64) float64 {
	n := p.Quantity * mark
	if n < 0 {
		return -n
	}
	return n
}

// UnrealizedPnL marks the open quantity against the given price.
func (p *Position) UnrealizedPnL(mark float64) float64 {
	if p.Status != PositionOpen || mark <= 0 {
		return 0
	}
	return (mark - p.EntryPrice) * p.Quantity
}

// Fill is an execution confirmation from the execution collaborator.
// Quantity is signed; a partial fill simply carries a smaller quantity
// and flows through the ledger's adjust transition.
type Fill struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"` // signed
	Timestamp time.Time `json:"timestamp"`
}
