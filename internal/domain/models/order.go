package models

import "time"

// Side is the order side handed to the execution collaborator.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderIntent is the ephemeral value object produced by the risk gate.
// It is handed off once and not retained, except for the audit record.
type OrderIntent struct {
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  float64   `json:"quantity"` // positive; Side carries direction
	Reason    string    `json:"reason"`   // originating signal reference
	StopLoss  bool      `json:"stop_loss,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SignedQuantity returns the quantity with the side's sign applied.
func (o *OrderIntent) SignedQuantity() float64 {
	if o.Side == SideSell {
		return -o.Quantity
	}
	return o.Quantity
}
