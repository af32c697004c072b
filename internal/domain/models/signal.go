package models

import "time"

// Direction is the discrete trading bias of a signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Sign maps a direction to a position sign: +1 long, -1 short, 0 flat.
func (d Direction) Sign() int {
	switch d {
	case DirectionBuy:
		return 1
	case DirectionSell:
		return -1
	default:
		return 0
	}
}

// Signal is the output of the hysteresis mapping over an aggregated
// sentiment value. Consumed exactly once by the risk gate; a signal
// produces at most one order intent.
type Signal struct {
	Symbol      string    `json:"symbol"`
	Direction   Direction `json:"direction"`
	Strength    float64   `json:"strength"` // [0, 1]
	GeneratedAt time.Time `json:"generated_at"`
}

// TradePrint is a single trade observation from the market feed. It is
// boundary input only: the momentum scorer turns prints into
// market-source samples, and the last price becomes the mark used for
// exposure and unrealized P&L.
type TradePrint struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
