package models

// SentimentRequest asks for the current aggregated sentiment of a symbol.
type SentimentRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Window string `query:"window"` // optional override, e.g. "15m"
}

// SignalRequest asks for the last emitted signal of a symbol.
type SignalRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

// PositionsRequest lists positions, optionally for one symbol.
type PositionsRequest struct {
	Symbol string `query:"symbol"`
}

// PositionView is a position decorated with its current mark and
// unrealized P&L for the read API.
type PositionView struct {
	Position
	Mark       float64 `json:"mark"`
	Unrealized float64 `json:"unrealized_pnl"`
}

// AccountView summarizes account-level state for the read API.
type AccountView struct {
	Equity      float64 `json:"equity"`
	RealizedPnL float64 `json:"realized_pnl"`
	OpenCount   int     `json:"open_positions"`
}
