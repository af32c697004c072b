package usecase

import (
	"fmt"
	"math"

	"asdts/internal/domain/models"
)

// RiskGateConfig carries the account-level limits.
type RiskGateConfig struct {
	MaxPositionSize float64 // fraction of equity a single position may reach
	StopLossPct     float64 // loss fraction past which a closing order is flagged
	DailyLossCap    float64 // absolute realized loss per symbol per day blocking new entries; 0 disables
}

// SymbolMeta is the execution collaborator's metadata snapshot for one
// symbol: minimum tradable increment and base order notional.
type SymbolMeta struct {
	QtyStep      float64
	BaseNotional float64
}

// AccountState is the slice of account state the gate consults.
// DailyLoss is the realized loss (positive number) on this symbol
// today, as tracked by the ledger.
type AccountState struct {
	Equity    float64
	DailyLoss float64
}

// RiskGate validates a signal against position and account limits and
// sizes the resulting order. Checks short-circuit in a fixed order;
// every rejection is a typed, non-fatal RejectionError. There is no
// retry here — a rejected signal cycle simply ends.
type RiskGate struct {
	cfg RiskGateConfig
}

func NewRiskGate(cfg RiskGateConfig) *RiskGate {
	return &RiskGate{cfg: cfg}
}

// Evaluate turns a signal into at most one order intent. It returns
// (nil, nil) when no action is warranted: HOLD signals, or a signal
// pointing the same way as the open position. mark is the current
// price used for sizing and exposure.
func (g *RiskGate) Evaluate(sig models.Signal, pos *models.Position, acct AccountState, meta SymbolMeta, mark float64) (*models.OrderIntent, error) {
	if sig.Direction == models.DirectionHold || mark <= 0 {
		return nil, nil
	}

	open := pos != nil && pos.Status == models.PositionOpen && pos.Quantity != 0
	sign := float64(sig.Direction.Sign())

	// Check 1: direction must differ from the position's implied
	// direction, or the position must be flat.
	if open && sameSign(pos.Quantity, sign) {
		return nil, nil
	}

	var qty float64 // signed candidate quantity
	closing := false
	if open {
		qty = -pos.Quantity
		closing = true
	} else {
		notional := meta.BaseNotional * (1 + sig.Strength)
		qty = sign * notional / mark
	}

	// Check 2: resulting exposure against the position-size cap.
	var current float64
	if open {
		current = pos.Quantity
	}
	exposure := math.Abs(current+qty) * mark
	limit := g.cfg.MaxPositionSize * acct.Equity
	if exposure > limit {
		return nil, &models.RejectionError{
			Symbol: sig.Symbol,
			Reason: models.RejectExposureLimit,
			Detail: fmt.Sprintf("exposure %.2f exceeds limit %.2f", exposure, limit),
		}
	}

	// Check 3: stop-loss exits pass (flagged); loss-capped symbols
	// reject new entries for the rest of the day.
	stopLoss := false
	if closing {
		loss := -pos.UnrealizedPnL(mark)
		threshold := g.cfg.StopLossPct * math.Abs(pos.Quantity) * pos.EntryPrice
		if loss > 0 && loss >= threshold {
			stopLoss = true
		}
	} else if g.cfg.DailyLossCap > 0 && acct.DailyLoss >= g.cfg.DailyLossCap {
		return nil, &models.RejectionError{
			Symbol: sig.Symbol,
			Reason: models.RejectRiskBudget,
			Detail: fmt.Sprintf("daily loss %.2f at cap %.2f", acct.DailyLoss, g.cfg.DailyLossCap),
		}
	}

	// Check 4: round down to the exchange's minimum increment.
	rounded := roundToStep(math.Abs(qty), meta.QtyStep)
	if rounded <= 0 {
		return nil, &models.RejectionError{
			Symbol: sig.Symbol,
			Reason: models.RejectQuantityMin,
			Detail: fmt.Sprintf("quantity %.8f below step %.8f", math.Abs(qty), meta.QtyStep),
		}
	}

	side := models.SideBuy
	if qty < 0 {
		side = models.SideSell
	}
	return &models.OrderIntent{
		Symbol:    sig.Symbol,
		Side:      side,
		Quantity:  rounded,
		Reason:    fmt.Sprintf("signal %s %.4f @ %s", sig.Direction, sig.Strength, sig.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")),
		StopLoss:  stopLoss,
		CreatedAt: sig.GeneratedAt,
	}, nil
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func roundToStep(qty, step float64) float64 {
	if step <= 0 {
		return qty
	}
	steps := math.Floor(qty/step + 1e-9)
	return steps * step
}
