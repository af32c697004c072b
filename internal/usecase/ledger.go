package usecase

import (
	"fmt"
	"math"
	"sync"
	"time"

	"asdts/internal/domain/models"
	"asdts/pkg/util"
)

const qtyEpsilon = 1e-9

// LedgerConfig derives protective prices on open.
type LedgerConfig struct {
	StopLossPct   float64
	TakeProfitPct float64
}

// LedgerEvent describes one position transition caused by a fill.
type LedgerEvent struct {
	Type     string // "open", "adjust", "close"
	Position models.Position
	Fill     models.Fill
	Realized float64
}

// PositionLedger owns every position and is the single authority for
// current exposure. Positions move FLAT -> OPEN -> CLOSED, with
// OPEN -> OPEN adjusts; a fill that flips the sign closes the position
// and opens a new one for the remainder. Closed records are retained
// for audit.
type PositionLedger struct {
	mu        sync.Mutex
	cfg       LedgerConfig
	open      map[string]*models.Position
	closed    []models.Position
	realized  float64
	day       string
	dailyLoss map[string]float64
}

func NewPositionLedger(cfg LedgerConfig) *PositionLedger {
	return &PositionLedger{
		cfg:       cfg,
		open:      make(map[string]*models.Position),
		dailyLoss: make(map[string]float64),
	}
}

// Apply mutates the ledger with an execution fill and returns the
// resulting transitions in order. A fill quantity differing from the
// requested intent is not an error — it simply adjusts by less.
func (l *PositionLedger) Apply(fill models.Fill) ([]LedgerEvent, error) {
	if fill.Symbol == "" {
		return nil, fmt.Errorf("fill: empty symbol")
	}
	if fill.Price <= 0 {
		return nil, fmt.Errorf("fill %s: non-positive price %.8f", fill.Symbol, fill.Price)
	}
	if math.Abs(fill.Quantity) <= qtyEpsilon {
		return nil, fmt.Errorf("fill %s: zero quantity", fill.Symbol)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay(fill.Timestamp)

	pos, ok := l.open[fill.Symbol]
	if !ok {
		opened := l.openPosition(fill)
		return []LedgerEvent{{Type: "open", Position: *opened, Fill: fill}}, nil
	}

	// Same sign: add to the position at a weighted-average entry.
	if sameSign(pos.Quantity, fill.Quantity) {
		total := math.Abs(pos.Quantity) + math.Abs(fill.Quantity)
		pos.EntryPrice = (pos.EntryPrice*math.Abs(pos.Quantity) + fill.Price*math.Abs(fill.Quantity)) / total
		pos.Quantity += fill.Quantity
		l.setProtectivePrices(pos)
		return []LedgerEvent{{Type: "adjust", Position: *pos, Fill: fill}}, nil
	}

	remaining := pos.Quantity + fill.Quantity
	switch {
	case math.Abs(remaining) <= qtyEpsilon:
		// Full close.
		realized := l.realize(pos, fill.Price, pos.Quantity, fill.Timestamp)
		closed := l.closePosition(pos, fill.Timestamp)
		return []LedgerEvent{{Type: "close", Position: closed, Fill: fill, Realized: realized}}, nil

	case sameSign(remaining, pos.Quantity):
		// Partial reduce: realize P&L on the closed portion only.
		closedQty := -fill.Quantity
		realized := l.realize(pos, fill.Price, closedQty, fill.Timestamp)
		pos.Quantity = remaining
		return []LedgerEvent{{Type: "adjust", Position: *pos, Fill: fill, Realized: realized}}, nil

	default:
		// Sign flip: close-then-open. The original quantity realizes
		// its P&L; the remainder opens a fresh position at the fill price.
		realized := l.realize(pos, fill.Price, pos.Quantity, fill.Timestamp)
		closed := l.closePosition(pos, fill.Timestamp)
		opened := l.openPosition(models.Fill{
			Symbol:    fill.Symbol,
			Price:     fill.Price,
			Quantity:  remaining,
			Timestamp: fill.Timestamp,
		})
		return []LedgerEvent{
			{Type: "close", Position: closed, Fill: fill, Realized: realized},
			{Type: "open", Position: *opened, Fill: fill},
		}, nil
	}
}

// Position returns a copy of the open position for symbol, if any.
func (l *PositionLedger) Position(symbol string) (models.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.open[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

// OpenPositions returns copies of all open positions.
func (l *PositionLedger) OpenPositions() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, *p)
	}
	return out
}

// ClosedPositions returns the retained closed records.
func (l *PositionLedger) ClosedPositions() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, len(l.closed))
	copy(out, l.closed)
	return out
}

// RealizedTotal returns cumulative realized P&L across all symbols.
func (l *PositionLedger) RealizedTotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized
}

// DailyLoss returns today's realized loss for symbol as a positive
// number. The risk gate consults this for the daily-loss cap.
func (l *PositionLedger) DailyLoss(symbol string, now time.Time) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay(now)
	return l.dailyLoss[symbol]
}

// Exposure returns the signed notional for symbol at the given mark.
func (l *PositionLedger) Exposure(symbol string, mark float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.open[symbol]
	if !ok {
		return 0
	}
	return pos.Quantity * mark
}

func (l *PositionLedger) openPosition(fill models.Fill) *models.Position {
	pos := &models.Position{
		Symbol:     fill.Symbol,
		Quantity:   fill.Quantity,
		EntryPrice: fill.Price,
		OpenedAt:   fill.Timestamp,
		Status:     models.PositionOpen,
	}
	l.setProtectivePrices(pos)
	l.open[fill.Symbol] = pos
	return pos
}

func (l *PositionLedger) closePosition(pos *models.Position, at time.Time) models.Position {
	pos.Quantity = 0
	pos.Status = models.PositionClosed
	pos.ClosedAt = at
	closed := *pos
	l.closed = append(l.closed, closed)
	delete(l.open, pos.Symbol)
	return closed
}

// realize books P&L for closing closedQty (signed like the position)
// at price. Short positions profit when price < entry because
// closedQty is negative.
func (l *PositionLedger) realize(pos *models.Position, price, closedQty float64, at time.Time) float64 {
	realized := (price - pos.EntryPrice) * closedQty
	pos.RealizedPnL += realized
	l.realized += realized
	if realized < 0 {
		l.dailyLoss[pos.Symbol] += -realized
	}
	return realized
}

func (l *PositionLedger) setProtectivePrices(pos *models.Position) {
	if pos.Quantity >= 0 {
		pos.StopLossPrice = pos.EntryPrice * (1 - l.cfg.StopLossPct)
		pos.TakeProfitPrice = pos.EntryPrice * (1 + l.cfg.TakeProfitPct)
	} else {
		pos.StopLossPrice = pos.EntryPrice * (1 + l.cfg.StopLossPct)
		pos.TakeProfitPrice = pos.EntryPrice * (1 - l.cfg.TakeProfitPct)
	}
}

// rollDay resets the daily-loss tally when ts lands on a later UTC
// day. Day keys compare lexicographically, so a stale-timestamped fill
// from an earlier day books into the current tally instead of wiping
// it.
func (l *PositionLedger) rollDay(ts time.Time) {
	day := util.DayKey(ts)
	if day > l.day {
		l.day = day
		l.dailyLoss = make(map[string]float64)
	}
}
