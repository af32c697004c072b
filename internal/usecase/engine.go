package usecase

import (
	"context"
	"sync"
	"time"

	"asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
	"asdts/internal/service/ratelimit"
	applogger "asdts/pkg/logger"
)

// EngineConfig holds the engine's immutable startup snapshot.
type EngineConfig struct {
	Symbols         map[string]SymbolMeta
	Equity          float64 // starting account equity
	UpdateInterval  time.Duration
	MinEvalInterval time.Duration
}

// Engine drives the per-symbol pipeline: aggregate -> signal -> risk
// gate -> order intent, and applies fills to the ledger. All work for
// one symbol is serialized behind a per-symbol lock; different symbols
// proceed independently. The pipeline itself performs no I/O — the
// router and audit sink are invoked at its edges, and audit failures
// never block a decision.
type Engine struct {
	cfg     EngineConfig
	store   domrepo.SampleStore
	agg     *Aggregator
	gen     *SignalGenerator
	gate    *RiskGate
	ledger  *PositionLedger
	router  domrepo.OrderRouter
	audit   domrepo.AuditSink
	metrics domrepo.Metrics
	log     *applogger.Logger
	limiter *ratelimit.Limiter

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	prev  map[string]models.Signal

	markMu sync.RWMutex
	marks  map[string]float64
}

func NewEngine(
	cfg EngineConfig,
	store domrepo.SampleStore,
	agg *Aggregator,
	gen *SignalGenerator,
	gate *RiskGate,
	ledger *PositionLedger,
	router domrepo.OrderRouter,
	audit domrepo.AuditSink,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   store,
		agg:     agg,
		gen:     gen,
		gate:    gate,
		ledger:  ledger,
		router:  router,
		audit:   audit,
		metrics: metrics,
		log:     log.With("engine"),
		limiter: ratelimit.New(),
		locks:   make(map[string]*sync.Mutex),
		prev:    make(map[string]models.Signal),
		marks:   make(map[string]float64),
	}
}

// Ingest validates and stores a sample, then evaluates the symbol if
// the per-symbol throttle allows. Invalid samples never enter the
// store; the error is surfaced to the ingestion boundary.
func (e *Engine) Ingest(ctx context.Context, sample *models.SentimentSample) error {
	if err := e.store.Add(sample); err != nil {
		e.metrics.RecordError("sample_invalid")
		return err
	}
	e.metrics.RecordSampleIngested(string(sample.Source), sample.Symbol)

	if e.cfg.MinEvalInterval > 0 {
		refill := 1.0 / e.cfg.MinEvalInterval.Seconds()
		if !e.limiter.Allow(sample.Symbol, 1, refill) {
			return nil // next scheduled cycle will pick it up
		}
	}
	return e.EvaluateSymbol(ctx, sample.Symbol, time.Now())
}

// EvaluateSymbol runs one full pipeline cycle for a symbol. Risk gate
// rejections are terminal for the cycle and not returned as errors.
func (e *Engine) EvaluateSymbol(ctx context.Context, symbol string, now time.Time) error {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() { e.metrics.RecordLatency("evaluate", time.Since(start).Seconds()) }()

	agg := e.agg.Aggregate(symbol, now)
	e.metrics.RecordSentiment(symbol, agg.Value)
	if err := e.audit.RecordAggregate(ctx, &agg); err != nil {
		e.metrics.RecordError("audit_aggregate")
		e.log.Warn("audit aggregate failed", applogger.String("symbol", symbol), applogger.Error(err))
	}

	prev := e.prevSignal(symbol)
	sig := e.gen.Generate(agg, prev)
	e.setPrevSignal(symbol, sig)
	if sig.Direction != prev.Direction {
		e.metrics.RecordSignal(symbol, string(sig.Direction))
		if err := e.audit.RecordSignal(ctx, &sig); err != nil {
			e.metrics.RecordError("audit_signal")
		}
		e.log.Info("signal",
			applogger.String("symbol", symbol),
			applogger.String("direction", string(sig.Direction)),
			applogger.Float64("value", agg.Value),
			applogger.Int("samples", agg.SampleCount))
	}

	mark := e.Mark(symbol)
	if mark <= 0 {
		// No price observed yet; nothing can be sized or valued.
		return nil
	}
	meta, ok := e.cfg.Symbols[symbol]
	if !ok {
		e.metrics.RecordError("unknown_symbol")
		return nil
	}

	var pos *models.Position
	if p, ok := e.ledger.Position(symbol); ok {
		pos = &p
	}
	acct := AccountState{
		Equity:    e.cfg.Equity + e.ledger.RealizedTotal(),
		DailyLoss: e.ledger.DailyLoss(symbol, now),
	}

	intent, err := e.gate.Evaluate(sig, pos, acct, meta, mark)
	if err != nil {
		if rej, ok := models.AsRejection(err); ok {
			e.metrics.RecordRejection(string(rej.Reason))
			if aerr := e.audit.RecordRejection(ctx, symbol, string(rej.Reason), rej.Detail); aerr != nil {
				e.metrics.RecordError("audit_rejection")
			}
			e.log.Warn("order rejected",
				applogger.String("symbol", symbol),
				applogger.String("reason", string(rej.Reason)),
				applogger.String("detail", rej.Detail))
			return nil
		}
		return err
	}
	if intent == nil {
		return nil
	}

	if err := e.router.Submit(ctx, intent); err != nil {
		e.metrics.RecordError("order_submit")
		e.log.Error("order submit failed", applogger.String("symbol", symbol), applogger.Error(err))
		return err
	}
	if err := e.audit.RecordIntent(ctx, intent); err != nil {
		e.metrics.RecordError("audit_intent")
	}
	e.log.Info("order intent",
		applogger.String("symbol", symbol),
		applogger.String("side", string(intent.Side)),
		applogger.Float64("quantity", intent.Quantity),
		applogger.Bool("stop_loss", intent.StopLoss))
	return nil
}

// OnFill applies an execution fill to the ledger and projects the
// resulting transitions to the audit sink.
func (e *Engine) OnFill(ctx context.Context, fill models.Fill) error {
	lock := e.symbolLock(fill.Symbol)
	lock.Lock()
	defer lock.Unlock()

	events, err := e.ledger.Apply(fill)
	if err != nil {
		e.metrics.RecordError("fill_apply")
		return err
	}
	for _, ev := range events {
		if aerr := e.audit.RecordPositionEvent(ctx, ev.Type, &ev.Position, &ev.Fill); aerr != nil {
			e.metrics.RecordError("audit_position")
		}
		e.log.Info("position "+ev.Type,
			applogger.String("symbol", fill.Symbol),
			applogger.Float64("quantity", ev.Position.Quantity),
			applogger.Float64("price", fill.Price),
			applogger.Float64("realized", ev.Realized))
	}
	e.metrics.RecordRealizedPnL(e.ledger.RealizedTotal())
	return nil
}

// Run evaluates every configured symbol on the fixed interval until
// the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	if e.cfg.UpdateInterval <= 0 {
		return
	}
	ticker := time.NewTicker(e.cfg.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for symbol := range e.cfg.Symbols {
				if err := e.EvaluateSymbol(ctx, symbol, now); err != nil {
					e.log.Error("scheduled evaluation failed",
						applogger.String("symbol", symbol), applogger.Error(err))
				}
			}
		}
	}
}

// SetMark records the latest observed price for a symbol.
func (e *Engine) SetMark(symbol string, price float64) {
	if price <= 0 {
		return
	}
	e.markMu.Lock()
	e.marks[symbol] = price
	e.markMu.Unlock()
	e.metrics.RecordLastPrice(symbol, price)
}

// Mark returns the latest observed price, or 0 if none seen.
func (e *Engine) Mark(symbol string) float64 {
	e.markMu.RLock()
	defer e.markMu.RUnlock()
	return e.marks[symbol]
}

// LatestAggregate recomputes the aggregate on demand for the read API.
// A non-positive window uses the configured one.
func (e *Engine) LatestAggregate(symbol string, now time.Time, window time.Duration) models.AggregatedSentiment {
	return e.agg.AggregateWindow(symbol, now, window)
}

// Window returns the configured aggregation window.
func (e *Engine) Window() time.Duration { return e.agg.Window() }

// CurrentSignal returns the last emitted signal for a symbol.
func (e *Engine) CurrentSignal(symbol string) (models.Signal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sig, ok := e.prev[symbol]
	return sig, ok
}

// PositionViews decorates open positions with marks for the read API.
func (e *Engine) PositionViews() []models.PositionView {
	positions := e.ledger.OpenPositions()
	out := make([]models.PositionView, 0, len(positions))
	for _, p := range positions {
		mark := e.Mark(p.Symbol)
		out = append(out, models.PositionView{
			Position:   p,
			Mark:       mark,
			Unrealized: p.UnrealizedPnL(mark),
		})
	}
	return out
}

// Account summarizes account state for the read API.
func (e *Engine) Account() models.AccountView {
	realized := e.ledger.RealizedTotal()
	return models.AccountView{
		Equity:      e.cfg.Equity + realized,
		RealizedPnL: realized,
		OpenCount:   len(e.ledger.OpenPositions()),
	}
}

// Ledger exposes the position authority for collaborators that need
// read access (the engine remains the only writer).
func (e *Engine) Ledger() *PositionLedger { return e.ledger }

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[symbol] = lock
	}
	return lock
}

func (e *Engine) prevSignal(symbol string) models.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prev[symbol]
}

func (e *Engine) setPrevSignal(symbol string, sig models.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prev[symbol] = sig
}
