package api

import (
	"context"
	"encoding/json"
	"time"

	models "asdts/internal/domain/models"
	domrepo "asdts/internal/domain/repository"
	"asdts/internal/usecase"
	xcache "asdts/pkg/cache"
	xhttp "asdts/pkg/http"
	xlogger "asdts/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StateEchoHandler exposes the pipeline's read API: current aggregate,
// last signal, open positions, and account state. Responses are cached
// briefly so dashboard polling never touches the engine on every hit.
type StateEchoHandler struct {
	logger   *xlogger.Logger
	engine   *usecase.Engine
	audit    domrepo.AuditSink
	cache    xcache.Service
	cacheTTL time.Duration
}

func NewStateEchoHandler(logger *xlogger.Logger, engine *usecase.Engine, audit domrepo.AuditSink, cache xcache.Service, cacheTTL time.Duration) *StateEchoHandler {
	return &StateEchoHandler{
		logger:   logger,
		engine:   engine,
		audit:    audit,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (h *StateEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/sentiment", h.Sentiment)
	g.GET("/signal", h.Signal)
	g.GET("/positions", h.Positions)
	g.GET("/account", h.Account)
	g.GET("/health", h.Health)
}

func (h *StateEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	window := domrepo.NormalizeWindow(req.Window, h.engine.Window(), h.engine.Window())

	key := xcache.Key("sentiment", req.Symbol, window.String())
	var agg models.AggregatedSentiment
	if h.cached(c.Request().Context(), key, &agg) {
		return xhttp.SuccessResponse(c, agg)
	}

	agg = h.engine.LatestAggregate(req.Symbol, time.Now(), window)
	h.store(c.Request().Context(), key, agg)
	return xhttp.SuccessResponse(c, agg)
}

func (h *StateEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, ok := h.engine.CurrentSignal(req.Symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no signal for symbol "+req.Symbol)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *StateEchoHandler) Positions(c echo.Context) error {
	req := &models.PositionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	views := h.engine.PositionViews()
	if req.Symbol != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.Symbol == req.Symbol {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}
	return xhttp.ListResponse(c, views, int64(len(views)))
}

func (h *StateEchoHandler) Account(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Account())
}

func (h *StateEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	if h.audit != nil {
		if err := h.audit.Health(ctx); err != nil {
			status["audit"] = "degraded"
			h.logger.Warn("audit health", xlogger.Error(err))
		} else {
			status["audit"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *StateEchoHandler) cached(ctx context.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		return false
	}
	var raw string
	if err := h.cache.Get(ctx, key, &raw); err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (h *StateEchoHandler) store(ctx context.Context, key string, value interface{}) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, string(raw), h.cacheTTL); err != nil {
		h.logger.Warn("cache set", xlogger.Error(err))
	}
}
