package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asdts/internal/domain/repository"
	"asdts/internal/service/marketfeed"
	"asdts/internal/usecase"
	xcache "asdts/pkg/cache"
	pkgch "asdts/pkg/clickhouse"
	"asdts/pkg/config"
	xhttp "asdts/pkg/http"
	pkgkafka "asdts/pkg/kafka"
	applogger "asdts/pkg/logger"
	pkgqueue "asdts/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg            *config.Config
	log            *applogger.Logger
	engine         *usecase.Engine
	collector      *usecase.MarketCollector
	consumer       *pkgkafka.Consumer
	samplesHandler *usecase.KafkaSamplesHandler
	fillsHandler   *usecase.KafkaFillsHandler
	router         repository.OrderRouter
	queue          *pkgqueue.RedisQueue
	chClient       *pkgch.Client
	cache          xcache.Service
	quotes         *marketfeed.QuoteFetcher
	httpHandler    xhttp.Handler
	httpServer     *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.Engine,
	collector *usecase.MarketCollector,
	consumer *pkgkafka.Consumer,
	samplesHandler *usecase.KafkaSamplesHandler,
	fillsHandler *usecase.KafkaFillsHandler,
	router repository.OrderRouter,
	queue *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
	cache xcache.Service,
	quotes *marketfeed.QuoteFetcher,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:            cfg,
		log:            log.With("app"),
		engine:         engine,
		collector:      collector,
		consumer:       consumer,
		samplesHandler: samplesHandler,
		fillsHandler:   fillsHandler,
		router:         router,
		queue:          queue,
		chClient:       chClient,
		cache:          cache,
		quotes:         quotes,
		httpHandler:    httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.seedMarks(ctx)

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Scheduled evaluation loop
	go a.engine.Run(ctx)
	a.log.Info("engine started", applogger.Strings("symbols", a.cfg.SymbolNames()))

	// Kafka sources: provider samples in, execution fills back
	a.consumer.RegisterHandler(a.samplesHandler)
	a.consumer.RegisterHandler(a.fillsHandler)
	if err := a.consumer.Start(); err != nil {
		a.log.Error("kafka consumer start error", applogger.Error(err))
		return err
	}
	a.log.Info("kafka consumer started",
		applogger.String("samples_topic", a.cfg.Kafka.SamplesTopic),
		applogger.String("fills_topic", a.cfg.Kafka.FillsTopic))

	// Durable retry queue for failed order submissions
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("order queue start error", applogger.Error(err))
			return err
		}
	}

	// Market feed collector (optional second sample source)
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("collector error", applogger.Error(err))
			}
		}()
		a.log.Info("market collector started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// seedMarks pulls one REST quote per symbol so sizing works before the
// first live print arrives. Failures are non-fatal: the symbol simply
// waits for its first print.
func (a *App) seedMarks(ctx context.Context) {
	if a.quotes == nil {
		return
	}
	for _, symbol := range a.cfg.SymbolNames() {
		qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		price, err := a.quotes.Quote(qctx, symbol)
		cancel()
		if err != nil {
			a.log.Warn("mark seed failed", applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		a.engine.SetMark(symbol, price)
		a.log.Debug("mark seeded", applogger.String("symbol", symbol), applogger.Float64("price", price))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.consumer.Stop(shutdownCtx); err != nil {
		a.log.Warn("kafka consumer stop error", applogger.Error(err))
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("order queue stop error", applogger.Error(err))
		}
	}

	// Router close flushes the Kafka producer.
	if err := a.router.Close(); err != nil {
		a.log.Warn("order router close error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if err := a.cache.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
