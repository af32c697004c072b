package di

import (
	"context"
	"fmt"
	"time"

	"asdts/internal/domain/repository"
	"asdts/internal/handler/api"
	mid "asdts/internal/middleware"
	internalrepo "asdts/internal/repository"
	"asdts/internal/service/marketfeed"
	"asdts/internal/usecase"
	xcache "asdts/pkg/cache"
	pkgch "asdts/pkg/clickhouse"
	"asdts/pkg/config"
	xhttp "asdts/pkg/http"
	pkgkafka "asdts/pkg/kafka"
	applogger "asdts/pkg/logger"
	"asdts/pkg/metrics"
	pkgqueue "asdts/pkg/queue"
	"asdts/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lgr, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSampleStore creates the in-memory sample window store.
func ProvideSampleStore(cfg *config.Config) repository.SampleStore {
	return internalrepo.NewMemorySampleStore(cfg.Sentiment.Window, cfg.Sentiment.ClockSkewTolerance)
}

// ProvideAggregator creates the windowed sentiment aggregator.
func ProvideAggregator(store repository.SampleStore, cfg *config.Config) *usecase.Aggregator {
	return usecase.NewAggregator(store, usecase.AggregatorConfig{
		Window:       cfg.Sentiment.Window,
		HalfLife:     cfg.Sentiment.HalfLife,
		OutlierClamp: cfg.Sentiment.OutlierClamp,
	})
}

// ProvideSignalGenerator creates the hysteresis signal generator.
func ProvideSignalGenerator(cfg *config.Config) *usecase.SignalGenerator {
	return usecase.NewSignalGenerator(usecase.SignalGeneratorConfig{
		ThresholdEnter: cfg.Sentiment.ThresholdEnter,
		ThresholdExit:  cfg.Sentiment.ThresholdExit,
	})
}

// ProvideRiskGate creates the pre-trade risk gate.
func ProvideRiskGate(cfg *config.Config) *usecase.RiskGate {
	return usecase.NewRiskGate(usecase.RiskGateConfig{
		MaxPositionSize: cfg.Trading.MaxPositionSize,
		StopLossPct:     cfg.Trading.StopLossPct,
		DailyLossCap:    cfg.Trading.DailyLossCap,
	})
}

// ProvideLedger creates the position ledger.
func ProvideLedger(cfg *config.Config) *usecase.PositionLedger {
	return usecase.NewPositionLedger(usecase.LedgerConfig{
		StopLossPct:   cfg.Trading.StopLossPct,
		TakeProfitPct: cfg.Trading.TakeProfitPct,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the audit schema. Returns nil when the audit store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.AuditSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideAuditSink creates the ClickHouse audit projection, or a no-op
// sink when ClickHouse is disabled.
func ProvideAuditSink(chClient *pkgch.Client, cfg *config.Config) repository.AuditSink {
	if chClient == nil {
		return internalrepo.NopAudit{}
	}
	return internalrepo.NewClickHouseAudit(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideKafkaProducer creates a Kafka producer keyed by symbol.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the Redis cache backend. Returns nil when
// Redis is disabled; callers fall back to memory-only operation.
func ProvideRedisCache(cfg *config.Config) (*xcache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	rc, err := xcache.NewRedisCache(
		xcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		xcache.WithRedisPassword(cfg.Cache.Redis.Password),
		xcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers a local cache over Redis when available.
func ProvideCacheService(rc *xcache.RedisCache) xcache.Service {
	if rc == nil {
		return xcache.NewMemoryCache()
	}
	return xcache.NewLayeredCache(rc)
}

// ProvideOrderQueue creates the Redis-backed retry queue for order
// submissions. Nil without Redis: failed submits then surface as errors
// instead of being parked for retry.
func ProvideOrderQueue(lgr *applogger.Logger, rc *xcache.RedisCache, cfg *config.Config) *pkgqueue.RedisQueue {
	if rc == nil {
		return nil
	}
	return pkgqueue.NewRedisQueue(lgr, &pkgqueue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client())
}

// ProvideOrderRouter creates the Kafka order router, wrapped with the
// durable retry queue when one is available. The retry job re-submits
// through the inner router so repeated failures hit the queue's own
// retry and dead-letter handling.
func ProvideOrderRouter(producer *pkgkafka.Producer, q *pkgqueue.RedisQueue, cfg *config.Config) repository.OrderRouter {
	inner := internalrepo.NewKafkaOrderRouter(producer, cfg.Kafka.OrdersTopic)
	if q == nil {
		return inner
	}
	q.RegisterJob(usecase.NewOrderRetryJob(inner))
	return internalrepo.NewQueuedOrderRouter(inner, q)
}

// ProvideEngine creates the decision engine with the per-symbol
// execution metadata snapshot.
func ProvideEngine(
	cfg *config.Config,
	store repository.SampleStore,
	agg *usecase.Aggregator,
	gen *usecase.SignalGenerator,
	gate *usecase.RiskGate,
	ledger *usecase.PositionLedger,
	router repository.OrderRouter,
	audit repository.AuditSink,
	metrics repository.Metrics,
	lgr *applogger.Logger,
) *usecase.Engine {
	symbols := make(map[string]usecase.SymbolMeta, len(cfg.Trading.Symbols))
	for _, s := range cfg.Trading.Symbols {
		symbols[s.Name] = usecase.SymbolMeta{
			QtyStep:      s.QtyStep,
			BaseNotional: s.BaseNotional,
		}
	}
	return usecase.NewEngine(usecase.EngineConfig{
		Symbols:         symbols,
		Equity:          cfg.Trading.Equity,
		UpdateInterval:  cfg.Sentiment.UpdateInterval,
		MinEvalInterval: cfg.Sentiment.MinEvalInterval,
	}, store, agg, gen, gate, ledger, router, audit, metrics, lgr)
}

// ProvideSamplePipeline builds the throttling/buffering pipeline
// between sample sources and the engine.
func ProvideSamplePipeline(engine *usecase.Engine, metrics repository.Metrics, cfg *config.Config) *mid.SamplePipeline {
	opts := []mid.PipelineOption{
		mid.WithMaxRPS(cfg.MarketFeed.ThrottleRPS),
		mid.WithBufferSize(cfg.MarketFeed.IngestBuffer),
	}
	return mid.NewSamplePipeline(engine, metrics, opts...)
}

// ProvideSamplesHandler registers the handler for the samples topic.
func ProvideSamplesHandler(pipe *mid.SamplePipeline, cfg *config.Config) *usecase.KafkaSamplesHandler {
	return usecase.NewKafkaSamplesHandler(cfg.Kafka.SamplesTopic, pipe)
}

// ProvideFillsHandler registers the handler for the fills topic.
func ProvideFillsHandler(engine *usecase.Engine, cfg *config.Config) *usecase.KafkaFillsHandler {
	return usecase.NewKafkaFillsHandler(cfg.Kafka.FillsTopic, engine)
}

// ProvideMarketCollector creates the market feed collector, or nil
// when the feed is disabled (Kafka samples remain the only source).
func ProvideMarketCollector(
	cfg *config.Config,
	pipe *mid.SamplePipeline,
	engine *usecase.Engine,
	metrics repository.Metrics,
	lgr *applogger.Logger,
) *usecase.MarketCollector {
	if !cfg.MarketFeed.Enabled {
		return nil
	}
	stream := marketfeed.New(
		cfg.MarketFeed.APIKey,
		cfg.MarketFeed.WebSocketURL,
		cfg.SymbolNames(),
		cfg.MarketFeed.ReconnectDelay,
		cfg.MarketFeed.PingInterval,
	)
	scorer := marketfeed.NewMomentumScorer(
		cfg.MarketFeed.MomentumWindow,
		cfg.MarketFeed.ScoreGain,
		cfg.MarketFeed.SampleInterval,
	)
	return usecase.NewMarketCollector(stream, scorer, pipe, engine, metrics, lgr)
}

// ProvideQuoteFetcher creates the REST quote client used to seed marks
// at startup. Nil when the feed is disabled.
func ProvideQuoteFetcher(cfg *config.Config) *marketfeed.QuoteFetcher {
	if !cfg.MarketFeed.Enabled || cfg.MarketFeed.WebSocketURL == "" {
		return nil
	}
	return marketfeed.NewQuoteFetcher(cfg.MarketFeed.WebSocketURL, cfg.MarketFeed.APIKey)
}

// ProvideHTTPHandler creates the read API handler.
func ProvideHTTPHandler(
	lgr *applogger.Logger,
	engine *usecase.Engine,
	audit repository.AuditSink,
	cache xcache.Service,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewStateEchoHandler(lgr, engine, audit, cache, cfg.Cache.TTL)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	engine *usecase.Engine,
	collector *usecase.MarketCollector,
	consumer *pkgkafka.Consumer,
	samplesHandler *usecase.KafkaSamplesHandler,
	fillsHandler *usecase.KafkaFillsHandler,
	router repository.OrderRouter,
	q *pkgqueue.RedisQueue,
	chClient *pkgch.Client,
	cache xcache.Service,
	quotes *marketfeed.QuoteFetcher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, lgr, engine, collector, consumer, samplesHandler, fillsHandler, router, q, chClient, cache, quotes, handler)
}
