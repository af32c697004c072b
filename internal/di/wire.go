//go:build wireinject
// +build wireinject

package di

import (
	"asdts/pkg/config"
	"asdts/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,
		ProvideOrderQueue,

		// Repositories
		ProvideSampleStore,
		ProvideAuditSink,
		ProvideOrderRouter,

		// Pipeline stages
		ProvideAggregator,
		ProvideSignalGenerator,
		ProvideRiskGate,
		ProvideLedger,
		ProvideEngine,
		ProvideSamplePipeline,

		// Sources and handlers
		ProvideSamplesHandler,
		ProvideFillsHandler,
		ProvideMarketCollector,
		ProvideQuoteFetcher,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
