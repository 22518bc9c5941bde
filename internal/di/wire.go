//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCacheService,
		ProvideResponseCache,

		// Repositories
		ProvideSnapshotStore,
		ProvideSnapshotPublisher,
		ProvidePriceSource,
		ProvideExternalModel,
		ProvideRegistry,

		// Use cases
		ProvideSnapshotRouter,
		ProvideSignalStream,
		ProvideSignalCycle,
		ProvideScheduler,
		ProvideQueue,
		ProvideRefresher,
		ProvideHistory,
		ProvideKafkaConsumer,
		ProvideSnapshotArchiver,

		// HTTP
		ProvideSignalsHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
