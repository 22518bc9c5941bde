//go:build !wireinject
// +build !wireinject

// Maintained by hand to match the provider set in wire.go. Running
// go generate replaces it with wire's output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ProvideRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	repositoryMetrics := ProvideMetrics()
	clickhouseClient, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	priceSource, err := ProvidePriceSource(cfg, clickhouseClient, repositoryMetrics, logger)
	if err != nil {
		return nil, err
	}
	externalModel := ProvideExternalModel(cfg)
	service := ProvideCacheService(client)
	registryRegistry := ProvideRegistry(cfg, service, logger)
	producer, err := ProvideKafkaProducer(cfg, logger)
	if err != nil {
		return nil, err
	}
	snapshotPublisher := ProvideSnapshotPublisher(producer, cfg)
	snapshotStore := ProvideSnapshotStore(clickhouseClient, cfg)
	snapshotRouter := ProvideSnapshotRouter(snapshotPublisher, snapshotStore, repositoryMetrics, cfg)
	signalStream := ProvideSignalStream(logger)
	signalCycle := ProvideSignalCycle(cfg, priceSource, externalModel, registryRegistry, repositoryMetrics, service, snapshotRouter, signalStream, logger)
	historyUseCase := ProvideHistory(snapshotStore)
	scheduler := ProvideScheduler(cfg, signalCycle, logger)
	redisQueue, err := ProvideQueue(cfg, client, scheduler, logger)
	if err != nil {
		return nil, err
	}
	refresher := ProvideRefresher(redisQueue, scheduler, registryRegistry, logger)
	bytesCache := ProvideResponseCache(client)
	signalsEchoHandler := ProvideSignalsHandler(cfg, logger, signalCycle, registryRegistry, historyUseCase, refresher, bytesCache)
	httpServer := ProvideHTTPServer(cfg, logger, signalsEchoHandler, signalStream)
	consumer, err := ProvideKafkaConsumer(cfg, logger)
	if err != nil {
		return nil, err
	}
	snapshotArchiver := ProvideSnapshotArchiver(cfg, snapshotStore, repositoryMetrics)
	app := ProvideApp(cfg, logger, httpServer, scheduler, redisQueue, consumer, snapshotArchiver, snapshotRouter, signalStream, clickhouseClient, client)
	return app, nil
}
