package mocks

//go:generate mockgen -destination=./mock_price_source.go -package=mocks CoinPulse/internal/domain/repository PriceSource
//go:generate mockgen -destination=./mock_registry.go -package=mocks CoinPulse/internal/domain/repository SymbolRegistry
//go:generate mockgen -destination=./mock_snapshot.go -package=mocks CoinPulse/internal/domain/repository SnapshotSink,SnapshotPublisher,SnapshotStore
//go:generate mockgen -destination=./mock_metrics.go -package=mocks CoinPulse/internal/domain/repository Metrics
//go:generate mockgen -destination=./mock_external_model.go -package=mocks CoinPulse/internal/domain/service ExternalModel
