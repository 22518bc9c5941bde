package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	mid "CoinPulse/internal/middleware"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/binance"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/registry"
	"CoinPulse/internal/services/analytics"
	"CoinPulse/internal/services/signal"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/queue"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRedisClient connects to Redis. Nil when Redis is disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.Dial(context.Background(), cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideCacheService backs the registry and the cycle lock with Redis when
// available, in memory otherwise.
func ProvideCacheService(rc *redis.Client) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(rc, "coinpulse")
}

// ProvideResponseCache creates the HTTP response cache.
func ProvideResponseCache(rc *redis.Client) icache.BytesCache {
	if rc == nil {
		return icache.NewResponses(cache.NewMemoryCache(cache.WithMemoryMaxSize(1024)))
	}
	return icache.NewResponses(cache.NewRedisCache(rc, "coinpulse:resp"))
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideClickHouseClient creates a ClickHouse client and its schema. Nil when
// ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc := cfg.ClickHouse
	client, err := pkgch.NewClient(ctx, pkgch.Config{
		Host:             cc.Host,
		Port:             cc.Port,
		Database:         cc.Database,
		User:             cc.User,
		Password:         cc.Password,
		UseHTTP:          cc.UseHTTP,
		AsyncInsert:      cc.AsyncInsert,
		WaitForAsync:     cc.WaitForAsync,
		DialTimeout:      cc.DialTimeout,
		ReadTimeout:      cc.ReadTimeout,
		MaxExecutionTime: cc.MaxExecutionTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if err := client.InitSchema(ctx, pkgch.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer and, when a collect topic is
// set, forwards aggregated error logs through it. Nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      kc.Brokers,
		RequiredAcks: kc.RequiredAcks,
		Compression:  kc.Compression,
		MaxAttempts:  kc.Producer.MaxAttempts,
		WriteTimeout: kc.Producer.WriteTimeout,
		ReadTimeout:  kc.Producer.ReadTimeout,
		BatchSize:    kc.Producer.BatchSize,
		BatchBytes:   kc.Producer.BatchBytes,
		Linger:       kc.Producer.Linger,
		Async:        kc.Producer.Async,
		HashByKey:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Log.CollectTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Log.CollectEvery,
			Topic:        cfg.Log.CollectTopic,
			Publisher:    producer,
		})
	}
	return producer, nil
}

// ProvideSnapshotStore creates the ClickHouse snapshot store. Nil without ClickHouse.
func ProvideSnapshotStore(ch *pkgch.Client, cfg *config.Config) repository.SnapshotStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHSnapshotStore(ch, cfg.ClickHouse.Database)
}

// ProvideSnapshotPublisher creates the Kafka snapshot publisher. Nil without Kafka.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SnapshotPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSnapshotRouter routes finished snapshots to the configured sink.
func ProvideSnapshotRouter(
	pub repository.SnapshotPublisher,
	store repository.SnapshotStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SnapshotRouter {
	return usecase.NewSnapshotRouter(pub, store, m, cfg.Sink.Type)
}

// ProvidePriceSource selects the upstream price source and guards it.
func ProvidePriceSource(cfg *config.Config, ch *pkgch.Client, m repository.Metrics, l *applogger.Logger) (repository.PriceSource, error) {
	var upstream repository.PriceSource
	switch cfg.PriceSource.Type {
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("price source clickhouse: client not configured")
		}
		upstream = internalrepo.NewCHCandleSource(ch, cfg.ClickHouse.Database, l)
	default:
		upstream = binance.NewPriceSource(
			cfg.Binance.APIKey,
			cfg.Binance.Secret,
			cfg.Binance.BaseURL,
			cfg.Binance.Timeout,
			binance.WithQuote(cfg.Binance.Quote),
			binance.WithInterval(cfg.Binance.Interval),
			binance.WithLogger(l),
		)
	}
	return mid.NewPriceGuard(upstream, m,
		mid.WithMinInterval(cfg.PriceSource.MinInterval),
		mid.WithMaxStale(cfg.PriceSource.MaxStale),
	), nil
}

// ProvideExternalModel creates the prediction service client. Nil without a base URL.
func ProvideExternalModel(cfg *config.Config) domsvc.ExternalModel {
	if cfg.Model.BaseURL == "" {
		return nil
	}
	return analytics.NewHTTPModelClient(cfg.Model.BaseURL,
		analytics.WithModelTimeout(cfg.Model.Timeout),
		analytics.WithModelAttempts(cfg.Model.Attempts),
	)
}

// ProvideRegistry creates the symbol registry.
func ProvideRegistry(cfg *config.Config, store cache.Service, l *applogger.Logger) *registry.Registry {
	weights := signal.Weights{BySymbol: make(map[string]float64, len(cfg.Signals.Weights)), Default: cfg.Signals.DefaultWeight}
	for sym, w := range cfg.Signals.Weights {
		weights.BySymbol[strings.ToUpper(sym)] = w
	}
	return registry.New(store,
		registry.WithDefaults(cfg.Symbols.Defaults),
		registry.WithKey(cfg.Symbols.Key),
		registry.WithWeights(weights),
		registry.WithLogger(l),
	)
}

// ProvideSignalStream creates the websocket snapshot hub.
func ProvideSignalStream(l *applogger.Logger) *api.SignalStream {
	return api.NewSignalStream(l)
}

// ProvideSignalCycle creates the evaluation cycle.
func ProvideSignalCycle(
	cfg *config.Config,
	prices repository.PriceSource,
	model domsvc.ExternalModel,
	reg *registry.Registry,
	m repository.Metrics,
	lock cache.Service,
	sink *usecase.SnapshotRouter,
	stream *api.SignalStream,
	l *applogger.Logger,
) *usecase.SignalCycle {
	return usecase.NewSignalCycle(prices, model, reg, m,
		usecase.WithCycleLock(lock, cfg.Scheduler.LockTTL),
		usecase.WithSink(sink),
		usecase.WithBroadcaster(stream),
		usecase.WithCycleLogger(l),
		usecase.WithBars(cfg.Scheduler.Bars),
		usecase.WithSymbolTimeout(cfg.Scheduler.SymbolTimeout),
		usecase.WithVolatility(cfg.Signals.VolWindow, cfg.Signals.EWMALambda),
	)
}

// ProvideScheduler creates the periodic cycle runner.
func ProvideScheduler(cfg *config.Config, cycle *usecase.SignalCycle, l *applogger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(cycle, cfg.Scheduler.Interval, l)
}

// ProvideQueue creates the Redis job queue with the refresh job. Nil when the
// queue is disabled.
func ProvideQueue(cfg *config.Config, rc *redis.Client, sched *usecase.Scheduler, l *applogger.Logger) (*queue.RedisQueue, error) {
	if !cfg.Queue.Enabled || rc == nil {
		return nil, nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc, queue.WithKeyPrefix("coinpulse:queue:"+cfg.Queue.Name))
	if err := q.RegisterJob(usecase.NewRefreshJob(sched, l)); err != nil {
		return nil, err
	}
	return q, nil
}

// ProvideRefresher creates the refresh requester and hooks it to registry changes.
func ProvideRefresher(q *queue.RedisQueue, sched *usecase.Scheduler, reg *registry.Registry, l *applogger.Logger) *usecase.Refresher {
	var qs queue.QueueService
	if q != nil {
		qs = q
	}
	r := usecase.NewRefresher(qs, sched, l)
	reg.SetOnChange(r.OnRegistryChange)
	return r
}

// ProvideKafkaConsumer creates the snapshot archive consumer. Nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	cc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    cc.GroupID,
		Workers:    cc.Workers,
		BufferSize: cc.BufferSize,
		RetryMax:   cc.RetryMax,
		BackoffMin: cc.BackoffMin,
		BackoffMax: cc.BackoffMax,
		DLQTopic:   cc.DLQTopic,
		MinBytes:   cc.MinBytes,
		MaxBytes:   cc.MaxBytes,
		Logger:     l,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.Use(pkgkafka.Chain(pkgkafka.LoggingHook(l), pkgkafka.MetricsHook(prometheus.DefaultRegisterer)))
	return consumer, nil
}

// ProvideSnapshotArchiver stores consumed snapshots. Nil without a store.
func ProvideSnapshotArchiver(cfg *config.Config, store repository.SnapshotStore, m repository.Metrics) *usecase.SnapshotArchiver {
	if store == nil {
		return nil
	}
	return usecase.NewSnapshotArchiver(cfg.Kafka.Topic, store, m)
}

// ProvideHistory creates the aggregate history use case.
func ProvideHistory(store repository.SnapshotStore) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(store)
}

// ProvideSignalsHandler creates the REST handler.
func ProvideSignalsHandler(
	cfg *config.Config,
	l *applogger.Logger,
	cycle *usecase.SignalCycle,
	reg *registry.Registry,
	history *usecase.HistoryUseCase,
	refresher *usecase.Refresher,
	responses icache.BytesCache,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l, cycle, reg,
		api.WithResponseCache(responses, cfg.Cache.SignalTTL, cfg.Cache.VolTTL),
		api.WithRateLimiter(ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)),
		api.WithHistory(history),
		api.WithRefresher(refresher),
	)
}

// ProvideHTTPServer creates the Echo server with the API and stream routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.SignalsEchoHandler, stream *api.SignalStream) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, xhttp.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MetricsPath:  metricsPath,
	}, h, stream)
}

// ProvideApp creates the application. Components stop in reverse order.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sched *usecase.Scheduler,
	q *queue.RedisQueue,
	consumer *pkgkafka.Consumer,
	archiver *usecase.SnapshotArchiver,
	sink *usecase.SnapshotRouter,
	stream *api.SignalStream,
	ch *pkgch.Client,
	rc *redis.Client,
) *server.App {
	app := server.New(cfg, l, httpServer)

	if rc != nil {
		app.Register(server.Component{Name: "redis", Stop: closeFn(rc.Close)})
	}
	if ch != nil {
		app.Register(server.Component{Name: "clickhouse", Stop: closeFn(ch.Close)})
	}
	app.Register(server.Component{Name: "snapshot sink", Stop: func(context.Context) error {
		l.RemoveCollector()
		sink.Close()
		return nil
	}})
	app.Register(server.Component{Name: "stream", Stop: func(context.Context) error {
		stream.Close()
		return nil
	}})
	if q != nil {
		app.Register(server.Component{
			Name:  "queue",
			Start: q.Start,
			Stop: func(ctx context.Context) error {
				if st, err := q.Stats(ctx); err == nil {
					l.Info("queue depth at shutdown",
						applogger.Int64("pending", st.Pending),
						applogger.Int64("delayed", st.Delayed),
						applogger.Int64("dead", st.Dead))
				}
				return q.Stop(ctx)
			},
		})
	}
	if consumer != nil && archiver != nil {
		consumer.RegisterHandler(archiver)
		app.Register(server.Component{
			Name:  "kafka consumer",
			Start: consumer.Start,
			Stop:  consumer.Stop,
		})
	}
	if cfg.Scheduler.Enabled {
		app.Register(server.Component{Name: "scheduler", Start: sched.Start, Stop: sched.Stop})
	}
	return app
}

func closeFn(fn func() error) func(context.Context) error {
	return func(context.Context) error { return fn() }
}
