// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/alchemorsel/reelchef/internal/application/analysis"
	"github.com/alchemorsel/reelchef/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/infrastructure/fetch"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/reelchef/internal/infrastructure/http/ws"
	natsmsg "github.com/alchemorsel/reelchef/internal/infrastructure/messaging/nats"
	"github.com/alchemorsel/reelchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/reelchef/internal/infrastructure/notify"
	gormRepo "github.com/alchemorsel/reelchef/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/reelchef/internal/infrastructure/persistence/memory"
	redisRepo "github.com/alchemorsel/reelchef/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/reelchef/internal/infrastructure/scheduler"
	"github.com/alchemorsel/reelchef/internal/infrastructure/storage"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/alchemorsel/reelchef/pkg/healthcheck"
	"github.com/alchemorsel/reelchef/pkg/logger"
	"github.com/alchemorsel/reelchef/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPath is the optional config file location; empty searches the defaults
type ConfigPath string

// Core provides the analysis pipeline and everything it depends on, without
// the HTTP server, the event consumer or background jobs
func Core(path string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(path)),
		ConfigModule,
		LoggerModule,
		TelemetryModule,
		DatabaseModule,
		CacheModule,
		StorageModule,
		AIModule,
		MessagingModule,
		NotifyModule,
		ServiceModule,
		CoreLifecycleModule,
	)
}

// Server is Core plus the API server, the storage event consumer and the scheduler
func Server(path string) fx.Option {
	return fx.Options(
		Core(path),
		HTTPModule,
		fx.Provide(newScheduler),
		fx.Invoke(RegisterServerHooks),
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging. The AtomicLevel lets config reloads change verbosity.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.New(logger.Config{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Development: cfg.App.Debug,
			File: logger.FileConfig{
				Path:       cfg.Log.File.Path,
				MaxSizeMB:  cfg.Log.File.MaxSizeMB,
				MaxBackups: cfg.Log.File.MaxBackups,
				MaxAgeDays: cfg.Log.File.MaxAgeDays,
				Compress:   cfg.Log.File.Compress,
			},
		})
	},
)

// TelemetryModule provides the metrics registry, collectors and tracing
var TelemetryModule = fx.Provide(
	func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	},
	func(lc fx.Lifecycle, cfg *config.Config, reg *prometheus.Registry, log *zap.Logger) (*monitoring.Telemetry, error) {
		tel, err := monitoring.NewTelemetry(context.Background(), cfg, reg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tel.Shutdown})
		return tel, nil
	},
	func(cfg *config.Config, reg *prometheus.Registry) outbound.PipelineMetrics {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewPipelineMetrics(reg)
	},
)

// DatabaseModule provides the database and the video repository
var DatabaseModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		db, err := gormRepo.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return gormRepo.Close(db) },
		})
		return db, nil
	},
	fx.Annotate(
		gormRepo.NewVideoRepository,
		fx.As(new(outbound.VideoRepository)),
	),
)

// CacheModule provides the analysis cache for the configured backend. The
// redis client is nil unless the redis backend is selected.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (redis.UniversalClient, error) {
		if cfg.Cache.Backend != "redis" {
			return nil, nil
		}
		client, err := redisRepo.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return client, nil
	},
	func(cfg *config.Config, db *gorm.DB, client redis.UniversalClient, log *zap.Logger) (outbound.AnalysisCache, error) {
		switch cfg.Cache.Backend {
		case "redis":
			return redisRepo.NewAnalysisCache(client, cfg.Cache.KeyPrefix, log), nil
		case "database", "":
			return gormRepo.NewAnalysisCache(db), nil
		case "memory":
			return memory.NewAnalysisCache(), nil
		default:
			return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
		}
	},
)

// StorageModule provides the blob store and the HTTP fetcher. The store is
// nil when no bucket is configured; videos must then carry public URLs.
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.BlobStore, error) {
		if cfg.Storage.Bucket == "" {
			log.Warn("No storage bucket configured, presigned URLs are disabled")
			return nil, nil
		}
		return storage.New(cfg.Storage, log)
	},
	func(cfg *config.Config, log *zap.Logger) outbound.VideoFetcher {
		return fetch.NewHTTPFetcher(cfg.Storage.FetchTimeout, log)
	},
)

// AIModule provides the generative model
var AIModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.GenerativeModel, error) {
		if cfg.AI.Provider != "gemini" {
			return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
		}
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:         cfg.AI.APIKey,
			Model:          cfg.AI.Model,
			Temperature:    cfg.AI.Temperature,
			MaxTokens:      cfg.AI.MaxTokens,
			RequestsPerMin: cfg.AI.RequestsPerMin,
			Timeout:        cfg.AI.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return client, nil
	},
)

// MessagingModule provides the NATS connection, or nil when NATS is disabled
var MessagingModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*natsmsg.Client, error) {
		if !cfg.NATS.Enabled {
			return nil, nil
		}
		client, err := natsmsg.Connect(context.Background(), cfg.NATS, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return client, nil
	},
)

// NotifyModule provides the websocket hub and the status fan-out
var NotifyModule = fx.Provide(
	ws.NewHub,
	func(cfg *config.Config, hub *ws.Hub, nc *natsmsg.Client, log *zap.Logger) outbound.StatusNotifier {
		notifiers := []outbound.StatusNotifier{hub}
		if nc != nil {
			notifiers = append(notifiers, natsmsg.NewStatusPublisher(nc.Conn(), cfg.NATS.StatusSubject, log))
		}
		return notify.NewFanout(notifiers...)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(model outbound.GenerativeModel, metrics outbound.PipelineMetrics, log *zap.Logger) *analysis.ChunkAnalyzer {
		return analysis.NewChunkAnalyzer(model, metrics, log)
	},
	func(cfg *config.Config, analyzer *analysis.ChunkAnalyzer, metrics outbound.PipelineMetrics, log *zap.Logger) (*analysis.RecipeExtractor, error) {
		return analysis.NewRecipeExtractor(
			analyzer,
			analysis.ChunkPolicy{
				MaxChunkSize: cfg.Analysis.MaxChunkSize,
				OverlapSize:  cfg.Analysis.OverlapSize,
			},
			retry.Policy{
				MaxRetries:   cfg.Analysis.MaxRetries,
				InitialDelay: cfg.Analysis.InitialRetryDelay,
			},
			metrics,
			log,
		)
	},
	func(cfg *config.Config, store outbound.BlobStore, fetcher outbound.VideoFetcher) *analysis.RemoteSource {
		return analysis.NewRemoteSource(store, fetcher, cfg.Storage.PresignExpiry)
	},
	func(
		videos outbound.VideoRepository,
		cache outbound.AnalysisCache,
		source *analysis.RemoteSource,
		extractor *analysis.RecipeExtractor,
		notifier outbound.StatusNotifier,
		metrics outbound.PipelineMetrics,
		log *zap.Logger,
	) *analysis.Pipeline {
		return analysis.NewPipeline(videos, cache, source, extractor, notifier, metrics, log)
	},
	func(p *analysis.Pipeline) inbound.VideoAnalysisService { return p },
	func(cfg *config.Config, analyzer *analysis.ChunkAnalyzer, extractor *analysis.RecipeExtractor, metrics outbound.PipelineMetrics, log *zap.Logger) *analysis.PreScreenGate {
		return analysis.NewPreScreenGate(analyzer, extractor, cfg.Analysis.PreScreenThreshold, metrics, log)
	},
	func(g *analysis.PreScreenGate) inbound.PreScreenService { return g },
	func(cfg *config.Config, videos outbound.VideoRepository, notifier outbound.StatusNotifier, log *zap.Logger) *analysis.StuckDetector {
		return analysis.NewStuckDetector(videos, notifier, cfg.Analysis.ProcessingTimeout, log)
	},
	func(
		cfg *config.Config,
		pipeline *analysis.Pipeline,
		videos outbound.VideoRepository,
		source *analysis.RemoteSource,
		fetcher outbound.VideoFetcher,
		gate *analysis.PreScreenGate,
		log *zap.Logger,
	) *analysis.BatchRunner {
		return analysis.NewBatchRunner(pipeline, videos, source, fetcher, gate, cfg.Analysis.ScratchDir, log)
	},
)

// CoreLifecycleModule installs telemetry and runs the websocket hub for the lifetime of the app
var CoreLifecycleModule = fx.Invoke(
	func(*monitoring.Telemetry) {},
	func(lc fx.Lifecycle, hub *ws.Hub) {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go hub.Run(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	},
)

// HTTPModule provides the API server and its handlers
var HTTPModule = fx.Provide(
	handlers.NewVideoHandlers,
	newHealthCheck,
	func(reg *prometheus.Registry) *monitoring.HTTPMetrics {
		return monitoring.NewHTTPMetrics(reg)
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		videos *handlers.VideoHandlers,
		health *healthcheck.HealthCheck,
		hub *ws.Hub,
		metrics *monitoring.HTTPMetrics,
		reg *prometheus.Registry,
	) *apiserver.Server {
		return apiserver.NewServer(cfg, log, videos, health, hub, metrics, reg)
	},
)

func newHealthCheck(
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	rdb redis.UniversalClient,
	nc *natsmsg.Client,
	store outbound.BlobStore,
) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)
	hc.Register("database", healthcheck.NewDatabaseChecker(db))
	if rdb != nil {
		hc.Register("redis", healthcheck.NewRedisChecker(rdb))
	}
	if nc != nil {
		hc.Register("nats", healthcheck.NewConnectionChecker(nc.Connected))
	}
	if store != nil {
		hc.Register("storage", healthcheck.NewPingChecker("storage", store.Ping))
	}
	return hc
}

func newScheduler(cfg *config.Config, detector *analysis.StuckDetector, log *zap.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(cfg.Scheduler.StuckCheckInterval, log)
	if !cfg.Scheduler.Enabled {
		return s, nil
	}
	if err := scheduler.ScheduleStuckSweep(s, detector, cfg.Scheduler.StuckCheckInterval); err != nil {
		return nil, err
	}
	return s, nil
}

// RegisterServerHooks starts and stops the API server, the event consumer and the scheduler
func RegisterServerHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
	sched *scheduler.Scheduler,
	nc *natsmsg.Client,
	service inbound.VideoAnalysisService,
) {
	var consumer *natsmsg.FinalizeConsumer
	if nc != nil {
		consumer = natsmsg.NewFinalizeConsumer(nc, service, cfg.Analysis.RunTimeout, log)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting ReelChef",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			if consumer != nil {
				if err := consumer.Start(ctx); err != nil {
					return fmt.Errorf("failed to start finalize consumer: %w", err)
				}
			}
			sched.Start()

			go func() {
				if err := server.Start(); err != nil {
					log.Error("API server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down ReelChef")

			var errs []error
			if err := server.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			sched.Stop()
			if consumer != nil {
				consumer.Stop()
			}

			_ = log.Sync()
			return errors.Join(errs...)
		},
	})
}
