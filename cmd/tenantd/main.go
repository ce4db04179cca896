// Command tenantd serves the goTenant HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/internal/config"
	"github.com/MrEthical07/goTenant/internal/httpapi"
	"github.com/MrEthical07/goTenant/internal/telemetry"
	otelexport "github.com/MrEthical07/goTenant/metrics/export/otel"
	"github.com/MrEthical07/goTenant/metrics/export/prometheus"
	"github.com/MrEthical07/goTenant/organization"
	mongostore "github.com/MrEthical07/goTenant/storage/mongo"
	sqlitestore "github.com/MrEthical07/goTenant/storage/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newRedisClient,
			newStores,
			newEngine,
			newOrganizationService,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(registerOtelMetrics, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), telemetry.Options{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		ServiceName: cfg.ServiceName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})
	return provider, nil
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

type stores struct {
	fx.Out

	Identities    goTenant.IdentityStore
	Organizations organization.Store
}

func newStores(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})

		logger.Info("document store ready", zap.String("driver", cfg.StoreDriver), zap.String("path", cfg.SQLitePath))
		return stores{
			Identities:    sqlitestore.NewIdentityStore(db),
			Organizations: sqlitestore.NewOrganizationStore(db),
		}, nil
	default:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return stores{}, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return client.Disconnect(ctx) }})

		logger.Info("document store ready", zap.String("driver", cfg.StoreDriver), zap.String("database", cfg.MongoDatabase))
		return stores{
			Identities:    mongostore.NewIdentityStore(db),
			Organizations: mongostore.NewOrganizationStore(db),
		}, nil
	}
}

func newEngine(lc fx.Lifecycle, cfg config.Config, rdb redis.UniversalClient, identities goTenant.IdentityStore, logger *zap.Logger) (*goTenant.Engine, error) {
	builder := goTenant.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithIdentityStore(identities).
		WithLogger(logger.Named("engine"))
	if cfg.AuditEnabled {
		builder = builder.WithAuditSink(goTenant.NewZapSink(logger.Named("audit")))
	}

	engine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
	return engine, nil
}

func newOrganizationService(store organization.Store, identities goTenant.IdentityStore, logger *zap.Logger) *organization.Service {
	return organization.NewService(store, identities, logger)
}

func newRouter(cfg config.Config, engine *goTenant.Engine, orgs *organization.Service, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := httpapi.Options{
		ServiceName:        cfg.ServiceName,
		GuardRefreshRoutes: cfg.GuardRefreshRoutes,
	}
	if cfg.MetricsEnabled {
		opts.Metrics = prometheus.NewExporter(engine).Handler()
	}
	return httpapi.NewRouter(opts, engine, orgs, logger)
}

func newHTTPServer(cfg config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// registerOtelMetrics publishes engine counters through the telemetry meter
// provider, which pushes them to the OTLP collector when one is configured.
func registerOtelMetrics(lc fx.Lifecycle, cfg config.Config, provider *telemetry.Provider, engine *goTenant.Engine) error {
	if !cfg.MetricsEnabled {
		return nil
	}

	exporter, err := otelexport.NewExporter(provider.Meter(), engine)
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return exporter.Close()
		},
	})
	return nil
}

func startHTTPServer(lc fx.Lifecycle, srv *http.Server, cfg config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}

			logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout.Duration())
			defer cancel()
			return srv.Shutdown(stopCtx)
		},
	})
}
