// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nutridash/dashboard/internal/application/assistant"
	"github.com/nutridash/dashboard/internal/application/feedback"
	"github.com/nutridash/dashboard/internal/application/planner"
	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/application/user"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/infrastructure/ai/breaker"
	"github.com/nutridash/dashboard/internal/infrastructure/ai/ollama"
	"github.com/nutridash/dashboard/internal/infrastructure/ai/openai"
	"github.com/nutridash/dashboard/internal/infrastructure/catalog"
	"github.com/nutridash/dashboard/internal/infrastructure/config"
	"github.com/nutridash/dashboard/internal/infrastructure/http/handlers"
	"github.com/nutridash/dashboard/internal/infrastructure/http/middleware"
	"github.com/nutridash/dashboard/internal/infrastructure/http/server"
	"github.com/nutridash/dashboard/internal/infrastructure/mcp"
	"github.com/nutridash/dashboard/internal/infrastructure/monitoring"
	gormRepo "github.com/nutridash/dashboard/internal/infrastructure/persistence/gorm"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/memory"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/nutridash/dashboard/internal/infrastructure/persistence/redis"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/sqlite"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"github.com/nutridash/dashboard/pkg/healthcheck"
	"github.com/nutridash/dashboard/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides everything except configuration; pair it with ConfigModule
var Module = fx.Options(
	// Infrastructure modules
	LoggerModule,
	DatabaseModule,
	CacheModule,
	CatalogModule,
	MonitoringModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	AIModule,
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule loads configuration from path, or from the default locations
// when path is empty
func ConfigModule(path string) fx.Option {
	return fx.Provide(func() (*config.Config, error) {
		return config.Load(path)
	})
}

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			Fields: map[string]string{
				"service": cfg.App.Name,
				"version": cfg.App.Version,
			},
		})
	},
)

// DatabaseModule provides the gorm connection for users and feedback
var DatabaseModule = fx.Provide(NewDatabase)

// NewDatabase opens the configured database and closes it on stop
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, closeDB, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return closeDB() }})
	return db, nil
}

// OpenDatabase opens SQLite or PostgreSQL depending on database.driver
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func() error, error) {
	if cfg.Database.Driver == "postgres" {
		cm, err := postgres.NewConnectionManager(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return cm.GetDB(), cm.Close, nil
	}

	db, err := sqlite.SetupDatabase(cfg.GetDSN(), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup SQLite database: %w", err)
	}
	log.Info("Connected to SQLite database", zap.String("path", cfg.GetDSN()))

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return db, sqlDB.Close, nil
}

// CacheBackend is the catalog byte cache. Redis is nil when the in-memory
// cache is used.
type CacheBackend struct {
	Cache outbound.CacheRepository
	Redis redis.UniversalClient
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	NewCacheBackend,
	func(b CacheBackend) outbound.CacheRepository { return b.Cache },
)

// NewCacheBackend connects to Redis when enabled and falls back to memory
func NewCacheBackend(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (CacheBackend, error) {
	if cfg.Redis.Enable {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := redisRepo.NewClient(ctx, cfg, log)
		if err != nil {
			return CacheBackend{}, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		return CacheBackend{
			Cache: redisRepo.NewCacheRepository(client, "nutridash:", log),
			Redis: client,
		}, nil
	}

	log.Info("Using in-memory cache")
	cache := memory.NewCacheRepository(time.Minute)
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		cache.Close()
		return nil
	}})
	return CacheBackend{Cache: cache}, nil
}

// CatalogModule provides the food catalog
var CatalogModule = fx.Provide(
	fx.Annotate(
		NewCatalogRepository,
		fx.As(new(outbound.CatalogRepository)),
	),
)

// NewCatalogRepository builds the source and schema from configuration
func NewCatalogRepository(cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) (*catalog.Repository, error) {
	source, err := catalog.NewSource(cfg.Catalog.Source, cfg.Catalog.Timeout, catalog.AWSOptions{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		Endpoint:        cfg.AWS.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog source: %w", err)
	}

	schema, err := catalog.LookupSchema(cfg.Catalog.SchemaVersion)
	if err != nil {
		return nil, err
	}

	return catalog.NewRepository(source, schema, cache, cfg.Catalog.CacheTTL, log), nil
}

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Options(fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder { return m },
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			JaegerEndpoint: cfg.Monitoring.JaegerEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
), fx.Invoke(RegisterDBStats))

// RegisterDBStats exports the gorm connection pool to Prometheus
func RegisterDBStats(metrics *monitoring.MetricsCollector, cfg *config.Config, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return metrics.RegisterDBStats(sqlDB, cfg.Database.Driver)
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewFeedbackRepository,
)

// AIModule provides the chat providers in fallback order
var AIModule = fx.Provide(NewChatProviders)

// NewChatProviders orders ai.provider first, then ai.fallback. OpenAI is
// skipped without an API key.
func NewChatProviders(cfg *config.Config, log *zap.Logger) []outbound.ChatProvider {
	order := append([]string{cfg.AI.Provider}, cfg.AI.Fallback...)
	seen := make(map[string]bool, len(order))

	var providers []outbound.ChatProvider
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch ai.ProviderType(name) {
		case ai.ProviderTypeOpenAI:
			if cfg.AI.OpenAIKey == "" {
				log.Warn("OpenAI API key not set, skipping provider")
				continue
			}
			providers = append(providers, openai.NewClient(openai.Config{
				APIKey:      cfg.AI.OpenAIKey,
				BaseURL:     cfg.AI.OpenAIBaseURL,
				Model:       cfg.AI.OpenAIModel,
				MaxTokens:   cfg.AI.MaxTokens,
				Temperature: cfg.AI.Temperature,
				Timeout:     cfg.AI.Timeout,
			}, log))
		case ai.ProviderTypeOllama:
			providers = append(providers, ollama.NewClient(ollama.Config{
				Host:        cfg.AI.OllamaHost,
				Model:       cfg.AI.OllamaModel,
				Temperature: cfg.AI.Temperature,
				MaxTokens:   cfg.AI.MaxTokens,
				Timeout:     cfg.AI.Timeout,
			}, log))
		default:
			log.Warn("Unknown chat provider", zap.String("provider", name))
		}
	}

	for i, p := range providers {
		providers[i] = breaker.Wrap(p, breaker.Config{
			FailureThreshold: cfg.AI.BreakerFailures,
			Cooldown:         cfg.AI.BreakerCooldown,
		}, log)
	}
	return providers
}

// ServiceModule provides the application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *session.Registry {
		return session.NewRegistry(cfg.Planner.SessionTTL, log)
	},
	NewPlannerService,
	func(s *planner.Service) inbound.PlannerService { return s },
	func(s *planner.Service) inbound.CatalogService { return s },
	fx.Annotate(
		func(repo outbound.UserRepository, metrics outbound.MetricsRecorder, cfg *config.Config, log *zap.Logger) *user.UserService {
			return user.NewUserService(repo, metrics, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiration, log)
		},
		fx.As(new(inbound.UserService)),
	),
	fx.Annotate(
		feedback.NewService,
		fx.As(new(inbound.FeedbackService)),
	),
	fx.Annotate(
		func(sessions *session.Registry, users outbound.UserRepository, metrics outbound.MetricsRecorder, log *zap.Logger, providers []outbound.ChatProvider) *assistant.Service {
			return assistant.NewService(sessions, users, metrics, log, providers...)
		},
		fx.As(new(inbound.AssistantService)),
	),
)

// NewPlannerService maps planner configuration onto the service
func NewPlannerService(
	cfg *config.Config,
	catalogRepo outbound.CatalogRepository,
	users outbound.UserRepository,
	sessions *session.Registry,
	metrics outbound.MetricsRecorder,
	log *zap.Logger,
) (*planner.Service, error) {
	diet, err := food.ParseDietType(cfg.Planner.DefaultDiet)
	if err != nil {
		return nil, fmt.Errorf("planner.default_diet: %w", err)
	}

	keywords := food.DefaultKeywords()
	if len(cfg.Catalog.MeatKeywords) > 0 {
		keywords.Meat = cfg.Catalog.MeatKeywords
	}
	if len(cfg.Catalog.AnimalKeywords) > 0 {
		keywords.AnimalProducts = cfg.Catalog.AnimalKeywords
	}

	return planner.NewService(catalogRepo, users, sessions, metrics, planner.Config{
		Bounds:          plan.Bounds{Min: cfg.Planner.MinGrams, Max: cfg.Planner.MaxGrams},
		DefaultBMR:      cfg.Planner.DefaultBMR,
		DefaultTDEE:     cfg.Planner.DefaultTDEE,
		DefaultDiet:     diet,
		DefaultPageSize: cfg.Planner.PageSize,
		MaxPageSize:     cfg.Planner.MaxPageSize,
		Keywords:        keywords,
	}, log), nil
}

// Limiters are the global and chat rate limiters; both nil when disabled
type Limiters struct {
	Global *middleware.RateLimiter
	Chat   *middleware.RateLimiter
}

// HTTPModule provides handlers and the server
var HTTPModule = fx.Provide(
	handlers.NewValidator,
	handlers.NewAuthAPIHandlers,
	handlers.NewCatalogAPIHandlers,
	handlers.NewPlannerAPIHandlers,
	handlers.NewChatAPIHandlers,
	handlers.NewFeedbackAPIHandlers,
	mcp.NewHandler,
	NewLimiters,
	NewHealthCheck,
	NewServer,
)

// NewLimiters builds the rate limiters from configuration
func NewLimiters(cfg *config.Config, log *zap.Logger) Limiters {
	if !cfg.RateLimit.Enable {
		return Limiters{}
	}
	l := Limiters{
		Global: middleware.NewRateLimiter("global", cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, 10*time.Minute, log),
	}
	if cfg.AI.ChatRatePerMin > 0 {
		burst := cfg.AI.ChatRatePerMin / 4
		if burst < 1 {
			burst = 1
		}
		l.Chat = middleware.NewRateLimiter("chat", cfg.AI.ChatRatePerMin, burst, 10*time.Minute, log)
	}
	return l
}

// NewHealthCheck registers the database, cache, catalog and chat provider checks
func NewHealthCheck(
	cfg *config.Config,
	db *gorm.DB,
	cache CacheBackend,
	catalogRepo outbound.CatalogRepository,
	providers []outbound.ChatProvider,
	log *zap.Logger,
) (*healthcheck.HealthCheck, error) {
	health := healthcheck.New(cfg.App.Version, log)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	if cache.Redis != nil {
		health.Register("redis", healthcheck.NewRedisChecker(cache.Redis))
	}

	health.Register("catalog", healthcheck.NewCustomChecker("catalog", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		c, err := catalogRepo.Load(ctx)
		if err != nil {
			return healthcheck.StatusUnhealthy, err.Error(), nil
		}
		return healthcheck.StatusHealthy, "Catalog loaded", map[string]int{"records": c.Len()}
	}))

	for _, p := range providers {
		health.Register("ai_"+string(p.Provider()), healthcheck.DegradeOnError("ai_"+string(p.Provider()), p.HealthCheck))
	}

	return health, nil
}

type serverParams struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Users    inbound.UserService
	Auth     *handlers.AuthAPIHandlers
	Catalog  *handlers.CatalogAPIHandlers
	Planner  *handlers.PlannerAPIHandlers
	Chat     *handlers.ChatAPIHandlers
	Feedback *handlers.FeedbackAPIHandlers
	MCP      *mcp.Handler
	Health   *healthcheck.HealthCheck
	Metrics  *monitoring.MetricsCollector
	Tracing  *monitoring.TracingProvider
	Limiters Limiters
}

// NewServer assembles the router
func NewServer(p serverParams) *server.Server {
	return server.NewServer(p.Config, server.Dependencies{
		Auth:        p.Auth,
		Catalog:     p.Catalog,
		Planner:     p.Planner,
		Chat:        p.Chat,
		Feedback:    p.Feedback,
		Tokens:      p.Users,
		Health:      p.Health,
		Metrics:     p.Metrics,
		Tracing:     p.Tracing,
		MCP:         p.MCP,
		Limiter:     p.Limiters.Global,
		ChatLimiter: p.Limiters.Chat,
	}, p.Logger)
}

// LifecycleModule registers lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks starts background loops and the HTTP server
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	srv *server.Server,
	sessions *session.Registry,
	limiters Limiters,
	catalogRepo outbound.CatalogRepository,
	log *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			sessions.StartCleanup(cfg.Planner.CleanupInterval)
			for _, l := range []*middleware.RateLimiter{limiters.Global, limiters.Chat} {
				if l != nil {
					l.StartCleanup(cfg.RateLimit.CleanupInterval)
				}
			}

			// Warm the catalog
			go func() {
				warmCtx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.Timeout+10*time.Second)
				defer cancel()
				if _, err := catalogRepo.Load(warmCtx); err != nil {
					log.Warn("Catalog warm-up failed", zap.Error(err))
				}
			}()

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping application")

			sessions.Stop()
			for _, l := range []*middleware.RateLimiter{limiters.Global, limiters.Chat} {
				if l != nil {
					l.Stop()
				}
			}

			return srv.Shutdown(ctx)
		},
	})
}
