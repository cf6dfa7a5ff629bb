package main

import (
	"fmt"
	"os"

	"github.com/nutridash/dashboard/internal/application/feedback"
	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/application/user"
	"github.com/nutridash/dashboard/internal/infrastructure/config"
	"github.com/nutridash/dashboard/internal/infrastructure/container"
	gormRepo "github.com/nutridash/dashboard/internal/infrastructure/persistence/gorm"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/memory"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"github.com/nutridash/dashboard/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "nutrictl",
	Short:         "nutrictl inspects the NutriDash catalog, users and feedback",
	Long:          "nutrictl runs the NutriDash services locally against the configured catalog and database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stdout")
}

// services are the application services the commands drive
type services struct {
	cfg      *config.Config
	users    outbound.UserRepository
	catalog  inbound.CatalogService
	account  inbound.UserService
	feedback inbound.FeedbackService
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if !verbose {
		return logger.NewNop(), nil
	}
	return logger.New(logger.Config{Level: cfg.App.LogLevel, Format: "console", Development: true})
}

// withServices loads configuration, opens the database and hands the
// services to run. The database is closed afterwards.
func withServices(run func(*services) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, closeDB, err := container.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeDB() }()

	cache := memory.NewCacheRepository(0)
	defer cache.Close()

	catalogRepo, err := container.NewCatalogRepository(cfg, cache, log)
	if err != nil {
		return err
	}

	users := gormRepo.NewUserRepository(db)
	sessions := session.NewRegistry(cfg.Planner.SessionTTL, log)
	plannerSvc, err := container.NewPlannerService(cfg, catalogRepo, users, sessions, outbound.NopMetrics{}, log)
	if err != nil {
		return err
	}

	return run(&services{
		cfg:      cfg,
		users:    users,
		catalog:  plannerSvc,
		account:  user.NewUserService(users, nil, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiration, log),
		feedback: feedback.NewService(gormRepo.NewFeedbackRepository(db), nil, log),
	})
}
