package main

import (
	"fmt"
	"strconv"

	"github.com/nutridash/dashboard/internal/infrastructure/config"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/migrations"
	"github.com/nutridash/dashboard/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

// withMigrator connects without auto-migrating and hands over a migrator
func withMigrator(run func(*migrations.Migrator) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations apply to postgres only; %s is migrated when opened", cfg.Database.Driver)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	cfg.Database.AutoMigrate = false
	cm, err := postgres.NewConnectionManager(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = cm.Close() }()

	sqlDB, err := cm.GetDB().DB()
	if err != nil {
		return err
	}
	m, err := migrations.New(sqlDB, cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return run(m)
}

func printVersion(cmd *cobra.Command, m *migrations.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			return printVersion(cmd, m)
		})
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Mark a version as applied after a failed migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Force(version); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
	rootCmd.AddCommand(migrateCmd)
}
