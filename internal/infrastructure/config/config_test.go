package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(writeConfig(t, "app:\n  name: NutriDash\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "nutridash.db", cfg.GetDSN())

	assert.Equal(t, 10.0, cfg.Planner.MinGrams)
	assert.Equal(t, 1000.0, cfg.Planner.MaxGrams)
	assert.Equal(t, 1800.0, cfg.Planner.DefaultBMR)
	assert.Equal(t, 2200.0, cfg.Planner.DefaultTDEE)
	assert.Equal(t, 24*time.Hour, cfg.Planner.SessionTTL)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, []string{"ollama"}, cfg.AI.Fallback)
	assert.Equal(t, 3, cfg.AI.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.AI.BreakerCooldown)

	assert.Equal(t, "data/food_data.csv", cfg.Catalog.Source)
	assert.Equal(t, "v1", cfg.Catalog.SchemaVersion)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
catalog:
  source: s3://foods/catalog.csv
planner:
  max_grams: 500
`)
	t.Setenv("NUTRIDASH_PLANNER_DEFAULT_TDEE", "2500")
	t.Setenv("NUTRIDASH_AI_BREAKER_COOLDOWN", "5s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3://foods/catalog.csv", cfg.Catalog.Source)
	assert.Equal(t, 500.0, cfg.Planner.MaxGrams)
	assert.Equal(t, 2500.0, cfg.Planner.DefaultTDEE)
	assert.Equal(t, 5*time.Second, cfg.AI.BreakerCooldown)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  port: 0\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "NutriDash", Environment: "development"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", Database: "nutridash.db"},
			Catalog:  CatalogConfig{Source: "data/food_data.csv"},
			Planner:  PlannerConfig{MinGrams: 10, MaxGrams: 1000, DefaultBMR: 1800, DefaultTDEE: 2200},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"NoName", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"NoDatabase", func(c *Config) { c.Database.Database = "" }, "database.database"},
		{"BadDriver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"ProductionSecret", func(c *Config) { c.App.Environment = "production" }, "jwt_secret"},
		{"Port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"NoCatalog", func(c *Config) { c.Catalog.Source = "" }, "catalog.source"},
		{"GramBounds", func(c *Config) { c.Planner.MaxGrams = 5 }, "gram bounds"},
		{"ZeroMinGrams", func(c *Config) { c.Planner.MinGrams = 0 }, "gram bounds"},
		{"Targets", func(c *Config) { c.Planner.DefaultTDEE = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestGetDSNAndRedisAddrs(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver: "postgres", Host: "db", Port: 5432,
			Username: "nd", Password: "pw", Database: "nutridash", SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "cache", Port: 6379},
	}

	assert.Equal(t, "host=db port=5432 user=nd password=pw dbname=nutridash sslmode=disable", cfg.GetDSN())
	assert.Equal(t, []string{"cache:6379"}, cfg.GetRedisAddrs())

	cfg.Redis.EnableCluster = true
	cfg.Redis.ClusterNodes = []string{"a:1", "b:2"}
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.GetRedisAddrs())
}
