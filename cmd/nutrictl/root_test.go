package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupConfig writes a sample catalog and a SQLite config into a temp dir
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "foods.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testutils.SampleCSV()), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("database:\n  database: %s\n  log_level: silent\ncatalog:\n  source: %s\n",
		filepath.Join(dir, "nutridash.db"), csvPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCommands(t *testing.T) {
	cfg := setupConfig(t)

	out, err := run(t, "--config", cfg, "catalog", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Legumes")
	assert.Contains(t, out, "Seafood")

	out, err = run(t, "--config", cfg, "catalog", "top", "protein", "--count", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tChicken Breast\tMeat\t31.0 g")

	out, err = run(t, "--config", cfg, "catalog", "search", "bar", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "12\tMystery Bar\tSnacks\t-\t5\t-\t-")
	assert.Contains(t, out, "1 of 1 foods")

	_, err = run(t, "--config", cfg, "catalog", "top", "sodium")
	assert.Error(t, err)
}

func TestFeedbackAndUserCommands(t *testing.T) {
	cfg := setupConfig(t)

	out, err := run(t, "--config", cfg, "feedback", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No feedback yet")

	_, err = run(t, "--config", cfg, "user", "metrics", "nobody")
	assert.ErrorContains(t, err, `user "nobody"`)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, err := run(t, "--config", setupConfig(t), "migrate", "version")
	assert.ErrorContains(t, err, "postgres only")
}

func TestHealthCommand(t *testing.T) {
	status := "healthy"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":%q,"version":"1.0.0","total_duration_ms":3,"checks":[{"name":"database","status":%q,"duration_ms":1}]}`, status, status)
	}))
	defer srv.Close()

	out, err := run(t, "health", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: healthy (version 1.0.0")
	assert.Contains(t, out, "database")

	status = "unhealthy"
	_, err = run(t, "health", "--url", srv.URL)
	assert.ErrorContains(t, err, "unhealthy")
}

func TestFormatting(t *testing.T) {
	v := 12.0
	assert.Equal(t, "12", amount(&v))
	v = 2.46
	assert.Equal(t, "2.5", amount(&v))
	assert.Equal(t, "-", amount(nil))

	assert.Equal(t, "a b c", oneLine("a\n b\t c", 10))
	assert.Equal(t, "abc...", oneLine("abcdef", 3))
}
