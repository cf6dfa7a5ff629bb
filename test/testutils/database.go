// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"testing"

	"github.com/nutridash/dashboard/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDatabase opens a migrated in-memory SQLite database that is
// closed when the test ends
func SetupTestDatabase(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase(":memory:", "silent", 0, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CountRows returns the number of rows in table
func CountRows(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
