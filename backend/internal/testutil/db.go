// Package testutil provides testing utilities.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"taskify/backend/internal/database"
	"taskify/backend/internal/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens a private in-memory sqlite database with the schema applied.
// The database is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:       database.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := repositories.AutoMigrate(pool.DB); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return pool.DB
}
