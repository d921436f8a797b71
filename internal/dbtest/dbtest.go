// Package dbtest provides throwaway databases and fixtures for store tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"gosshub/internal/db"
	"gosshub/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database living in the test's temp dir.
// A single connection keeps transactions and plain reads strictly ordered.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "gosshub.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Options(logger.Discard))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, gdb *gorm.DB, username string, admin bool) *domain.User {
	t.Helper()

	u := &domain.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		IsAdmin:      admin,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}
