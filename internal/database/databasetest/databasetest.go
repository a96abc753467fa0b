// Package databasetest поднимает SQLite в памяти для тестов.
package databasetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thereayou/mindsync/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t *testing.T) *database.Database {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// у каждого соединения своя база :memory:
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDatabase(gdb)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() { _ = db.Close() })

	return db
}
