package database_test

import (
	"path/filepath"
	"testing"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/database/storetest"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteStore runs the real migrations against a throwaway SQLite file.
func newSQLiteStore(t *testing.T) database.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "tripguard.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return database.NewGormStore(db)
}

func TestGormStore(t *testing.T) {
	storetest.Run(t, newSQLiteStore)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tripguard.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.RunMigrations(db))
	require.True(t, db.Migrator().HasIndex("trips", "idx_trips_one_ongoing_per_user"))
}
