package database

import (
	"testing"
	"time"

	"linkshelf/internal/config"
	"linkshelf/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("db", "5432", "app", "secret", "linkshelf", "")
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=linkshelf sslmode=disable", dsn)

	dsn = buildDSN("db", "5432", "app", "secret", "linkshelf", "require")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestMigrate_CreatesTablesAndUniqueIndex(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: NewGormLogger(testLogger()).LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	m := db.Migrator()
	assert.True(t, m.HasTable(&models.User{}))
	assert.True(t, m.HasTable(&models.Link{}))
	assert.True(t, m.HasTable(&models.Playlist{}))
	assert.True(t, m.HasIndex(&models.Link{}, "idx_links_user_url"))
}

func TestGetReadDB_DefaultsNil(t *testing.T) {
	prev := ReadDB
	ReadDB = nil
	t.Cleanup(func() { ReadDB = prev })
	assert.Nil(t, GetReadDB())
}

func TestCustomGormLogger_LogModeCopies(t *testing.T) {
	l := NewGormLogger(testLogger())
	quiet := l.LogMode(logger.Silent)
	assert.NotSame(t, l, quiet)
	assert.Equal(t, 200*time.Millisecond, l.Config.SlowThreshold)
}
