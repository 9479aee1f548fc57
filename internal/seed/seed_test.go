package seed

import (
	"context"
	"testing"

	"linkshelf/internal/database"
	"linkshelf/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestBuildLinks_Distinct(t *testing.T) {
	links := BuildLinks(1, 50)
	require.Len(t, links, 50)

	seen := map[string]bool{}
	for _, l := range links {
		assert.False(t, seen[l.URL], "duplicate %s", l.URL)
		seen[l.URL] = true
		assert.Equal(t, uint(1), l.UserID)
		if l.VideoID != nil {
			assert.Len(t, *l.VideoID, 11)
			assert.NotNil(t, l.Title)
		}
	}
}

func TestSeed(t *testing.T) {
	db := setupSQLite(t)

	summary, err := Seed(context.Background(), db, Options{
		NumUsers:         2,
		LinksPerUser:     6,
		PlaylistsPerUser: 2,
		Seed:             42,
	})
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 2, Links: 12, Playlists: 4}, summary)

	var assigned int64
	require.NoError(t, db.Model(&models.Link{}).Where("playlist_id IS NOT NULL").Count(&assigned).Error)
	assert.Equal(t, int64(12), assigned)

	summary, err = Seed(context.Background(), db, Options{NumUsers: 1, LinksPerUser: 1, ShouldClean: true, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
