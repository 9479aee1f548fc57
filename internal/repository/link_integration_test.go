//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"linkshelf/internal/database"
	"linkshelf/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPostgres(t *testing.T) (*gorm.DB, *pgxpool.Pool) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("linkshelf_test"),
		tcpostgres.WithUsername("linkshelf"),
		tcpostgres.WithPassword("linkshelf"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return db, pool
}

func TestLinkRepository_ConcurrentIngestNoDuplicates(t *testing.T) {
	db, pool := setupPostgres(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "racer@example.com")

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/video/%d", i)
	}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	totalInserted := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]*models.Link, 0, len(urls))
			for _, u2 := range urls {
				batch = append(batch, newLink(u.ID, u2))
			}
			inserted, _, err := repo.CreateBatch(ctx, batch)
			assert.NoError(t, err)
			mu.Lock()
			totalInserted += len(inserted)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(urls), totalInserted)

	var rows int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM links WHERE user_id = $1`, u.ID).Scan(&rows))
	assert.Equal(t, len(urls), rows)

	var dupes int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM (SELECT url FROM links GROUP BY user_id, url HAVING COUNT(*) > 1) d`).Scan(&dupes))
	assert.Zero(t, dupes)
}

func TestUserRepository_DuplicateEmailPostgres(t *testing.T) {
	db, _ := setupPostgres(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "dup@example.com", Password: "x"}))
	err := repo.Create(ctx, &models.User{Email: "dup@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
}
