// Package seed fills a database with demo users, links and playlists for
// development and manual testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"linkshelf/internal/models"
	"linkshelf/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is assigned to every seeded account unless Options overrides it.
const DefaultPassword = "Linkshelf-demo1"

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	LinksPerUser     int
	PlaylistsPerUser int
	Password         string
	ShouldClean      bool
	// Seed makes generated data reproducible when non-zero.
	Seed int64
}

// Summary counts what a Seed run created.
type Summary struct {
	Users     int
	Links     int
	Playlists int
}

// Seed creates demo data according to opts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 3
	}
	if opts.LinksPerUser < 0 {
		opts.LinksPerUser = 0
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.Seed != 0 {
		gofakeit.Seed(opts.Seed)
	} else {
		gofakeit.Seed(time.Now().UnixNano())
	}

	if opts.ShouldClean {
		log.Println("Cleaning existing data...")
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := repository.NewUserRepository(db)
	links := repository.NewLinkRepository(db)
	playlists := repository.NewPlaylistRepository(db)

	summary := &Summary{}
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Email:    strings.ToLower(fmt.Sprintf("%s.%d@%s", gofakeit.Username(), i, "linkshelf.local")),
			Password: string(hashed),
		}
		if err := users.Create(ctx, user); err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		summary.Users++

		inserted, _, err := links.CreateBatch(ctx, BuildLinks(user.ID, opts.LinksPerUser))
		if err != nil {
			return summary, fmt.Errorf("create links for %s: %w", user.Email, err)
		}
		summary.Links += len(inserted)

		for p := 0; p < opts.PlaylistsPerUser; p++ {
			playlist := BuildPlaylist(user.ID)
			if err := playlists.Create(ctx, playlist); err != nil {
				return summary, fmt.Errorf("create playlist: %w", err)
			}
			summary.Playlists++

			// Deal links round-robin across the user's playlists.
			for j := p; j < len(inserted); j += opts.PlaylistsPerUser {
				if _, err := links.AssignToPlaylist(ctx, user.ID, inserted[j].ID, playlist.ID); err != nil {
					return summary, fmt.Errorf("assign link: %w", err)
				}
			}
		}
	}

	log.Printf("Seeded %d users, %d links, %d playlists", summary.Users, summary.Links, summary.Playlists)
	return summary, nil
}

// BuildLinks returns n distinct unsaved links for userID. Most point at
// YouTube with plausible metadata; the rest are plain web pages.
func BuildLinks(userID uint, n int) []*models.Link {
	out := make([]*models.Link, 0, n)
	seen := make(map[string]struct{}, n)
	for len(out) < n {
		link := buildLink(userID)
		if _, dup := seen[link.URL]; dup {
			continue
		}
		seen[link.URL] = struct{}{}
		out = append(out, link)
	}
	return out
}

func buildLink(userID uint) *models.Link {
	now := time.Now().UTC()
	if gofakeit.Number(1, 5) == 1 {
		return &models.Link{
			UserID:     userID,
			URL:        fmt.Sprintf("https://%s/%s", gofakeit.DomainName(), gofakeit.UUID()),
			Source:     models.SourceManual,
			UploadedAt: now,
		}
	}

	videoID := gofakeit.Regex(`[A-Za-z0-9_-]{11}`)
	duration := gofakeit.Number(30, 3*3600)
	views := int64(gofakeit.Number(100, 5_000_000))
	published := gofakeit.DateRange(now.AddDate(-5, 0, 0), now)

	link := &models.Link{
		UserID:     userID,
		URL:        "https://www.youtube.com/watch?v=" + videoID,
		VideoID:    &videoID,
		Source:     models.SourceManual,
		UploadedAt: now,
	}
	link.ApplyMetadata(&models.VideoMetadata{
		Title:           strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 8)), "."),
		Description:     gofakeit.Paragraph(1, 2, 12, "\n"),
		ChannelTitle:    gofakeit.Company(),
		ThumbnailURL:    fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
		PublishedAt:     &published,
		DurationSeconds: &duration,
		ViewCount:       &views,
		Tags:            []string{gofakeit.HackerNoun(), gofakeit.BuzzWord()},
	})
	return link
}

// BuildPlaylist returns an unsaved playlist; roughly a third are public.
func BuildPlaylist(userID uint) *models.Playlist {
	visibility := models.VisibilityPrivate
	if gofakeit.Number(1, 3) == 1 {
		visibility = models.VisibilityPublic
	}
	description := gofakeit.Sentence(10)
	name := gofakeit.Adjective() + " " + gofakeit.Noun()
	return &models.Playlist{
		Name:        strings.ToUpper(name[:1]) + name[1:],
		Description: &description,
		UserID:      userID,
		Visibility:  visibility,
	}
}

func clearData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Link{}, &models.Playlist{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
