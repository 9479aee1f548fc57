package repository

import (
	"context"
	"errors"

	"linkshelf/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// existingURLChunk keeps IN lists well under the Postgres bind-parameter limit.
const existingURLChunk = 1000

// LinkRepository defines persistence operations for links.
type LinkRepository interface {
	ExistingURLs(ctx context.Context, userID uint, urls []string) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, links []*models.Link) (inserted []*models.Link, skipped []string, err error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Link, error)
	GetByID(ctx context.Context, id uint) (*models.Link, error)
	Delete(ctx context.Context, userID, id uint) error
	UpdateProgress(ctx context.Context, userID, id uint, progress ProgressUpdate) (*models.Link, error)
	AssignToPlaylist(ctx context.Context, userID, linkID, playlistID uint) (bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// ProgressUpdate carries the optional watch-progress fields of a PATCH.
type ProgressUpdate struct {
	LastWatchedSeconds *int
	Completed          *bool
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a new LinkRepository implementation.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

// ExistingURLs returns the subset of urls the user has already stored.
func (r *linkRepository) ExistingURLs(ctx context.Context, userID uint, urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(urls) == 0 {
		return existing, nil
	}

	// Read from the primary: a lagging replica would let duplicates through to CreateBatch.
	for start := 0; start < len(urls); start += existingURLChunk {
		end := min(start+existingURLChunk, len(urls))

		var found []string
		if err := r.db.WithContext(ctx).Model(&models.Link{}).
			Where("user_id = ? AND url IN ?", userID, urls[start:end]).
			Pluck("url", &found).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, u := range found {
			existing[u] = struct{}{}
		}
	}
	return existing, nil
}

// CreateBatch inserts links in one transaction. Rows that collide with
// (user_id, url) are skipped rather than failing the batch; any other error
// rolls everything back.
func (r *linkRepository) CreateBatch(ctx context.Context, links []*models.Link) ([]*models.Link, []string, error) {
	if len(links) == 0 {
		return nil, nil, nil
	}

	var inserted []*models.Link
	var skipped []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, link := range links {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "url"}},
				DoNothing: true,
			}).Create(link)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				skipped = append(skipped, link.URL)
				continue
			}
			inserted = append(inserted, link)
		}
		return nil
	})
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return inserted, skipped, nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Link, error) {
	var links []models.Link
	q := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&links).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return links, nil
}

func (r *linkRepository) GetByID(ctx context.Context, id uint) (*models.Link, error) {
	var link models.Link
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Link", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &link, nil
}

func (r *linkRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Link{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Link", id)
	}
	return nil
}

func (r *linkRepository) UpdateProgress(ctx context.Context, userID, id uint, progress ProgressUpdate) (*models.Link, error) {
	updates := map[string]any{}
	if progress.LastWatchedSeconds != nil {
		updates["last_watched_seconds"] = *progress.LastWatchedSeconds
	}
	if progress.Completed != nil {
		updates["completed"] = *progress.Completed
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Link{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("Link", id)
		}
	}

	link, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.UserID != userID {
		return nil, models.NewNotFoundError("Link", id)
	}
	return link, nil
}

// AssignToPlaylist moves the link into playlistID. It reports false when the
// link is already there (or is not the user's).
func (r *linkRepository) AssignToPlaylist(ctx context.Context, userID, linkID, playlistID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("id = ? AND user_id = ? AND (playlist_id IS NULL OR playlist_id <> ?)", linkID, userID, playlistID).
		Update("playlist_id", playlistID)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *linkRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Link{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
