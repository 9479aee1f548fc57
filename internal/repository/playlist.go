package repository

import (
	"context"
	"errors"

	"linkshelf/internal/models"

	"gorm.io/gorm"
)

// PlaylistRepository defines persistence operations for playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Playlist, error)
	ListPublic(ctx context.Context) ([]models.Playlist, error)
	UpdateVisibility(ctx context.Context, id uint, visibility models.Visibility) error
	UpdateDetails(ctx context.Context, id uint, name string, description *string) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository returns a new PlaylistRepository implementation.
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func orderedLinks(db *gorm.DB) *gorm.DB {
	return db.Order("links.uploaded_at DESC, links.id DESC")
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if playlist.Visibility == "" {
		playlist.Visibility = models.VisibilityPrivate
	}
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Playlist", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &playlist, nil
}

func (r *playlistRepository) ListByUser(ctx context.Context, userID uint) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := readDB(r.db).WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&playlists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return playlists, nil
}

func (r *playlistRepository) ListPublic(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := readDB(r.db).WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("visibility = ?", models.VisibilityPublic).
		Order("updated_at DESC, id DESC").
		Find(&playlists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return playlists, nil
}

func (r *playlistRepository) UpdateVisibility(ctx context.Context, id uint, visibility models.Visibility) error {
	res := r.db.WithContext(ctx).Model(&models.Playlist{}).Where("id = ?", id).Update("visibility", visibility)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Playlist", id)
	}
	return nil
}

func (r *playlistRepository) UpdateDetails(ctx context.Context, id uint, name string, description *string) error {
	res := r.db.WithContext(ctx).Model(&models.Playlist{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Playlist", id)
	}
	return nil
}
