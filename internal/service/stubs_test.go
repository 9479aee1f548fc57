package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"linkshelf/internal/models"
	"linkshelf/internal/repository"

	"github.com/stretchr/testify/require"
)

// memLinkRepo is an in-memory LinkRepository enforcing (user_id, url)
// uniqueness. Hooks override individual methods.
type memLinkRepo struct {
	mu     sync.Mutex
	rows   []*models.Link
	nextID uint

	existingCalls int
	batchCalls    int

	createBatchFn func(context.Context, []*models.Link) ([]*models.Link, []string, error)
	existingFn    func(context.Context, uint, []string) (map[string]struct{}, error)
}

func newMemLinkRepo() *memLinkRepo { return &memLinkRepo{nextID: 1} }

func (r *memLinkRepo) seed(userID uint, urls ...string) {
	for _, u := range urls {
		r.rows = append(r.rows, &models.Link{ID: r.nextID, UserID: userID, URL: u})
		r.nextID++
	}
}

func (r *memLinkRepo) has(userID uint, url string) bool {
	for _, l := range r.rows {
		if l.UserID == userID && l.URL == url {
			return true
		}
	}
	return false
}

func (r *memLinkRepo) ExistingURLs(ctx context.Context, userID uint, urls []string) (map[string]struct{}, error) {
	r.mu.Lock()
	r.existingCalls++
	r.mu.Unlock()
	if r.existingFn != nil {
		return r.existingFn(ctx, userID, urls)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{})
	for _, u := range urls {
		if r.has(userID, u) {
			out[u] = struct{}{}
		}
	}
	return out, nil
}

func (r *memLinkRepo) CreateBatch(ctx context.Context, links []*models.Link) ([]*models.Link, []string, error) {
	r.mu.Lock()
	r.batchCalls++
	r.mu.Unlock()
	if r.createBatchFn != nil {
		return r.createBatchFn(ctx, links)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var inserted []*models.Link
	var skipped []string
	for _, l := range links {
		if r.has(l.UserID, l.URL) {
			skipped = append(skipped, l.URL)
			continue
		}
		l.ID = r.nextID
		r.nextID++
		r.rows = append(r.rows, l)
		inserted = append(inserted, l)
	}
	return inserted, skipped, nil
}

func (r *memLinkRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Link
	for _, l := range r.rows {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	if offset >= len(out) {
		return []models.Link{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLinkRepo) GetByID(_ context.Context, id uint) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Link", id)
}

func (r *memLinkRepo) Delete(_ context.Context, userID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.rows {
		if l.ID == id && l.UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Link", id)
}

func (r *memLinkRepo) UpdateProgress(_ context.Context, userID, id uint, p repository.ProgressUpdate) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.ID == id && l.UserID == userID {
			if p.LastWatchedSeconds != nil {
				v := *p.LastWatchedSeconds
				l.LastWatchedSeconds = &v
			}
			if p.Completed != nil {
				l.Completed = *p.Completed
			}
			cp := *l
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Link", id)
}

func (r *memLinkRepo) AssignToPlaylist(_ context.Context, userID, linkID, playlistID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.ID == linkID && l.UserID == userID {
			if l.PlaylistID != nil && *l.PlaylistID == playlistID {
				return false, nil
			}
			pid := playlistID
			l.PlaylistID = &pid
			return true, nil
		}
	}
	return false, nil
}

func (r *memLinkRepo) CountByUser(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.rows {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memLinkRepo) urlsFor(userID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.rows {
		if l.UserID == userID {
			out = append(out, l.URL)
		}
	}
	return out
}

type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateProfileImageFn func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}

func (s *userRepoStub) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	return s.updateProfileImageFn(ctx, id, url)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:         func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:             func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		updateProfileImageFn: func(context.Context, uint, string) error { return nil },
	}
}

type playlistRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.Playlist, error)
	createFn           func(context.Context, *models.Playlist) error
	listByUserFn       func(context.Context, uint) ([]models.Playlist, error)
	listPublicFn       func(context.Context) ([]models.Playlist, error)
	updateVisibilityFn func(context.Context, uint, models.Visibility) error
	updateDetailsFn    func(context.Context, uint, string, *string) error
}

func (s *playlistRepoStub) Create(ctx context.Context, p *models.Playlist) error {
	return s.createFn(ctx, p)
}

func (s *playlistRepoStub) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	return s.getByIDFn(ctx, id)
}

func (s *playlistRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Playlist, error) {
	return s.listByUserFn(ctx, userID)
}

func (s *playlistRepoStub) ListPublic(ctx context.Context) ([]models.Playlist, error) {
	return s.listPublicFn(ctx)
}

func (s *playlistRepoStub) UpdateVisibility(ctx context.Context, id uint, v models.Visibility) error {
	return s.updateVisibilityFn(ctx, id, v)
}

func (s *playlistRepoStub) UpdateDetails(ctx context.Context, id uint, name string, desc *string) error {
	return s.updateDetailsFn(ctx, id, name, desc)
}

func noopPlaylistRepo() *playlistRepoStub {
	return &playlistRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Playlist, error) {
			return nil, models.NewNotFoundError("Playlist", id)
		},
		createFn:           func(_ context.Context, p *models.Playlist) error { p.ID = 1; return nil },
		listByUserFn:       func(context.Context, uint) ([]models.Playlist, error) { return nil, nil },
		listPublicFn:       func(context.Context) ([]models.Playlist, error) { return nil, nil },
		updateVisibilityFn: func(context.Context, uint, models.Visibility) error { return nil },
		updateDetailsFn:    func(context.Context, uint, string, *string) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}
