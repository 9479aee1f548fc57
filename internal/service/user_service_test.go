package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"linkshelf/internal/cache"
	"linkshelf/internal/config"
	"linkshelf/internal/models"
	"linkshelf/internal/notifications"
	"linkshelf/internal/storage"
	"linkshelf/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Sup3r-secret"

func newUserService(repo *userRepoStub, links *memLinkRepo, store storage.Store, events EventPublisher) *UserService {
	svc := NewUserService(repo, links, store, events, &config.Config{UploadMaxFileSizeMB: 1, ProfileCacheTTLSeconds: 60})
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("hashes password and normalizes email", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		var saved *models.User
		repo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 9
			saved = u
			return nil
		}
		svc := newUserService(repo, newMemLinkRepo(), nil, nil)

		user, err := svc.Register(context.Background(), RegisterInput{Email: "  Ana@Example.COM ", Password: goodPassword})
		require.NoError(t, err)
		assert.Equal(t, uint(9), user.ID)
		require.NotNil(t, saved)
		assert.Equal(t, "ana@example.com", saved.Email)
		assert.NotEqual(t, goodPassword, saved.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte(goodPassword)))
	})

	t.Run("existing email conflicts", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email}, nil
		}
		svc := newUserService(repo, newMemLinkRepo(), nil, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: goodPassword})
		assertAppErrorCode(t, err, models.CodeConflict)
		assert.Equal(t, "User already exists", err.Error())
	})

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), newMemLinkRepo(), nil, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "short"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("bad email", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), newMemLinkRepo(), nil, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: goodPassword})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := models.NewInternalError(errors.New("db down"))
		repo := noopUserRepo()
		repo.getByEmailFn = func(context.Context, string) (*models.User, error) { return nil, repoErr }
		svc := newUserService(repo, newMemLinkRepo(), nil, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: goodPassword})
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte(goodPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == "ana@example.com" {
			return &models.User{ID: 3, Email: email, Password: string(hash)}, nil
		}
		return nil, nil
	}
	svc := newUserService(repo, newMemLinkRepo(), nil, nil)

	user, err := svc.Authenticate(context.Background(), "ANA@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.ID)

	_, err = svc.Authenticate(context.Background(), "ana@example.com", "wrong")
	assertAppErrorCode(t, err, models.CodeUnauthorized)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", goodPassword)
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

// GetProfile touches the package-level cache client, so it does not run in parallel.
func TestGetProfile_CachesAndCountsLinks(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	calls := 0
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		calls++
		return &models.User{ID: id, Email: "ana@example.com"}, nil
	}
	links := newMemLinkRepo()
	links.seed(5, rickURL, plainURL)
	svc := newUserService(repo, links, nil, nil)

	profile, err := svc.GetProfile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.UploadedLinks)
	assert.Equal(t, "ana@example.com", profile.Email)

	_, err = svc.GetProfile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read served from cache")
	assert.True(t, mr.Exists(cache.ProfileKey(5)))
	assert.Equal(t, 60*time.Second, mr.TTL(cache.ProfileKey(5)))

	cache.InvalidateProfile(context.Background(), 5)
	_, err = svc.GetProfile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	svc := newUserService(repo, newMemLinkRepo(), nil, nil)
	_, err := svc.GetProfile(context.Background(), 77)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestUploadProfileImage(t *testing.T) {
	t.Parallel()

	t.Run("stores normalized image and replaces the old one", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		events := &testutil.RecordingPublisher{}
		old, err := store.Upload(context.Background(), writeTemp(t, []byte("old")), 1)
		require.NoError(t, err)

		var savedURL string
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, ProfileImage: old.PreviewURL}, nil
		}
		repo.updateProfileImageFn = func(_ context.Context, _ uint, url string) error {
			savedURL = url
			return nil
		}
		svc := newUserService(repo, newMemLinkRepo(), store, events)

		stored, err := svc.UploadProfileImage(context.Background(), 1, testutil.TinyPNG(t, 40, 20))
		require.NoError(t, err)
		assert.Equal(t, stored.PreviewURL, savedURL)
		assert.Equal(t, 1, store.Len(), "old image removed")
		_, ok := store.Get(stored.FileID)
		assert.True(t, ok)

		got := events.Events()
		require.Len(t, got, 1)
		assert.Equal(t, notifications.EventProfileImageSaved, got[0].Type)
	})

	t.Run("rejects non-images", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		svc := newUserService(noopUserRepo(), newMemLinkRepo(), store, nil)
		_, err := svc.UploadProfileImage(context.Background(), 1, []byte("plain text, not an image"))
		assertAppErrorCode(t, err, models.CodeValidation)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("rejects empty and oversized", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), newMemLinkRepo(), testutil.NewMemoryStore(), nil)
		_, err := svc.UploadProfileImage(context.Background(), 1, nil)
		assertAppErrorCode(t, err, models.CodeValidation)
		_, err = svc.UploadProfileImage(context.Background(), 1, make([]byte, 1024*1024+1))
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		store.UploadErr = errors.New("bucket unavailable")
		svc := newUserService(noopUserRepo(), newMemLinkRepo(), store, nil)
		_, err := svc.UploadProfileImage(context.Background(), 1, testutil.TinyPNG(t, 8, 8))
		assertAppErrorCode(t, err, models.CodeInternal)
	})

	t.Run("failed save removes the new blob", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStore()
		repo := noopUserRepo()
		repo.updateProfileImageFn = func(context.Context, uint, string) error {
			return models.NewInternalError(errors.New("db down"))
		}
		svc := newUserService(repo, newMemLinkRepo(), store, nil)
		_, err := svc.UploadProfileImage(context.Background(), 1, testutil.TinyPNG(t, 8, 8))
		assertAppErrorCode(t, err, models.CodeInternal)
		assert.Equal(t, 0, store.Len())
	})
}

func TestDeleteProfileImage(t *testing.T) {
	t.Parallel()
	store := testutil.NewMemoryStore()
	stored, err := store.Upload(context.Background(), writeTemp(t, []byte("img")), 1)
	require.NoError(t, err)

	current := stored.PreviewURL
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, ProfileImage: current}, nil
	}
	repo.updateProfileImageFn = func(_ context.Context, _ uint, url string) error {
		current = url
		return nil
	}
	svc := newUserService(repo, newMemLinkRepo(), store, nil)

	require.NoError(t, svc.DeleteProfileImage(context.Background(), 1))
	assert.Equal(t, "", current)
	assert.Equal(t, 0, store.Len())

	err = svc.DeleteProfileImage(context.Background(), 1)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := t.TempDir() + "/blob.bin"
	require.NoError(t, writeFile(path, data))
	return path
}
