package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"linkshelf/internal/cache"
	"linkshelf/internal/config"
	"linkshelf/internal/imaging"
	"linkshelf/internal/middleware"
	"linkshelf/internal/models"
	"linkshelf/internal/notifications"
	"linkshelf/internal/repository"
	"linkshelf/internal/storage"
	"linkshelf/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultProfileImageMaxMB = 5
)

type UserService struct {
	userRepo      repository.UserRepository
	linkRepo      repository.LinkRepository
	store         storage.Store
	events        EventPublisher
	profileTTL    time.Duration
	maxImageBytes int64
	bcryptCost    int
}

type RegisterInput struct {
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, linkRepo repository.LinkRepository, store storage.Store, events EventPublisher, cfg *config.Config) *UserService {
	ttl := cache.ProfileTTL
	maxMB := DefaultProfileImageMaxMB
	if cfg != nil {
		if cfg.ProfileCacheTTLSeconds > 0 {
			ttl = time.Duration(cfg.ProfileCacheTTLSeconds) * time.Second
		}
		if cfg.UploadMaxFileSizeMB > 0 {
			maxMB = cfg.UploadMaxFileSizeMB
		}
	}

	return &UserService{
		userRepo:      userRepo,
		linkRepo:      linkRepo,
		store:         store,
		events:        events,
		profileTTL:    ttl,
		maxImageBytes: int64(maxMB) * 1024 * 1024,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

// Register creates an account. Duplicate emails are a conflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Email: email, Password: string(hashed)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, models.NewUnauthorizedError("Incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Incorrect email or password")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, s.profileTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		count, err := s.linkRepo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		profile = models.Profile{
			ID:            user.ID,
			Email:         user.Email,
			ProfileImage:  user.ProfileImage,
			IsOAuth:       user.IsOAuth,
			UploadedLinks: count,
			CreatedAt:     user.CreatedAt,
			UpdatedAt:     user.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadProfileImage normalizes content, stores it and replaces the user's
// previous image. The old blob is removed only after the new URL is saved.
func (s *UserService) UploadProfileImage(ctx context.Context, userID uint, content []byte) (*storage.StoredFile, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxImageBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxImageBytes/(1024*1024)))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	normalized, err := imaging.NormalizeProfileImage(content)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) || errors.Is(err, imaging.ErrInvalidImage) {
			return nil, models.NewValidationError(err.Error())
		}
		return nil, models.NewInternalError(err)
	}

	tmp, err := os.CreateTemp("", "profile-*"+imaging.ProfileFileExt)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(normalized); err != nil {
		_ = tmp.Close()
		return nil, models.NewInternalError(err)
	}
	if err := tmp.Close(); err != nil {
		return nil, models.NewInternalError(err)
	}

	stored, err := s.store.Upload(ctx, tmp.Name(), userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.userRepo.UpdateProfileImage(ctx, userID, stored.PreviewURL); err != nil {
		s.store.Delete(ctx, stored.FileID)
		return nil, err
	}

	if oldID, ok := storage.FileIDFromURL(user.ProfileImage); ok && oldID != stored.FileID {
		s.store.Delete(ctx, oldID)
	}
	cache.InvalidateProfile(ctx, userID)
	publishEvent(ctx, s.events, userID, notifications.EventProfileImageSaved, stored)

	return stored, nil
}

func (s *UserService) DeleteProfileImage(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProfileImage == "" {
		return &models.AppError{Code: models.CodeNotFound, Message: "No profile image set"}
	}

	if fileID, ok := storage.FileIDFromURL(user.ProfileImage); ok {
		if !s.store.Delete(ctx, fileID) {
			middleware.Logger.WarnContext(ctx, "profile image blob not removed", slog.String("file_id", fileID))
		}
	}
	if err := s.userRepo.UpdateProfileImage(ctx, userID, ""); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, userID)
	return nil
}
