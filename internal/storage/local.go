package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"linkshelf/internal/middleware"

	"github.com/google/uuid"
)

// ErrInvalidFileID is returned by Path for IDs that could escape the storage directory.
var ErrInvalidFileID = errors.New("invalid file id")

var localIDPattern = regexp.MustCompile(`^[a-f0-9-]{36}(\.[a-z0-9]{1,5})?$`)

// LocalStore writes blobs under dir and serves them at
// {publicBaseURL}/storage/files/<id>/view.
type LocalStore struct {
	dir           string
	publicBaseURL string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, localPath string, ownerID uint) (*StoredFile, error) {
	src, err := os.Open(localPath) // #nosec G304 -- path is a temp file created by the caller
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	fileID := uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	dst, err := os.OpenFile(filepath.Join(s.dir, fileID), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close blob: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "stored file locally",
		slog.String("file_id", fileID), slog.Uint64("owner_id", uint64(ownerID)))

	return &StoredFile{
		FileID:     fileID,
		PreviewURL: fmt.Sprintf("%s/storage/files/%s/view", s.publicBaseURL, fileID),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, fileID string) bool {
	path, err := s.Path(fileID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "refusing to delete file", slog.String("file_id", fileID))
		return false
	}
	if err := os.Remove(path); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete stored file",
			slog.String("file_id", fileID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Path resolves fileID to its location on disk.
func (s *LocalStore) Path(fileID string) (string, error) {
	if !localIDPattern.MatchString(fileID) {
		return "", ErrInvalidFileID
	}
	return filepath.Join(s.dir, fileID), nil
}
