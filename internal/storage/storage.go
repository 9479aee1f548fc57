// Package storage keeps uploaded blobs (profile images) in a local directory
// or an Appwrite bucket.
package storage

import (
	"context"
	"fmt"
	"regexp"

	"linkshelf/internal/config"
)

// StoredFile identifies an uploaded blob and where it can be viewed.
type StoredFile struct {
	FileID     string `json:"file_id"`
	PreviewURL string `json:"preview_url"`
}

// Store uploads and deletes blobs. Delete reports success and logs failures
// instead of returning them.
type Store interface {
	Upload(ctx context.Context, localPath string, ownerID uint) (*StoredFile, error)
	Delete(ctx context.Context, fileID string) bool
}

var fileIDPattern = regexp.MustCompile(`/files/([^/]+)/view`)

// FileIDFromURL extracts <id> from a preview URL of the form .../files/<id>/view.
func FileIDFromURL(url string) (string, bool) {
	m := fileIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// New builds the Store selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicBaseURL)
	case "appwrite":
		return NewAppwriteStore(AppwriteConfig{
			Endpoint:  cfg.AppwriteURL,
			ProjectID: cfg.AppwriteProjectID,
			APIKey:    cfg.AppwriteAPIKey,
			BucketID:  cfg.AppwriteBucketID,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
