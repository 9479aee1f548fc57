package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"linkshelf/internal/middleware"
	"linkshelf/internal/observability"

	"github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/client"
	"github.com/appwrite/sdk-for-go/file"
	"github.com/appwrite/sdk-for-go/id"
	"github.com/appwrite/sdk-for-go/permission"
	"github.com/appwrite/sdk-for-go/role"
	awstorage "github.com/appwrite/sdk-for-go/storage"
	"go.opentelemetry.io/otel/attribute"
)

// AppwriteConfig holds the bucket coordinates and server API key.
type AppwriteConfig struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	BucketID   string
	HTTPClient *http.Client
}

// AppwriteStore keeps blobs in an Appwrite Storage bucket.
type AppwriteStore struct {
	cfg     AppwriteConfig
	storage *awstorage.Storage
}

func NewAppwriteStore(cfg AppwriteConfig) *AppwriteStore {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	opts := []client.ClientOption{
		appwrite.WithEndpoint(cfg.Endpoint),
		appwrite.WithProject(cfg.ProjectID),
		appwrite.WithKey(cfg.APIKey),
		appwrite.WithTimeout(30 * time.Second),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, withHTTPClient(cfg.HTTPClient))
	}

	return &AppwriteStore{
		cfg:     cfg,
		storage: appwrite.NewStorage(appwrite.NewClient(opts...)),
	}
}

func withHTTPClient(hc *http.Client) client.ClientOption {
	return func(c *client.Client) error {
		c.Client = hc
		return nil
	}
}

// PreviewURL is the admin-mode view URL for fileID.
func (s *AppwriteStore) PreviewURL(bucketID, fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s&mode=admin",
		s.cfg.Endpoint, bucketID, fileID, url.QueryEscape(s.cfg.ProjectID))
}

// Upload creates the file readable by anyone and writable by its owner.
func (s *AppwriteStore) Upload(ctx context.Context, localPath string, ownerID uint) (stored *StoredFile, err error) {
	ctx, span := observability.StartClientSpan(ctx, "appwrite.files.create",
		attribute.String("appwrite.bucket", s.cfg.BucketID))
	defer func() { observability.EndSpan(span, err) }()

	// The SDK has no context support; honour cancellation before the call.
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	owner := strconv.FormatUint(uint64(ownerID), 10)
	created, err := s.storage.CreateFile(
		s.cfg.BucketID,
		id.Unique(),
		file.NewInputFile(localPath, filepath.Base(localPath)),
		s.storage.WithCreateFilePermissions([]string{
			permission.Read(role.Any()),
			permission.Write(role.User(owner, "")),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("appwrite upload: %w", describeAppwriteError(err))
	}
	if created.Id == "" {
		return nil, errors.New("appwrite response missing file id")
	}

	bucket := created.BucketId
	if bucket == "" {
		bucket = s.cfg.BucketID
	}
	return &StoredFile{FileID: created.Id, PreviewURL: s.PreviewURL(bucket, created.Id)}, nil
}

func (s *AppwriteStore) Delete(ctx context.Context, fileID string) bool {
	ctx, span := observability.StartClientSpan(ctx, "appwrite.files.delete",
		attribute.String("appwrite.file_id", fileID))

	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = ctx.Err(); err != nil {
		return false
	}

	if _, err = s.storage.DeleteFile(s.cfg.BucketID, fileID); err != nil {
		err = describeAppwriteError(err)
		middleware.Logger.WarnContext(ctx, "appwrite delete failed",
			slog.String("file_id", fileID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// describeAppwriteError folds the provider status into the error text.
func describeAppwriteError(err error) error {
	var awErr *client.AppwriteError
	if errors.As(err, &awErr) {
		return fmt.Errorf("status %d: %s", awErr.GetStatusCode(), awErr.GetMessage())
	}
	return err
}
