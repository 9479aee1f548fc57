package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"linkshelf/internal/cache"
	"linkshelf/internal/config"
	"linkshelf/internal/extract"
	"linkshelf/internal/featureflags"
	"linkshelf/internal/middleware"
	"linkshelf/internal/models"
	"linkshelf/internal/notifications"
	"linkshelf/internal/observability"
	"linkshelf/internal/repository"
	"linkshelf/internal/youtube"
)

const (
	DefaultUploadMaxFileSizeMB = 5
	DefaultLinkPageSize        = 100
	MaxLinkPageSize            = 500
)

type LinkService struct {
	links        repository.LinkRepository
	fetcher      MetadataFetcher
	flags        *featureflags.Manager
	events       EventPublisher
	maxFileBytes int64
	now          func() time.Time
}

// IngestInput is one batch of submitted URLs.
type IngestInput struct {
	UserID uint
	URLs   []string
	Source models.LinkSource
}

// IngestResult reports what a batch stored. NothingNew is set when every
// submitted URL was already on file; Skipped lists those URLs.
type IngestResult struct {
	Links      []*models.Link
	Skipped    []string
	NothingNew bool
}

// UploadedFile is one file from a multipart upload.
type UploadedFile struct {
	Filename string
	Content  []byte
}

func NewLinkService(links repository.LinkRepository, fetcher MetadataFetcher, flags *featureflags.Manager, events EventPublisher, cfg *config.Config) *LinkService {
	maxMB := DefaultUploadMaxFileSizeMB
	if cfg != nil && cfg.UploadMaxFileSizeMB > 0 {
		maxMB = cfg.UploadMaxFileSizeMB
	}
	return &LinkService{
		links:        links,
		fetcher:      fetcher,
		flags:        flags,
		events:       events,
		maxFileBytes: int64(maxMB) * 1024 * 1024,
		now:          time.Now,
	}
}

// Ingest stores the URLs of in that the user does not already have,
// enriching recognized videos with metadata.
func (s *LinkService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if in.Source == "" {
		in.Source = models.SourceManual
	}

	ctx, span := observability.StartSpan(ctx, "service.LinkService.Ingest")
	var spanErr error
	defer func() { observability.EndSpan(span, spanErr) }()

	urls := uniqueURLs(in.URLs)
	if len(urls) == 0 {
		return nil, models.NewValidationError("No links provided")
	}

	existing, err := s.links.ExistingURLs(ctx, in.UserID, urls)
	if err != nil {
		spanErr = err
		return nil, err
	}

	fresh := make([]string, 0, len(urls))
	var skipped []string
	for _, u := range urls {
		if _, ok := existing[u]; ok {
			skipped = append(skipped, u)
			continue
		}
		fresh = append(fresh, u)
	}

	source := string(in.Source)
	if len(fresh) == 0 {
		observability.LinksSkipped.WithLabelValues(source).Add(float64(len(skipped)))
		return &IngestResult{Skipped: skipped, NothingNew: true}, nil
	}

	enrich := s.fetcher != nil && s.flags.Enabled(featureflags.MetadataEnrichment, in.UserID)
	uploadedAt := s.now().UTC()

	rows := make([]*models.Link, 0, len(fresh))
	for _, u := range fresh {
		link := &models.Link{
			UserID:     in.UserID,
			URL:        u,
			Source:     in.Source,
			UploadedAt: uploadedAt,
		}
		if videoID, ok := youtube.ExtractVideoID(u); ok {
			link.VideoID = &videoID
			if enrich {
				if res := s.fetcher.Fetch(ctx, videoID); res.Outcome == youtube.OutcomeHit {
					link.ApplyMetadata(res.Metadata)
				} else {
					middleware.Logger.DebugContext(ctx, "storing link without metadata",
						slog.String("video_id", videoID), slog.String("outcome", string(res.Outcome)))
				}
			}
		}
		rows = append(rows, link)
	}

	inserted, raced, err := s.links.CreateBatch(ctx, rows)
	if err != nil {
		spanErr = err
		return nil, err
	}
	skipped = append(skipped, raced...)

	observability.LinksIngested.WithLabelValues(source).Add(float64(len(inserted)))
	observability.LinksSkipped.WithLabelValues(source).Add(float64(len(skipped)))

	if len(inserted) == 0 {
		return &IngestResult{Skipped: skipped, NothingNew: true}, nil
	}

	cache.InvalidateProfile(ctx, in.UserID)
	if s.flags.Enabled(featureflags.RealtimeNotifications, in.UserID) {
		publishEvent(ctx, s.events, in.UserID, notifications.EventLinksIngested, map[string]any{
			"count":   len(inserted),
			"source":  source,
			"skipped": len(skipped),
		})
	}

	middleware.Logger.InfoContext(ctx, "links ingested",
		slog.Uint64("user_id", uint64(in.UserID)),
		slog.String("source", source),
		slog.Int("stored", len(inserted)),
		slog.Int("skipped", len(skipped)))

	return &IngestResult{Links: inserted, Skipped: skipped}, nil
}

// IngestFiles validates every file, extracts their URLs and ingests them
// as one batch. Any invalid file rejects the whole upload.
func (s *LinkService) IngestFiles(ctx context.Context, userID uint, files []UploadedFile) (*IngestResult, error) {
	if len(files) == 0 {
		return nil, models.NewValidationError("No files uploaded")
	}

	for _, f := range files {
		if int64(len(f.Content)) > s.maxFileBytes {
			observability.FilesRejected.WithLabelValues("too_large").Inc()
			return nil, models.NewValidationError(fmt.Sprintf("File %s exceeds the %dMB limit", f.Filename, s.maxFileBytes/(1024*1024)))
		}
		if extract.DetectFormat(f.Filename) == extract.FormatUnsupported {
			observability.FilesRejected.WithLabelValues("unsupported").Inc()
			return nil, models.NewValidationError(extract.ErrUnsupportedFormat.Error())
		}
	}

	var urls []string
	for _, f := range files {
		found, err := extract.ExtractLinks(f.Content, f.Filename)
		if err != nil {
			observability.FilesRejected.WithLabelValues("unreadable").Inc()
			if errors.Is(err, extract.ErrUnsupportedFormat) {
				return nil, models.NewValidationError(err.Error())
			}
			middleware.Logger.WarnContext(ctx, "file extraction failed",
				slog.String("filename", f.Filename), slog.String("error", err.Error()))
			return nil, models.NewValidationError(fmt.Sprintf("Could not read links from %s", f.Filename))
		}
		urls = append(urls, found...)
	}

	if len(uniqueURLs(urls)) == 0 {
		return nil, models.NewValidationError("No links found in uploaded files")
	}

	return s.Ingest(ctx, IngestInput{UserID: userID, URLs: urls, Source: models.SourceFile})
}

func (s *LinkService) ListLinks(ctx context.Context, userID uint, limit, offset int) ([]models.Link, error) {
	if limit <= 0 {
		limit = DefaultLinkPageSize
	}
	if limit > MaxLinkPageSize {
		limit = MaxLinkPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.links.ListByUser(ctx, userID, limit, offset)
}

// DeleteLink removes one of the user's links. A link filed in a playlist may
// be listed in the public playlists cache, so that entry is dropped too.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID uint) error {
	filed := false
	if link, err := s.links.GetByID(ctx, linkID); err == nil && link.UserID == userID {
		filed = link.PlaylistID != nil
	}

	if err := s.links.Delete(ctx, userID, linkID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, userID)
	if filed {
		cache.InvalidatePublicPlaylists(ctx)
	}
	return nil
}

func (s *LinkService) UpdateProgress(ctx context.Context, userID, linkID uint, progress repository.ProgressUpdate) (*models.Link, error) {
	if progress.LastWatchedSeconds == nil && progress.Completed == nil {
		return nil, models.NewValidationError("Nothing to update")
	}
	if progress.LastWatchedSeconds != nil && *progress.LastWatchedSeconds < 0 {
		return nil, models.NewValidationError("last_watched_seconds must not be negative")
	}
	return s.links.UpdateProgress(ctx, userID, linkID, progress)
}

// uniqueURLs drops blank entries and collapses exact duplicates keeping
// first-seen order. URLs are kept byte-for-byte as submitted.
func uniqueURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if strings.TrimSpace(u) == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
