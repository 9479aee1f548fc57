// Package service holds the business rules behind the HTTP handlers:
// account management, link ingestion and playlists.
package service

import (
	"context"
	"log/slog"

	"linkshelf/internal/middleware"
	"linkshelf/internal/youtube"
)

// MetadataFetcher looks up video metadata. Implementations report failures
// through Result.Outcome and never return an error or panic.
type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) youtube.Result
}

// EventPublisher delivers best-effort notifications to a user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, eventType string, payload any) error
}

func publishEvent(ctx context.Context, events EventPublisher, userID uint, eventType string, payload any) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(ctx, userID, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", eventType), slog.String("error", err.Error()))
	}
}
