package models

import (
	"time"

	"gorm.io/datatypes"
)

// LinkSource records how a link entered the system.
type LinkSource string

const (
	SourceManual LinkSource = "manual"
	SourceFile   LinkSource = "file"
)

// Link is a submitted video URL plus whatever metadata enrichment produced.
// (user_id, url) is unique.
type Link struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	UserID             uint                        `gorm:"not null;uniqueIndex:idx_links_user_url,priority:1;index" json:"user_id"`
	URL                string                      `gorm:"not null;uniqueIndex:idx_links_user_url,priority:2" json:"url"`
	VideoID            *string                     `gorm:"size:11;index" json:"video_id"`
	Title              *string                     `json:"title"`
	Description        *string                     `gorm:"type:text" json:"description"`
	ChannelTitle       *string                     `json:"channel_title"`
	ThumbnailURL       *string                     `json:"thumbnail_url"`
	PublishedAt        *time.Time                  `json:"published_at"`
	DurationSeconds    *int                        `json:"duration_seconds"`
	ViewCount          *int64                      `json:"view_count"`
	LikeCount          *int64                      `json:"like_count"`
	CommentCount       *int64                      `json:"comment_count"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	Source             LinkSource                  `gorm:"size:16;not null;default:manual" json:"source"`
	PlaylistID         *uint                       `gorm:"index" json:"playlist_id"`
	LastWatchedSeconds *int                        `json:"last_watched_seconds"`
	Completed          bool                        `gorm:"default:false" json:"completed"`
	UploadedAt         time.Time                   `json:"uploaded_at"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// VideoMetadata is the normalized enrichment applied to a Link.
type VideoMetadata struct {
	Title           string
	Description     string
	ChannelTitle    string
	ThumbnailURL    string
	PublishedAt     *time.Time
	DurationSeconds *int
	ViewCount       *int64
	LikeCount       *int64
	CommentCount    *int64
	Tags            []string
}

// ApplyMetadata copies non-empty enrichment fields onto the link.
func (l *Link) ApplyMetadata(md *VideoMetadata) {
	if md == nil {
		return
	}
	l.Title = optionalString(md.Title)
	l.Description = optionalString(md.Description)
	l.ChannelTitle = optionalString(md.ChannelTitle)
	l.ThumbnailURL = optionalString(md.ThumbnailURL)
	l.PublishedAt = md.PublishedAt
	l.DurationSeconds = md.DurationSeconds
	l.ViewCount = md.ViewCount
	l.LikeCount = md.LikeCount
	l.CommentCount = md.CommentCount
	if len(md.Tags) > 0 {
		l.Tags = datatypes.JSONSlice[string](md.Tags)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
