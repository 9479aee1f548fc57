package models

import (
	"strings"
	"time"
)

// Visibility controls whether a playlist appears in the public listing.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility accepts "private" or "public" in any case.
func ParseVisibility(raw string) (Visibility, bool) {
	switch Visibility(strings.ToLower(strings.TrimSpace(raw))) {
	case VisibilityPrivate:
		return VisibilityPrivate, true
	case VisibilityPublic:
		return VisibilityPublic, true
	default:
		return "", false
	}
}

// Playlist groups a user's links. A link belongs to at most one playlist.
type Playlist struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:120" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Visibility  Visibility `gorm:"size:10;not null;default:private" json:"visibility"`
	Links       []Link     `gorm:"foreignKey:PlaylistID;constraint:OnDelete:SET NULL" json:"links"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
