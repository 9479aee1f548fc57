// Package models defines the persistent entities and API envelopes.
package models

import "time"

// User is an account that owns links and playlists.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null;size:254" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	IsOAuth      bool       `gorm:"default:false" json:"is_oauth"`
	ProfileImage string     `json:"profile_img"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Links        []Link     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Playlists    []Playlist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Profile is the cached view returned by GET /users/me.
type Profile struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	ProfileImage  string    `json:"profile_img"`
	IsOAuth       bool      `json:"is_oauth"`
	UploadedLinks int64     `json:"uploaded_links"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
