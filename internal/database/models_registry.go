package database

import "linkshelf/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Playlist{},
		&models.Link{},
	}
}
