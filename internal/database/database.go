package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open bootstraps the SQLite store at the given filesystem path. Foreign
// keys are enforced so moderation logs and invitations cannot outlive their
// teams, and the busy timeout keeps concurrent admin actions from failing
// on the write lock.
func Open(dbPath string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}
