package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/branchd-dev/memberctl/internal/models"
)

// SQLiteStore persists the bearer token in a local SQLite file.
// Used on hosts without an OS keychain (CI runners, containers).
type SQLiteStore struct {
	db        *gorm.DB
	serverURL string
}

// OpenSQLiteStore opens (creating if needed) the database at path
func OpenSQLiteStore(path, serverURL string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create credential directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to configure credential database: %w", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate credential database: %w", err)
	}

	return &SQLiteStore{db: db, serverURL: serverURL}, nil
}

// Get retrieves the token, returning "" when none is stored
func (s *SQLiteStore) Get() (string, error) {
	var cred models.StoredCredential
	if err := models.FindByServerURL(s.db, s.serverURL, &cred); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return cred.Token, nil
}

// Set saves the token, replacing any previous one for the server
func (s *SQLiteStore) Set(token string) error {
	cred := &models.StoredCredential{ServerURL: s.serverURL, Token: token}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_url"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(cred).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Remove deletes the token. Removing a missing token is not an error.
func (s *SQLiteStore) Remove() error {
	err := s.db.Where("server_url = ?", s.serverURL).Delete(&models.StoredCredential{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
