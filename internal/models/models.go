package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// StoredCredential is the persisted bearer token for one server.
// There is at most one row per server URL.
type StoredCredential struct {
	BaseModel
	ServerURL string    `json:"server_url" gorm:"uniqueIndex;not null"`
	Token     string    `json:"-" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&StoredCredential{})
}

// FindByServerURL loads the credential row for serverURL
func FindByServerURL(db *gorm.DB, serverURL string, model *StoredCredential) error {
	return db.Where("server_url = ?", serverURL).First(model).Error
}
