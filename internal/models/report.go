package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is the metadata of a published review archive stored in the database.
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName   string    `json:"file_name"`
	Size       int64     `json:"size"`
	Topics     int       `json:"topics"`
	Images     int       `json:"images"`
	Author     string    `json:"author"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
