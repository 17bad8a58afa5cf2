package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is an uploaded PDF study resource.
type Document struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:255"`
	Description *string `json:"description" gorm:"size:2000"`

	Filename string `json:"filename" gorm:"not null;size:255"`
	Path     string `json:"path" gorm:"not null;size:500"`
	MimeType string `json:"mimetype" gorm:"not null;size:100"`
	Size     int64  `json:"size" gorm:"not null"`

	DownloadCount int64 `json:"downloadCount" gorm:"default:0"`

	UploadedByID string `json:"uploadedById" gorm:"not null;size:36"`
	UploadedBy   *User  `json:"uploadedBy,omitempty" gorm:"foreignKey:UploadedByID"`

	// Free-form upload metadata (original header values, client info)
	Meta datatypes.JSON `json:"meta,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
