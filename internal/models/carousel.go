package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Carousel is one image slot on the landing-page slider.
type Carousel struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	ImageURL string `json:"imageUrl" gorm:"not null;size:500"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Carousel) TableName() string {
	return "carousels"
}

func (c *Carousel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
