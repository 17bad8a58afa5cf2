package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description *string `json:"description" gorm:"size:2000"`

	Enrollments []Enrollment `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Enrollment links one user to one subject. At most one row may exist per
// (user, subject) pair.
type Enrollment struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	UserID    string `json:"userId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_subject"`
	SubjectID string `json:"subjectId" gorm:"not null;size:36;uniqueIndex:idx_enrollments_user_subject"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
