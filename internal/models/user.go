package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	FullName string   `json:"fullName" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;default:USER;size:10"`

	// Credential hash, never serialized
	Password string `json:"-" gorm:"not null;size:255"`

	// Profile info
	PhoneNumber       *string `json:"phoneNumber" gorm:"size:20"`
	Address           *string `json:"address" gorm:"size:255"`
	MotherName        *string `json:"motherName" gorm:"size:100"`
	FatherName        *string `json:"fatherName" gorm:"size:100"`
	ParentContact     *string `json:"parentContact" gorm:"size:20"`
	SchoolCollegeName *string `json:"schoolCollegeName" gorm:"size:255"`
	ProfilePicURL     *string `json:"profilePicUrl" gorm:"size:500"`

	// Status
	IsVerified bool `json:"isVerified" gorm:"default:false"`
	// Set for users created by CSV import; they hold a placeholder
	// credential and must reset it out-of-band before first login.
	PasswordResetRequired bool `json:"passwordResetRequired" gorm:"default:false"`

	Enrollments []Enrollment `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
