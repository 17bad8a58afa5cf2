package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the platform.
const (
	TypeUserRegistered     = "user.registered"
	TypeUserImported       = "user.imported"
	TypeUserDeleted        = "user.deleted"
	TypeEnrollmentChanged  = "enrollment.changed"
	TypeContactSubmitted   = "contact.submitted"
	TypeDocumentUploaded   = "document.uploaded"
	TypeDocumentDownloaded = "document.downloaded"
)

const (
	eventSource  = "institute-service"
	eventVersion = "1.0"
)

// Event is the envelope every published message shares.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope for the given type and payload.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// UserRegisteredEvent is emitted after a successful signup.
type UserRegisteredEvent struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UserImportedEvent is emitted once per successful CSV import run.
type UserImportedEvent struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// UserDeletedEvent is emitted after an admin removes a user.
type UserDeletedEvent struct {
	UserID string `json:"userId"`
}

// EnrollmentChangedEvent is emitted after an enrollment sync run that
// changed at least one row.
type EnrollmentChangedEvent struct {
	UserID  string   `json:"userId"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// ContactSubmittedEvent is emitted when the public contact form is saved.
type ContactSubmittedEvent struct {
	ContactID string `json:"contactId"`
	Email     string `json:"email"`
}

// DocumentUploadedEvent is emitted after a PDF upload is persisted.
type DocumentUploadedEvent struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	UploadedBy string `json:"uploadedBy"`
}

// DocumentDownloadedEvent is emitted on each download.
type DocumentDownloadedEvent struct {
	DocumentID string `json:"documentId"`
}
