package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP statuses.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrContactNotFound  = errors.New("contact not found")
	ErrCarouselNotFound = errors.New("carousel not found")
	ErrDocumentNotFound = errors.New("document not found")

	ErrEmailTaken       = errors.New("email already registered")
	ErrSubjectNameTaken = errors.New("subject name already in use")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrInvalidCSV     = errors.New("invalid csv payload")
	ErrNotPDF         = errors.New("file is not a pdf")
	ErrNotImage       = errors.New("file is not an image")
	ErrFileTooLarge   = errors.New("file exceeds the size limit")
	ErrUnknownSubject = errors.New("unknown subject id")

	ErrAlreadyEnrolled = errors.New("already enrolled in subject")
	ErrNotEnrolled     = errors.New("not enrolled in subject")
)

// PermissionError is returned when a caller is not allowed to perform an
// operation on a resource.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
