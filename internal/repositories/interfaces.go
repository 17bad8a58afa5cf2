package repositories

import (
	"context"
	"time"

	"github.com/shikshya-edu/institute-service/internal/models"
)

// PageFilters defines the shared pagination/search inputs for list queries.
type PageFilters struct {
	Search string // case-insensitive substring match, entity-specific columns
	Limit  int    // page size
	Offset int    // offset for pagination
}

// UserRepository handles user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	// List searches fullName, email and phoneNumber
	List(ctx context.Context, filters PageFilters) ([]*models.User, int64, error)
	// ListAll returns every user with enrollments and subjects preloaded,
	// newest first. Used by the export pipeline.
	ListAll(ctx context.Context) ([]*models.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SubjectRepository handles the subject catalog.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters PageFilters) ([]*models.Subject, int64, error)
	ListByUser(ctx context.Context, userID string, filters PageFilters) ([]*models.Subject, int64, error)
}

// EnrolledUserRow is one row of the admin enrolled-users report.
type EnrolledUserRow struct {
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	SubjectNames []string  `json:"subjects"`
	EnrolledAt   time.Time `json:"createdAt"`
}

// EnrollmentRepository handles the user-subject join rows.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Find(ctx context.Context, userID, subjectID string) (*models.Enrollment, error)
	// ListSubjectIDs returns the ids of all subjects the user is enrolled in.
	ListSubjectIDs(ctx context.Context, userID string) ([]string, error)
	// DeleteByUserAndSubjects removes the user's enrollments for the given
	// subject ids.
	DeleteByUserAndSubjects(ctx context.Context, userID string, subjectIDs []string) error

	Count(ctx context.Context) (int64, error)
	// ListEnrolledUsers returns users having at least one enrollment,
	// with their subject names. Search matches fullName, email and
	// subject name.
	ListEnrolledUsers(ctx context.Context, filters PageFilters) ([]EnrolledUserRow, int64, error)
}

// ContactRepository handles contact-form submissions.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id string) error

	// List searches name, email, message and phone
	List(ctx context.Context, filters PageFilters) ([]*models.Contact, int64, error)
}

// CarouselRepository handles landing-page carousel entries.
type CarouselRepository interface {
	Create(ctx context.Context, carousel *models.Carousel) error
	GetByID(ctx context.Context, id string) (*models.Carousel, error)
	Update(ctx context.Context, carousel *models.Carousel) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters PageFilters) ([]*models.Carousel, int64, error)
}

// DocumentRepository handles uploaded PDF resources.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error

	// List searches title, description and filename
	List(ctx context.Context, filters PageFilters) ([]*models.Document, int64, error)
	ListByUploader(ctx context.Context, uploaderID string, filters PageFilters) ([]*models.Document, int64, error)

	IncrementDownloadCount(ctx context.Context, id string) error
}

// RoleCount is the per-role user tally for the dashboard.
type RoleCount struct {
	Role  models.UserRole `json:"role"`
	Count int64           `json:"count"`
}

// MonthlyCount is one month of signups for the dashboard trend chart.
type MonthlyCount struct {
	Month string `json:"month"` // "Jan 2026"
	Count int64  `json:"count"`
}

// DashboardRepository aggregates platform-wide statistics.
type DashboardRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountSubjects(ctx context.Context) (int64, error)
	CountContacts(ctx context.Context) (int64, error)
	CountEnrollments(ctx context.Context) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]*models.User, error)
	UsersByRole(ctx context.Context) ([]RoleCount, error)
	// SignupsSince returns users created at or after the cutoff, creation
	// times only.
	SignupsSince(ctx context.Context, cutoff time.Time) ([]time.Time, error)
}
