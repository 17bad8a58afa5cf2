package services

import (
	"context"
	"io"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type RefreshRequest = validator.RefreshRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type CompleteProfileRequest = validator.CompleteProfileRequest
type EnrollmentRequest = validator.EnrollmentRequest
type UserCreateRequest = validator.UserCreateRequest
type UserUpdateRequest = validator.UserUpdateRequest
type EnrollmentUpdateRequest = validator.EnrollmentUpdateRequest
type SubjectCreateRequest = validator.SubjectCreateRequest
type SubjectUpdateRequest = validator.SubjectUpdateRequest
type ContactCreateRequest = validator.ContactCreateRequest
type ContactUpdateRequest = validator.ContactUpdateRequest
type CarouselCreateRequest = validator.CarouselCreateRequest
type CarouselUpdateRequest = validator.CarouselUpdateRequest
type DocumentUploadRequest = validator.DocumentUploadRequest

// PageQuery carries the list query parameters shared by every collection
// endpoint. Page numbering starts at 1.
type PageQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Normalize clamps the query to sane values.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	return q
}

// Filters converts the query into repository filters.
func (q PageQuery) Filters() repositories.PageFilters {
	q = q.Normalize()
	return repositories.PageFilters{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
}

// ===== RESPONSE DTOs =====

// Pagination is the envelope shared by every list response.
type Pagination struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// NewPagination derives the page metadata for a list response.
func NewPagination(total int64, q PageQuery) Pagination {
	q = q.Normalize()
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		Total:           total,
		Page:            q.Page,
		Limit:           q.Limit,
		TotalPages:      totalPages,
		HasPreviousPage: q.Page > 1,
		HasNextPage:     q.Page < totalPages,
	}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type UserListResponse struct {
	Items []*models.User `json:"items"`
	Pagination
}

type SubjectListResponse struct {
	Items []*models.Subject `json:"items"`
	Pagination
}

type ContactListResponse struct {
	Items []*models.Contact `json:"items"`
	Pagination
}

type CarouselListResponse struct {
	Items []*models.Carousel `json:"items"`
	Pagination
}

type DocumentListResponse struct {
	Items []*models.Document `json:"items"`
	Pagination
}

type EnrolledUserListResponse struct {
	Items []repositories.EnrolledUserRow `json:"items"`
	Pagination
}

// EnrollmentSyncResult reports what an enrollment sync changed.
type EnrollmentSyncResult struct {
	Added    []string          `json:"added"`
	Removed  []string          `json:"removed"`
	Subjects []*models.Subject `json:"subjects"`
}

// ImportResult summarizes one CSV import run.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// ExportFile is a generated export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DocumentDownload streams a stored PDF together with its metadata.
type DocumentDownload struct {
	Document *models.Document
	Reader   io.ReadCloser
}

// DashboardStatsResponse aggregates platform-wide numbers for the admin
// dashboard.
type DashboardStatsResponse struct {
	Overview       DashboardOverview           `json:"overview"`
	UsersByRole    []repositories.RoleCount    `json:"usersByRole"`
	MonthlySignups []repositories.MonthlyCount `json:"monthlySignups"`
	RecentUsers    []*models.User              `json:"recentUsers"`
}

type DashboardOverview struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalSubjects    int64 `json:"totalSubjects"`
	TotalContacts    int64 `json:"totalContacts"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)

	// UpdateProfile edits profile fields; when the request carries a subject
	// set it is reconciled in the same transaction as the field update.
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error)

	// CompleteProfile fills in the post-signup details and marks the
	// account verified.
	CompleteProfile(ctx context.Context, userID string, req *CompleteProfileRequest) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, userID, filename, mimeType string, size int64, content io.Reader) (*models.User, error)

	// SyncEnrollments converges the user's enrollments to the submitted
	// subject set, adding the missing rows and removing the surplus ones in
	// one transaction.
	SyncEnrollments(ctx context.Context, userID string, req *EnrollmentUpdateRequest) (*EnrollmentSyncResult, error)
	ListEnrolledSubjects(ctx context.Context, userID string, q PageQuery) (*SubjectListResponse, error)
}

type SubjectService interface {
	List(ctx context.Context, q PageQuery) (*SubjectListResponse, error)
	GetByID(ctx context.Context, id string) (*models.Subject, error)

	Enroll(ctx context.Context, userID string, req *EnrollmentRequest) error
	Unenroll(ctx context.Context, userID string, req *EnrollmentRequest) error
}

type ContactService interface {
	Submit(ctx context.Context, req *ContactCreateRequest) (*models.Contact, error)
}

type AdminService interface {
	// User management
	CreateUser(ctx context.Context, req *UserCreateRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req *UserUpdateRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, q PageQuery) (*UserListResponse, error)
	ListEnrolledUsers(ctx context.Context, q PageQuery) (*EnrolledUserListResponse, error)

	// Subject management
	CreateSubject(ctx context.Context, req *SubjectCreateRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id string, req *SubjectUpdateRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error

	// Contact management
	ListContacts(ctx context.Context, q PageQuery) (*ContactListResponse, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	UpdateContact(ctx context.Context, id string, req *ContactUpdateRequest) (*models.Contact, error)
	DeleteContact(ctx context.Context, id string) error

	// Carousel management
	ListCarousels(ctx context.Context, q PageQuery) (*CarouselListResponse, error)
	CreateCarousel(ctx context.Context, req *CarouselCreateRequest) (*models.Carousel, error)
	UpdateCarousel(ctx context.Context, id string, req *CarouselUpdateRequest) (*models.Carousel, error)
	DeleteCarousel(ctx context.Context, id string) error

	// Dashboard
	GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error)
}

type ImportExportService interface {
	// ImportUsersCSV upserts users by email from CSV content. Rows with a
	// bad field count are skipped; structural and storage failures roll
	// back every write.
	ImportUsersCSV(ctx context.Context, content []byte) (*ImportResult, error)

	// ExportUsersCSV renders every user with their enrolled subjects.
	ExportUsersCSV(ctx context.Context) (*ExportFile, error)

	// ExportUsersXLSX renders the same data as a spreadsheet.
	ExportUsersXLSX(ctx context.Context) (*ExportFile, error)
}

type DocumentService interface {
	Upload(ctx context.Context, req *DocumentUploadRequest, filename, mimeType string, size int64, content io.Reader, uploaderID string) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, q PageQuery) (*DocumentListResponse, error)
	ListMine(ctx context.Context, uploaderID string, q PageQuery) (*DocumentListResponse, error)
	Delete(ctx context.Context, id string, userID string, isAdmin bool) error

	// Download opens the stored file and bumps the download counter in the
	// background.
	Download(ctx context.Context, id string) (*DocumentDownload, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Subject() SubjectService
	Contact() ContactService
	Admin() AdminService
	ImportExport() ImportExportService
	Document() DocumentService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
