package repositories

import "context"

// Repository aggregates all entity repositories.
type Repository interface {
	User() UserRepository
	Subject() SubjectRepository
	Enrollment() EnrollmentRepository
	Contact() ContactRepository
	Carousel() CarouselRepository
	Document() DocumentRepository
	Dashboard() DashboardRepository

	// WithTransaction runs fn against a transaction-bound Repository.
	// Returning an error rolls back every write made through it.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
