package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shikshya-edu/institute-service/internal/auth"
	"github.com/shikshya-edu/institute-service/internal/cache"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

const dashboardStatsCacheKey = "dashboard:stats"

type adminService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAdminService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AdminService {
	return &adminService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== USER MANAGEMENT =====

func (s *adminService) CreateUser(ctx context.Context, req *UserCreateRequest) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUserCreate(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	user := &models.User{
		FullName:          req.FullName,
		Email:             req.Email,
		Password:          hash,
		Role:              role,
		IsVerified:        true,
		PhoneNumber:       req.PhoneNumber,
		Address:           req.Address,
		MotherName:        req.MotherName,
		FatherName:        req.FatherName,
		ParentContact:     req.ParentContact,
		SchoolCollegeName: req.SchoolCollegeName,
		ProfilePicURL:     req.ProfilePicURL,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created by admin", "user_id", user.ID, "role", user.Role)
	s.invalidateStats(ctx)

	return user, nil
}

func (s *adminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id string, req *UserUpdateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User().ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = req.Address
	}
	if req.MotherName != nil {
		user.MotherName = req.MotherName
	}
	if req.FatherName != nil {
		user.FatherName = req.FatherName
	}
	if req.ParentContact != nil {
		user.ParentContact = req.ParentContact
	}
	if req.SchoolCollegeName != nil {
		user.SchoolCollegeName = req.SchoolCollegeName
	}
	if req.ProfilePicURL != nil {
		user.ProfilePicURL = req.ProfilePicURL
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id)
	s.invalidateStats(ctx)
	s.publishEvent(ctx, events.NewEvent(events.TypeUserDeleted, events.UserDeletedEvent{UserID: id}))

	return nil
}

func (s *adminService) ListUsers(ctx context.Context, q PageQuery) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Items:      users,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *adminService) ListEnrolledUsers(ctx context.Context, q PageQuery) (*EnrolledUserListResponse, error) {
	rows, total, err := s.repo.Enrollment().ListEnrolledUsers(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled users: %w", err)
	}

	return &EnrolledUserListResponse{
		Items:      rows,
		Pagination: NewPagination(total, q),
	}, nil
}

// ===== SUBJECT MANAGEMENT =====

func (s *adminService) CreateSubject(ctx context.Context, req *SubjectCreateRequest) (*models.Subject, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	subject := &models.Subject{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrSubjectNameTaken
		}
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "name", subject.Name)
	s.invalidateStats(ctx)

	return subject, nil
}

func (s *adminService) UpdateSubject(ctx context.Context, id string, req *SubjectUpdateRequest) (*models.Subject, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to load subject: %w", err)
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = req.Description
	}

	if err := s.repo.Subject().Update(ctx, subject); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrSubjectNameTaken
		}
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}

	cache.InvalidateSubjectCache(ctx, s.cache, id)

	return subject, nil
}

func (s *adminService) DeleteSubject(ctx context.Context, id string) error {
	if err := s.repo.Subject().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.logger.Info("Subject deleted", "subject_id", id)
	cache.InvalidateSubjectCache(ctx, s.cache, id)
	s.invalidateStats(ctx)

	return nil
}

// ===== CONTACT MANAGEMENT =====

func (s *adminService) ListContacts(ctx context.Context, q PageQuery) (*ContactListResponse, error) {
	contacts, total, err := s.repo.Contact().List(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return &ContactListResponse{
		Items:      contacts,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *adminService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := s.repo.Contact().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return contact, nil
}

func (s *adminService) UpdateContact(ctx context.Context, id string, req *ContactUpdateRequest) (*models.Contact, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	contact, err := s.repo.Contact().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Message != nil {
		contact.Message = *req.Message
	}

	if err := s.repo.Contact().Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

func (s *adminService) DeleteContact(ctx context.Context, id string) error {
	if err := s.repo.Contact().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrContactNotFound
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	s.invalidateStats(ctx)
	return nil
}

// ===== CAROUSEL MANAGEMENT =====

func (s *adminService) ListCarousels(ctx context.Context, q PageQuery) (*CarouselListResponse, error) {
	carousels, total, err := s.repo.Carousel().List(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list carousels: %w", err)
	}

	return &CarouselListResponse{
		Items:      carousels,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *adminService) CreateCarousel(ctx context.Context, req *CarouselCreateRequest) (*models.Carousel, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	carousel := &models.Carousel{ImageURL: req.ImageURL}
	if err := s.repo.Carousel().Create(ctx, carousel); err != nil {
		return nil, fmt.Errorf("failed to create carousel: %w", err)
	}

	cache.InvalidateCarouselCache(ctx, s.cache)

	return carousel, nil
}

func (s *adminService) UpdateCarousel(ctx context.Context, id string, req *CarouselUpdateRequest) (*models.Carousel, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	carousel, err := s.repo.Carousel().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCarouselNotFound
		}
		return nil, fmt.Errorf("failed to load carousel: %w", err)
	}

	carousel.ImageURL = req.ImageURL
	if err := s.repo.Carousel().Update(ctx, carousel); err != nil {
		return nil, fmt.Errorf("failed to update carousel: %w", err)
	}

	cache.InvalidateCarouselCache(ctx, s.cache)

	return carousel, nil
}

func (s *adminService) DeleteCarousel(ctx context.Context, id string) error {
	if err := s.repo.Carousel().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCarouselNotFound
		}
		return fmt.Errorf("failed to delete carousel: %w", err)
	}

	cache.InvalidateCarouselCache(ctx, s.cache)

	return nil
}

// ===== DASHBOARD =====

func (s *adminService) GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	if s.cache != nil {
		var cached DashboardStatsResponse
		if err := s.cache.Stats.Get(ctx, dashboardStatsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	dash := s.repo.Dashboard()

	totalUsers, err := dash.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalSubjects, err := dash.CountSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subjects: %w", err)
	}
	totalContacts, err := dash.CountContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	totalEnrollments, err := dash.CountEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	byRole, err := dash.UsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group users by role: %w", err)
	}

	recent, err := dash.RecentUsers(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}

	monthly, err := s.monthlySignups(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStatsResponse{
		Overview: DashboardOverview{
			TotalUsers:       totalUsers,
			TotalSubjects:    totalSubjects,
			TotalContacts:    totalContacts,
			TotalEnrollments: totalEnrollments,
		},
		UsersByRole:    byRole,
		MonthlySignups: monthly,
		RecentUsers:    recent,
	}

	if s.cache != nil {
		if err := s.cache.Stats.Set(ctx, dashboardStatsCacheKey, stats, cache.StatsCacheConfig.TTL); err != nil {
			s.logger.Debug("Failed to cache dashboard stats", "error", err)
		}
	}

	return stats, nil
}

// monthlySignups buckets the last twelve months of signups, oldest first.
// Empty months are reported with a zero count.
func (s *adminService) monthlySignups(ctx context.Context) ([]repositories.MonthlyCount, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	times, err := s.repo.Dashboard().SignupsSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load signup dates: %w", err)
	}

	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.Format("Jan 2006")]++
	}

	months := make([]repositories.MonthlyCount, 0, 12)
	for i := 0; i < 12; i++ {
		label := start.AddDate(0, i, 0).Format("Jan 2006")
		months = append(months, repositories.MonthlyCount{
			Month: label,
			Count: counts[label],
		})
	}

	return months, nil
}

func (s *adminService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	cache.SafeDelete(ctx, s.cache.Stats, dashboardStatsCacheKey)
}

func (s *adminService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
