package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shikshya-edu/institute-service/internal/cache"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

type subjectService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *subjectService) List(ctx context.Context, q PageQuery) (*SubjectListResponse, error) {
	subjects, total, err := s.repo.Subject().List(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	return &SubjectListResponse{
		Items:      subjects,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *subjectService) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	if s.cache != nil {
		var cached models.Subject
		if err := s.cache.Subject.Get(ctx, fmt.Sprintf("id:%s", id), &cached); err == nil {
			return &cached, nil
		}
	}

	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to load subject: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Subject.Set(ctx, fmt.Sprintf("id:%s", id), subject, cache.SubjectCacheConfig.TTL); err != nil {
			s.logger.Debug("Failed to cache subject", "subject_id", id, "error", err)
		}
	}

	return subject, nil
}

// checkEnrollParties verifies that both sides of an enrollment exist.
func (s *subjectService) checkEnrollParties(ctx context.Context, userID, subjectID string) error {
	if _, err := s.repo.Subject().GetByID(ctx, subjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to load subject: %w", err)
	}
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	return nil
}

func (s *subjectService) Enroll(ctx context.Context, userID string, req *EnrollmentRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}
	if err := s.checkEnrollParties(ctx, userID, req.SubjectID); err != nil {
		return err
	}

	if _, err := s.repo.Enrollment().Find(ctx, userID, req.SubjectID); err == nil {
		return ErrAlreadyEnrolled
	} else if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := &models.Enrollment{
		UserID:    userID,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to enroll: %w", err)
	}

	s.logger.Info("User enrolled", "user_id", userID, "subject_id", req.SubjectID)
	s.publishEvent(ctx, events.NewEvent(events.TypeEnrollmentChanged, events.EnrollmentChangedEvent{
		UserID: userID,
		Added:  []string{req.SubjectID},
	}))
	return nil
}

func (s *subjectService) Unenroll(ctx context.Context, userID string, req *EnrollmentRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}
	if err := s.checkEnrollParties(ctx, userID, req.SubjectID); err != nil {
		return err
	}

	if _, err := s.repo.Enrollment().Find(ctx, userID, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	if err := s.repo.Enrollment().DeleteByUserAndSubjects(ctx, userID, []string{req.SubjectID}); err != nil {
		return fmt.Errorf("failed to unenroll: %w", err)
	}

	s.logger.Info("User unenrolled", "user_id", userID, "subject_id", req.SubjectID)
	s.publishEvent(ctx, events.NewEvent(events.TypeEnrollmentChanged, events.EnrollmentChangedEvent{
		UserID:  userID,
		Removed: []string{req.SubjectID},
	}))
	return nil
}

func (s *subjectService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
