package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shikshya-edu/institute-service/internal/config"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/storage"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	store     storage.Storage
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	maxSize   int64
}

func NewUserService(repo repositories.Repository, store storage.Storage, publisher events.EventPublisher, cfg config.UploadConfig, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		maxSize:   cfg.MaxSize,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.SubjectIDs != nil {
		if err := s.checkSubjectIDs(ctx, *req.SubjectIDs); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
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

	// The field update and the enrollment reconciliation commit together or
	// not at all.
	var added, removed []string
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if req.SubjectIDs != nil {
			var err error
			added, removed, err = applyEnrollmentDiff(ctx, tx, userID, *req.SubjectIDs)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyEnrollmentChange(ctx, userID, added, removed)

	return user, nil
}

func (s *userService) CompleteProfile(ctx context.Context, userID string, req *CompleteProfileRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.PhoneNumber = &req.PhoneNumber
	user.Address = &req.Address
	user.MotherName = req.MotherName
	user.FatherName = req.FatherName
	user.ParentContact = req.ParentContact
	user.SchoolCollegeName = req.SchoolCollegeName
	if req.ProfilePicURL != nil {
		user.ProfilePicURL = req.ProfilePicURL
	}
	user.IsVerified = true

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to complete profile: %w", err)
	}

	s.logger.Info("Profile completed", "user_id", userID)
	return user, nil
}

// imageMimeTypes lists the accepted profile picture content types.
var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func isImageUpload(filename, mimeType string) bool {
	if imageMimeTypes[mimeType] {
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *userService) UpdateProfilePicture(ctx context.Context, userID, filename, mimeType string, size int64, content io.Reader) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !isImageUpload(filename, mimeType) {
		return nil, ErrNotImage
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	path := fmt.Sprintf("profile-pics/%s/%s", uuid.NewString(), sanitizeFilename(filename))
	if err := s.store.Save(ctx, path, content); err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	picURL := "/uploads/" + path
	user.ProfilePicURL = &picURL
	if err := s.repo.User().Update(ctx, user); err != nil {
		if cleanupErr := s.store.Delete(ctx, path); cleanupErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", "path", path, "error", cleanupErr)
		}
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	s.logger.Info("Profile picture updated", "user_id", userID)
	return user, nil
}

// computeEnrollmentDiff returns which subject ids must be added and which
// removed to converge current onto desired. Both inputs may contain
// duplicates; the outputs never do. Order is normalized for stable results.
func computeEnrollmentDiff(current, desired []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for id := range desiredSet {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range currentSet {
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}

// checkSubjectIDs rejects unknown subject ids so a transaction only ever
// sees valid references.
func (s *userService) checkSubjectIDs(ctx context.Context, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.repo.Subject().GetByID(ctx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return fmt.Errorf("%w: %s", ErrUnknownSubject, id)
			}
			return fmt.Errorf("failed to load subject: %w", err)
		}
	}
	return nil
}

// applyEnrollmentDiff converges the user's enrollment rows to the desired
// subject set inside the given transaction.
func applyEnrollmentDiff(ctx context.Context, tx repositories.Repository, userID string, desired []string) (added, removed []string, err error) {
	current, err := tx.Enrollment().ListSubjectIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	added, removed = computeEnrollmentDiff(current, desired)

	for _, subjectID := range added {
		enrollment := &models.Enrollment{
			UserID:    userID,
			SubjectID: subjectID,
		}
		if err := tx.Enrollment().Create(ctx, enrollment); err != nil {
			return nil, nil, fmt.Errorf("failed to enroll subject %s: %w", subjectID, err)
		}
	}

	if err := tx.Enrollment().DeleteByUserAndSubjects(ctx, userID, removed); err != nil {
		return nil, nil, fmt.Errorf("failed to remove enrollments: %w", err)
	}

	return added, removed, nil
}

func (s *userService) notifyEnrollmentChange(ctx context.Context, userID string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	s.logger.Info("Enrollments synced",
		"user_id", userID,
		"added", len(added),
		"removed", len(removed),
	)
	s.publishEvent(ctx, events.NewEvent(events.TypeEnrollmentChanged, events.EnrollmentChangedEvent{
		UserID:  userID,
		Added:   added,
		Removed: removed,
	}))
}

func (s *userService) SyncEnrollments(ctx context.Context, userID string, req *EnrollmentUpdateRequest) (*EnrollmentSyncResult, error) {
	if errs := s.validator.GetBusinessValidator().ValidateEnrollmentUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.checkSubjectIDs(ctx, req.SubjectIDs); err != nil {
		return nil, err
	}

	var added, removed []string
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		added, removed, err = applyEnrollmentDiff(ctx, tx, userID, req.SubjectIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyEnrollmentChange(ctx, userID, added, removed)

	subjects, _, err := s.repo.Subject().ListByUser(ctx, userID, repositories.PageFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled subjects: %w", err)
	}

	return &EnrollmentSyncResult{
		Added:    added,
		Removed:  removed,
		Subjects: subjects,
	}, nil
}

func (s *userService) ListEnrolledSubjects(ctx context.Context, userID string, q PageQuery) (*SubjectListResponse, error) {
	subjects, total, err := s.repo.Subject().ListByUser(ctx, userID, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled subjects: %w", err)
	}

	return &SubjectListResponse{
		Items:      subjects,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *userService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
