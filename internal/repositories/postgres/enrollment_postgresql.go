package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) repositories.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return handleDBError(err, "create enrollment")
	}
	return nil
}

func (r *enrollmentRepository) Find(ctx context.Context, userID, subjectID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		First(&enrollment, "user_id = ? AND subject_id = ?", userID, subjectID).Error
	if err != nil {
		return nil, handleDBError(err, "find enrollment")
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListSubjectIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("subject_id", &ids).Error
	if err != nil {
		return nil, handleDBError(err, "list enrolled subject ids")
	}
	return ids, nil
}

func (r *enrollmentRepository) DeleteByUserAndSubjects(ctx context.Context, userID string, subjectIDs []string) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id IN ?", userID, subjectIDs).
		Delete(&models.Enrollment{}).Error
	if err != nil {
		return handleDBError(err, "delete enrollments")
	}
	return nil
}

func (r *enrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count enrollments")
	}
	return count, nil
}

func (r *enrollmentRepository) ListEnrolledUsers(ctx context.Context, filters repositories.PageFilters) ([]repositories.EnrolledUserRow, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN users ON users.id = enrollments.user_id").
		Joins("JOIN subjects ON subjects.id = enrollments.subject_id")
	base = applySearch(base, filters.Search, "users.full_name", "users.email", "subjects.name")

	var total int64
	if err := base.Distinct("enrollments.user_id").Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count enrolled users")
	}

	// Page over distinct users first, then collect their subjects.
	pageIDs := base.Session(&gorm.Session{}).
		Select("enrollments.user_id").
		Group("enrollments.user_id").
		Order("MIN(enrollments.created_at) DESC")
	if filters.Limit > 0 {
		pageIDs = pageIDs.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		pageIDs = pageIDs.Offset(filters.Offset)
	}

	var userIDs []string
	if err := pageIDs.Pluck("enrollments.user_id", &userIDs).Error; err != nil {
		return nil, 0, handleDBError(err, "page enrolled users")
	}
	if len(userIDs) == 0 {
		return []repositories.EnrolledUserRow{}, total, nil
	}

	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Subject").
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, handleDBError(err, "load enrolled users")
	}

	byUser := make(map[string]*repositories.EnrolledUserRow, len(userIDs))
	for _, e := range enrollments {
		row, ok := byUser[e.UserID]
		if !ok {
			row = &repositories.EnrolledUserRow{
				UserID:     e.UserID,
				EnrolledAt: e.CreatedAt,
			}
			if e.User != nil {
				row.FullName = e.User.FullName
				row.Email = e.User.Email
			}
			byUser[e.UserID] = row
		}
		if e.Subject != nil {
			row.SubjectNames = append(row.SubjectNames, e.Subject.Name)
		}
		if e.CreatedAt.Before(row.EnrolledAt) {
			row.EnrolledAt = e.CreatedAt
		}
	}

	rows := make([]repositories.EnrolledUserRow, 0, len(userIDs))
	for _, id := range userIDs {
		if row, ok := byUser[id]; ok {
			rows = append(rows, *row)
		}
	}
	return rows, total, nil
}
