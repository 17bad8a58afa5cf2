package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) repositories.SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get subject by id")
	}
	return &subject, nil
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Save(subject).Error; err != nil {
		return handleDBError(err, "update subject")
	}
	return nil
}

func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Subject{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete subject")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete subject")
	}
	return nil
}

func (r *subjectRepository) List(ctx context.Context, filters repositories.PageFilters) ([]*models.Subject, int64, error) {
	var subjects []*models.Subject
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Subject{})
	query = applySearch(query, filters.Search, "name")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count subjects")
	}

	if err := applyPagination(query, filters).Find(&subjects).Error; err != nil {
		return nil, 0, handleDBError(err, "list subjects")
	}

	return subjects, total, nil
}

func (r *subjectRepository) ListByUser(ctx context.Context, userID string, filters repositories.PageFilters) ([]*models.Subject, int64, error) {
	var subjects []*models.Subject
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Subject{}).
		Joins("JOIN enrollments ON enrollments.subject_id = subjects.id").
		Where("enrollments.user_id = ?", userID)
	query = applySearch(query, filters.Search, "subjects.name")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count user subjects")
	}

	query = query.Order("subjects.created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&subjects).Error; err != nil {
		return nil, 0, handleDBError(err, "list user subjects")
	}

	return subjects, total, nil
}
