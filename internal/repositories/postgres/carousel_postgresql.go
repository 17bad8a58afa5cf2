package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type carouselRepository struct {
	db *gorm.DB
}

func NewCarouselRepository(db *gorm.DB) repositories.CarouselRepository {
	return &carouselRepository{db: db}
}

func (r *carouselRepository) Create(ctx context.Context, carousel *models.Carousel) error {
	if err := r.db.WithContext(ctx).Create(carousel).Error; err != nil {
		return handleDBError(err, "create carousel")
	}
	return nil
}

func (r *carouselRepository) GetByID(ctx context.Context, id string) (*models.Carousel, error) {
	var carousel models.Carousel
	if err := r.db.WithContext(ctx).First(&carousel, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get carousel by id")
	}
	return &carousel, nil
}

func (r *carouselRepository) Update(ctx context.Context, carousel *models.Carousel) error {
	if err := r.db.WithContext(ctx).Save(carousel).Error; err != nil {
		return handleDBError(err, "update carousel")
	}
	return nil
}

func (r *carouselRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Carousel{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete carousel")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete carousel")
	}
	return nil
}

func (r *carouselRepository) List(ctx context.Context, filters repositories.PageFilters) ([]*models.Carousel, int64, error) {
	var carousels []*models.Carousel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Carousel{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count carousels")
	}

	if err := applyPagination(query, filters).Find(&carousels).Error; err != nil {
		return nil, 0, handleDBError(err, "list carousels")
	}

	return carousels, total, nil
}
