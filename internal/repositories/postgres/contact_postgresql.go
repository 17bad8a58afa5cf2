package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) repositories.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return handleDBError(err, "create contact")
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get contact by id")
	}
	return &contact, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Save(contact).Error; err != nil {
		return handleDBError(err, "update contact")
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete contact")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete contact")
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context, filters repositories.PageFilters) ([]*models.Contact, int64, error) {
	var contacts []*models.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Contact{})
	query = applySearch(query, filters.Search, "name", "email", "message", "phone")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count contacts")
	}

	if err := applyPagination(query, filters).Find(&contacts).Error; err != nil {
		return nil, 0, handleDBError(err, "list contacts")
	}

	return contacts, total, nil
}
