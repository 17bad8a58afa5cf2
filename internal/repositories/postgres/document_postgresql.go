package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) repositories.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return handleDBError(err, "create document")
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get document by id")
	}
	return &doc, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete document")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete document")
	}
	return nil
}

func (r *documentRepository) List(ctx context.Context, filters repositories.PageFilters) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Document{})
	query = applySearch(query, filters.Search, "title", "description", "filename")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count documents")
	}

	if err := applyPagination(query, filters).Find(&docs).Error; err != nil {
		return nil, 0, handleDBError(err, "list documents")
	}

	return docs, total, nil
}

func (r *documentRepository) ListByUploader(ctx context.Context, uploaderID string, filters repositories.PageFilters) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("uploaded_by_id = ?", uploaderID)
	query = applySearch(query, filters.Search, "title", "description", "filename")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count uploader documents")
	}

	if err := applyPagination(query, filters).Find(&docs).Error; err != nil {
		return nil, 0, handleDBError(err, "list uploader documents")
	}

	return docs, total, nil
}

// IncrementDownloadCount bumps the counter atomically in the database so
// concurrent downloads never lose updates.
func (r *documentRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return handleDBError(result.Error, "increment download count")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "increment download count")
	}
	return nil
}
