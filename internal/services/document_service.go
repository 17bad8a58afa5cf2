package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shikshya-edu/institute-service/internal/config"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/storage"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

type documentService struct {
	repo      repositories.Repository
	store     storage.Storage
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	maxSize   int64
}

func NewDocumentService(repo repositories.Repository, store storage.Storage, publisher events.EventPublisher, cfg config.UploadConfig, logger *slog.Logger, validator *validator.Validator) DocumentService {
	return &documentService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		maxSize:   cfg.MaxSize,
	}
}

// sanitizeFilename keeps only the base name and replaces characters that are
// unsafe in a storage path.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "document.pdf"
	}
	return name
}

func (s *documentService) Upload(ctx context.Context, req *DocumentUploadRequest, filename, mimeType string, size int64, content io.Reader, uploaderID string) (*models.Document, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if mimeType != "application/pdf" && !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, ErrNotPDF
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	safeName := sanitizeFilename(filename)
	path := fmt.Sprintf("documents/%s/%s", uuid.NewString(), safeName)

	if err := s.store.Save(ctx, path, content); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	meta, err := json.Marshal(map[string]any{
		"originalFilename": filename,
		"uploadedAt":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata: %w", err)
	}

	doc := &models.Document{
		Title:        req.Title,
		Description:  req.Description,
		Filename:     safeName,
		Path:         path,
		MimeType:     "application/pdf",
		Size:         size,
		UploadedByID: uploaderID,
		Meta:         datatypes.JSON(meta),
	}

	if err := s.repo.Document().Create(ctx, doc); err != nil {
		// The record failed, remove the orphaned file.
		if cleanupErr := s.store.Delete(ctx, path); cleanupErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", "path", path, "error", cleanupErr)
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("Document uploaded", "document_id", doc.ID, "uploaded_by", uploaderID)
	s.publishEvent(ctx, events.NewEvent(events.TypeDocumentUploaded, events.DocumentUploadedEvent{
		DocumentID: doc.ID,
		Title:      doc.Title,
		UploadedBy: uploaderID,
	}))

	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.Document().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, q PageQuery) (*DocumentListResponse, error) {
	docs, total, err := s.repo.Document().List(ctx, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &DocumentListResponse{
		Items:      docs,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *documentService) ListMine(ctx context.Context, uploaderID string, q PageQuery) (*DocumentListResponse, error) {
	docs, total, err := s.repo.Document().ListByUploader(ctx, uploaderID, q.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &DocumentListResponse{
		Items:      docs,
		Pagination: NewPagination(total, q),
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id string, userID string, isAdmin bool) error {
	doc, err := s.repo.Document().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to load document: %w", err)
	}

	if !isAdmin && doc.UploadedByID != userID {
		return NewPermissionError(userID, "document", "delete", "not the uploader")
	}

	if err := s.repo.Document().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := s.store.Delete(ctx, doc.Path); err != nil {
		s.logger.Warn("Failed to remove stored file", "path", doc.Path, "error", err)
	}

	s.logger.Info("Document deleted", "document_id", id)
	return nil
}

// Download opens the stored file. The download counter is incremented in the
// background; a failed increment is logged and never surfaces to the caller.
func (s *documentService) Download(ctx context.Context, id string) (*DocumentDownload, error) {
	doc, err := s.repo.Document().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	reader, err := s.store.Open(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := s.repo.Document().IncrementDownloadCount(bgCtx, id); err != nil {
			s.logger.Warn("Failed to increment download count", "document_id", id, "error", err)
		}
		s.publishEvent(bgCtx, events.NewEvent(events.TypeDocumentDownloaded, events.DocumentDownloadedEvent{
			DocumentID: id,
		}))
	}()

	return &DocumentDownload{Document: doc, Reader: reader}, nil
}

func (s *documentService) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
