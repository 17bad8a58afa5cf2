package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

type contactService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewContactService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ContactService {
	return &contactService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *contactService) Submit(ctx context.Context, req *ContactCreateRequest) (*models.Contact, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	contact := &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	if err := s.repo.Contact().Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	s.logger.Info("Contact submitted", "contact_id", contact.ID)

	if s.publisher != nil {
		event := events.NewEvent(events.TypeContactSubmitted, events.ContactSubmittedEvent{
			ContactID: contact.ID,
			Email:     contact.Email,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
		}
	}

	return contact, nil
}
