package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

func TestNewContactService(t *testing.T) {
	tests := []struct {
		name string
	}{
		{name: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewContactService(newMockRepository(), events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())
			if svc == nil {
				t.Fatal("expected service instance")
			}
		})
	}
}

func TestContactSubmit(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewContactService(repo, publisher, testLogger(), validator.New())

	contact, err := svc.Submit(context.Background(), &ContactCreateRequest{
		Name:    "Visitor Person",
		Email:   "visitor@example.com",
		Message: "When do admissions open?",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if contact.ID == "" {
		t.Error("submitted contact should get an id")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeContactSubmitted {
		t.Errorf("published events = %v, want one %s event", published, events.TypeContactSubmitted)
	}
}

func TestContactSubmitValidation(t *testing.T) {
	svc := NewContactService(newMockRepository(), nil, testLogger(), validator.New())

	_, err := svc.Submit(context.Background(), &ContactCreateRequest{
		Name:  "Visitor Person",
		Email: "not-an-email",
	})
	if err == nil {
		t.Fatal("Submit() with bad payload should fail validation")
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Submit() error = %T, want validator.ValidationErrors", err)
	}
}
