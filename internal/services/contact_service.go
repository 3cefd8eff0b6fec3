// internal/services/contact_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type ContactService struct {
	contacts  repository.ContactRepository
	publisher EventPublisher
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"max=30"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

func NewContactService(store *repository.Store, cfg *config.Config, publisher EventPublisher) *ContactService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ContactService{
		contacts:  store.Contacts,
		publisher: publisher,
		ttl:       cfg.Contacts.TTL,
		interval:  cfg.Contacts.PurgeInterval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ContactService) CreateContact(ctx context.Context, req *CreateContactRequest) (*models.Contact, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := s.now()
	contact := &models.Contact{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.ContactStatusPending,
		ExpiresAt: now.Add(s.ttl),
	}
	contact.CreatedAt = now

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type:    EventContactCreated,
		Key:     contact.ID.String(),
		At:      now,
		Payload: map[string]interface{}{"_id": contact.ID},
	})
	return contact, nil
}

// ListContacts returns unexpired messages, newest first.
func (s *ContactService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.contacts.ListActive(ctx, s.now())
}

func (s *ContactService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.contacts.DeleteExpired(ctx, s.now())
}

// RunPurger deletes expired messages every interval until ctx is done.
func (s *ContactService) RunPurger(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				logrus.WithError(err).Warn("Contact purge failed")
				continue
			}
			if n > 0 {
				logrus.WithField("deleted", n).Info("Expired contact messages purged")
			}
		}
	}
}
