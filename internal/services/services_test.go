package services

import (
	"context"
	"sync"
	"time"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/repository/memory"
	"github.com/balaguruva/admin-backend/internal/utils"
)

func ptr[T any](v T) *T { return &v }

func testConfig() *config.Config {
	return &config.Config{
		Orders: config.OrderConfig{
			StandardDeliveryPrice: 0,
			ExpressDeliveryPrice:  99,
		},
		Contacts: config.ContactConfig{
			TTL:           7 * 24 * time.Hour,
			PurgeInterval: time.Hour,
		},
		Uploads: config.UploadConfig{MaxImageBytes: 1 << 20},
	}
}

func newTestStore() (*memory.DB, *repository.Store) {
	db := memory.New()
	return db, memory.NewStore(db)
}

func testImage() *utils.Image {
	return &utils.Image{Payload: "iVBORw0KGgo=", MimeType: "image/png", Size: 8}
}

func validProductInput() *ProductInput {
	return &ProductInput{
		Name:        ptr("Darjeeling"),
		Description: ptr("First flush"),
		Mrp:         ptr(200.0),
		Discount:    ptr(10.0),
		Category:    ptr("Tea"),
		Stock:       ptr(12),
		Image:       testImage(),
	}
}

// recordingPublisher keeps every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
