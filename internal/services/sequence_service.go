// internal/services/sequence_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
)

// SequenceService hands out public product numbers. Uniqueness rests on the
// storage layer's atomic increment; nothing here locks.
type SequenceService struct {
	counters repository.CounterRepository
	products repository.ProductRepository
}

func NewSequenceService(store *repository.Store) *SequenceService {
	return &SequenceService{
		counters: store.Counters,
		products: store.Products,
	}
}

func (s *SequenceService) NextProductID(ctx context.Context) (int64, error) {
	id, err := s.counters.Increment(ctx, models.ProductCounter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate product id: %w", err)
	}
	return id, nil
}

// Reconcile raises the counter to the highest number ever assigned, live or
// archived. It never lowers the counter.
func (s *SequenceService) Reconcile(ctx context.Context) (int64, error) {
	highest, err := s.products.MaxNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read highest product id: %w", err)
	}

	seq, err := s.counters.RaiseTo(ctx, models.ProductCounter, highest)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile product counter: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"highest_product_id": highest,
		"counter":            seq,
	}).Info("Product id counter reconciled")

	return seq, nil
}
