// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/balaguruva/admin-backend/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows product listings. A zero Limit returns every row.
type ProductFilter struct {
	Categories []string
	Offset     int
	Limit      int
}

type OrderFilter struct {
	UserID *uuid.UUID
	Offset int
	Limit  int
}

// StockChange adjusts the stock of one product by Delta.
type StockChange struct {
	ProductID uuid.UUID
	Delta     int
}

// TransitionFunc mutates a locked order and returns the stock changes to
// apply in the same unit of work.
type TransitionFunc func(order *models.Order) ([]StockChange, error)

type CounterRepository interface {
	// Increment atomically adds one to the named counter and returns the new value.
	Increment(ctx context.Context, name string) (int64, error)
	// RaiseTo sets the counter to max(current, floor) and returns the result.
	RaiseTo(ctx context.Context, name string, floor int64) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// Update locks the product, lets apply merge changes into the fresh row
	// and writes it back as one unit. Stock read by apply is current.
	Update(ctx context.Context, id uuid.UUID, apply func(*models.Product) error) (*models.Product, error)
	// Archive copies the product into the archive and removes it from the live
	// catalog as one unit.
	Archive(ctx context.Context, id uuid.UUID, archivedAt time.Time) (*models.DeletedProduct, error)
	ListArchived(ctx context.Context) ([]models.DeletedProduct, error)
	MaxNumber(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	// Create locks every referenced product, snapshots name, number and
	// price onto the line items, reserves stock, runs finalize and stores the
	// order, all as one unit.
	Create(ctx context.Context, order *models.Order, finalize func(*models.Order) error) error
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Transition(ctx context.Context, id uuid.UUID, fn TransitionFunc) (*models.Order, error)
}

type UserRepository interface {
	ListSummaries(ctx context.Context) ([]models.UserSummary, error)
}

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	ListActive(ctx context.Context, now time.Time) ([]models.Contact, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Store bundles every repository backed by the same database.
type Store struct {
	Counters CounterRepository
	Products ProductRepository
	Orders   OrderRepository
	Users    UserRepository
	Contacts ContactRepository
}
