// internal/repository/user.go
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/balaguruva/admin-backend/internal/models"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("COALESCE(NULLIF(name, ''), ?) AS name, email, created_at", models.DefaultUserName).
		Order("created_at DESC").
		Scan(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) ListActive(ctx context.Context, now time.Time) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Where("expires_at > ?", now).
		Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Contact{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge contacts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// NewGormStore wires every repository onto one gorm handle.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Counters: NewCounterRepository(db),
		Products: NewProductRepository(db),
		Orders:   NewOrderRepository(db),
		Users:    NewUserRepository(db),
		Contacts: NewContactRepository(db),
	}
}
