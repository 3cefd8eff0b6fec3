// internal/repository/product.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balaguruva/admin-backend/internal/database"
	"github.com/balaguruva/admin-backend/internal/models"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if len(filter.Categories) > 0 {
		query = query.Where("category = ANY(?)", pq.Array(filter.Categories))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order("number ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, id uuid.UUID, apply func(*models.Product) error) (*models.Product, error) {
	var product models.Product

	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := apply(&product); err != nil {
			return err
		}

		if err := tx.Model(&product).
			Select("name", "description", "mrp", "discount", "discounted_price", "category", "image", "image_type", "stock", "updated_at").
			Updates(&product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) Archive(ctx context.Context, id uuid.UUID, archivedAt time.Time) (*models.DeletedProduct, error) {
	var archived *models.DeletedProduct

	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		archived = models.NewDeletedProduct(&product, archivedAt)
		if err := tx.Create(archived).Error; err != nil {
			return fmt.Errorf("failed to archive product: %w", err)
		}

		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return archived, nil
}

func (r *productRepository) ListArchived(ctx context.Context) ([]models.DeletedProduct, error) {
	var archived []models.DeletedProduct
	if err := r.db.WithContext(ctx).Order("archived_at DESC").Find(&archived).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch deleted products: %w", err)
	}
	return archived, nil
}

// MaxNumber returns the highest product number ever handed out, live or archived.
func (r *productRepository) MaxNumber(ctx context.Context) (int64, error) {
	var live, archived int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(MAX(number), 0)").Scan(&live).Error; err != nil {
		return 0, fmt.Errorf("failed to read max product number: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.DeletedProduct{}).
		Select("COALESCE(MAX(number), 0)").Scan(&archived).Error; err != nil {
		return 0, fmt.Errorf("failed to read max archived product number: %w", err)
	}

	if archived > live {
		return archived, nil
	}
	return live, nil
}
