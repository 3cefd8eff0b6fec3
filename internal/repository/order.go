// internal/repository/order.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balaguruva/admin-backend/internal/database"
	"github.com/balaguruva/admin-backend/internal/models"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order, finalize func(*models.Order) error) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]

			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.Stock < item.Quantity {
				return fmt.Errorf("%w for product: %s", ErrInsufficientStock, product.Name)
			}

			item.ProductNumber = product.Number
			item.Name = product.Name
			item.Price = product.DiscountedPrice

			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
		}

		if finalize != nil {
			if err := finalize(order); err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.load(r.db.WithContext(ctx), id, false)
}

func (r *orderRepository) Transition(ctx context.Context, id uuid.UUID, fn TransitionFunc) (*models.Order, error) {
	var order *models.Order

	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		var err error
		order, err = r.load(tx, id, true)
		if err != nil {
			return err
		}

		historyLen := len(order.StatusHistory)
		changes, err := fn(order)
		if err != nil {
			return err
		}

		for _, change := range changes {
			// Products deleted since checkout are skipped.
			if err := tx.Model(&models.Product{}).Where("id = ?", change.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", change.Delta)).Error; err != nil {
				return fmt.Errorf("failed to restock product %s: %w", change.ProductID, err)
			}
		}

		if len(order.StatusHistory) == historyLen {
			return nil
		}

		if err := tx.Model(order).Select("order_status", "payment_status", "refund_required", "updated_at").
			Updates(order).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		for i := historyLen; i < len(order.StatusHistory); i++ {
			if err := tx.Create(&order.StatusHistory[i]).Error; err != nil {
				return fmt.Errorf("failed to record status history: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) load(db *gorm.DB, id uuid.UUID, lock bool) (*models.Order, error) {
	query := db.Preload("Items").Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	})
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}})
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}
