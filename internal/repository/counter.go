// internal/repository/counter.go
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Increment relies on a single upsert statement so concurrent callers are
// serialized by the row lock Postgres takes on the counter.
func (r *counterRepository) Increment(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO counters (name, seq) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`, name,
	).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", name, err)
	}
	return seq, nil
}

func (r *counterRepository) RaiseTo(ctx context.Context, name string, floor int64) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO counters (name, seq) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET seq = GREATEST(counters.seq, EXCLUDED.seq)
		 RETURNING seq`, name, floor,
	).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile counter %s: %w", name, err)
	}
	return seq, nil
}
