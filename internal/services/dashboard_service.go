// internal/services/dashboard_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/balaguruva/admin-backend/internal/dashboard"
	"github.com/balaguruva/admin-backend/internal/repository"
)

const dashboardStatsKey = "dashboard:stats"

// StatsCache stores the last computed summary.
type StatsCache interface {
	Get(ctx context.Context) (*dashboard.Summary, error)
	Set(ctx context.Context, summary *dashboard.Summary) error
	Invalidate(ctx context.Context) error
}

var errCacheMiss = errors.New("cache miss")

type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context) (*dashboard.Summary, error) {
	val, err := c.rdb.Get(ctx, dashboardStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, fmt.Errorf("failed to read stats cache: %w", err)
	}

	var summary dashboard.Summary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &summary, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, summary *dashboard.Summary) error {
	val, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return c.rdb.Set(ctx, dashboardStatsKey, val, c.ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, dashboardStatsKey).Err()
}

type DashboardService struct {
	store *repository.Store
	cache StatsCache
	now   func() time.Time

	// generation moves on every invalidation. A summary computed across a
	// move is returned but never cached.
	generation atomic.Uint64
}

// NewDashboardService takes a nil cache to always compute fresh stats.
func NewDashboardService(store *repository.Store, cache StatsCache) *DashboardService {
	return &DashboardService{
		store: store,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*dashboard.Summary, error) {
	if s.cache != nil {
		summary, err := s.cache.Get(ctx)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, errCacheMiss) {
			logrus.WithError(err).Warn("Stats cache unavailable")
		}
	}

	generation := s.generation.Load()

	var data dashboard.Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, _, err := s.store.Products.List(gctx, repository.ProductFilter{})
		data.Products = products
		return err
	})
	g.Go(func() error {
		orders, _, err := s.store.Orders.List(gctx, repository.OrderFilter{})
		data.Orders = orders
		return err
	})
	g.Go(func() error {
		users, err := s.store.Users.ListSummaries(gctx)
		data.Users = users
		return err
	})
	g.Go(func() error {
		contacts, err := s.store.Contacts.ListActive(gctx, s.now())
		data.Contacts = contacts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard data: %w", err)
	}

	summary := dashboard.Summarize(data, s.now())

	if s.cache != nil && s.generation.Load() == generation {
		if err := s.cache.Set(ctx, &summary); err != nil {
			logrus.WithError(err).Warn("Failed to cache stats")
		}
	}
	return &summary, nil
}

// Publish implements EventPublisher: any catalog, order or contact change
// drops the cached stats.
func (s *DashboardService) Publish(ctx context.Context, event Event) error {
	s.generation.Add(1)
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}
