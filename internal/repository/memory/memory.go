// internal/repository/memory/memory.go

// Package memory keeps every repository in process memory. It backs
// DB_DRIVER=memory for local development and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
)

// DB is the shared state behind the memory repositories. One mutex guards
// everything so multi-record operations are atomic like a transaction.
type DB struct {
	mu       sync.Mutex
	counters map[string]int64
	products map[uuid.UUID]models.Product
	archived []models.DeletedProduct
	orders   map[uuid.UUID]models.Order
	users    []models.User
	contacts []models.Contact
}

func New() *DB {
	return &DB{
		counters: make(map[string]int64),
		products: make(map[uuid.UUID]models.Product),
		orders:   make(map[uuid.UUID]models.Order),
	}
}

// NewStore returns repositories sharing one DB.
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Counters: &counterRepository{db},
		Products: &productRepository{db},
		Orders:   &orderRepository{db},
		Users:    &userRepository{db},
		Contacts: &contactRepository{db},
	}
}

// SeedUser inserts a user as the storefront registration flow would.
func (db *DB) SeedUser(user models.User) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	stamp(&user.BaseModel)
	if user.Name == "" {
		user.Name = models.DefaultUserName
	}
	db.users = append(db.users, user)
	return user
}

// SeedProduct stores a product as-is, bypassing the counter.
func (db *DB) SeedProduct(product models.Product) models.Product {
	db.mu.Lock()
	defer db.mu.Unlock()

	stamp(&product.BaseModel)
	db.products[product.ID] = product
	return product
}

// SeedOrder stores an order without touching stock.
func (db *DB) SeedOrder(order models.Order) models.Order {
	db.mu.Lock()
	defer db.mu.Unlock()

	stamp(&order.BaseModel)
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	db.orders[order.ID] = cloneOrder(order)
	return order
}

func stamp(b *models.BaseModel) {
	now := time.Now()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	o.StatusHistory = append([]models.StatusChange(nil), o.StatusHistory...)
	return o
}

func page[T any](rows []T, offset, limit int) []T {
	if limit <= 0 {
		return rows
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

type counterRepository struct{ db *DB }

func (r *counterRepository) Increment(ctx context.Context, name string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.counters[name]++
	return r.db.counters[name], nil
}

func (r *counterRepository) RaiseTo(ctx context.Context, name string, floor int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.counters[name] < floor {
		r.db.counters[name] = floor
	}
	return r.db.counters[name], nil
}

type productRepository struct{ db *DB }

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.products {
		if existing.Number == product.Number {
			return fmt.Errorf("failed to create product: duplicate number %d", product.Number)
		}
	}

	stamp(&product.BaseModel)
	r.db.products[product.ID] = *product
	return nil
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	wanted := make(map[string]bool, len(filter.Categories))
	for _, c := range filter.Categories {
		wanted[c] = true
	}

	products := make([]models.Product, 0, len(r.db.products))
	for _, p := range r.db.products {
		if len(wanted) > 0 && !wanted[p.Category] {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Number < products[j].Number })

	return page(products, filter.Offset, filter.Limit), int64(len(products)), nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, id uuid.UUID, apply func(*models.Product) error) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	product := existing
	if err := apply(&product); err != nil {
		return nil, err
	}

	product.ID = existing.ID
	product.Number = existing.Number
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.db.products[id] = product

	out := product
	return &out, nil
}

func (r *productRepository) Archive(ctx context.Context, id uuid.UUID, archivedAt time.Time) (*models.DeletedProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	archived := models.NewDeletedProduct(&p, archivedAt)
	stamp(&archived.BaseModel)
	r.db.archived = append(r.db.archived, *archived)
	delete(r.db.products, id)

	return archived, nil
}

func (r *productRepository) ListArchived(ctx context.Context) ([]models.DeletedProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	archived := append([]models.DeletedProduct(nil), r.db.archived...)
	sort.SliceStable(archived, func(i, j int) bool {
		return archived[i].ArchivedAt.After(archived[j].ArchivedAt)
	})
	return archived, nil
}

func (r *productRepository) MaxNumber(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var highest int64
	for _, p := range r.db.products {
		if p.Number > highest {
			highest = p.Number
		}
	}
	for _, d := range r.db.archived {
		if d.Number > highest {
			highest = d.Number
		}
	}
	return highest, nil
}

type orderRepository struct{ db *DB }

func (r *orderRepository) Create(ctx context.Context, order *models.Order, finalize func(*models.Order) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	// Validate everything before mutating so a failure leaves stock untouched.
	reserved := make(map[uuid.UUID]int)
	for i := range order.Items {
		item := &order.Items[i]
		product, ok := r.db.products[item.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", item.ProductID, repository.ErrNotFound)
		}
		if product.Stock-reserved[product.ID] < item.Quantity {
			return fmt.Errorf("%w for product: %s", repository.ErrInsufficientStock, product.Name)
		}
		reserved[product.ID] += item.Quantity

		item.ProductNumber = product.Number
		item.Name = product.Name
		item.Price = product.DiscountedPrice
	}

	if finalize != nil {
		if err := finalize(order); err != nil {
			return err
		}
	}

	for id, qty := range reserved {
		product := r.db.products[id]
		product.Stock -= qty
		r.db.products[id] = product
	}

	stamp(&order.BaseModel)
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	for i := range order.StatusHistory {
		if order.StatusHistory[i].ID == uuid.Nil {
			order.StatusHistory[i].ID = uuid.New()
		}
		order.StatusHistory[i].OrderID = order.ID
	}
	r.db.orders[order.ID] = cloneOrder(*order)

	return nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	orders := make([]models.Order, 0, len(r.db.orders))
	for _, o := range r.db.orders {
		if filter.UserID != nil && (o.UserID == nil || *o.UserID != *filter.UserID) {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })

	return page(orders, filter.Offset, filter.Limit), int64(len(orders)), nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepository) Transition(ctx context.Context, id uuid.UUID, fn repository.TransitionFunc) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	order := cloneOrder(stored)
	changes, err := fn(&order)
	if err != nil {
		return nil, err
	}

	for _, change := range changes {
		product, ok := r.db.products[change.ProductID]
		if !ok {
			continue
		}
		product.Stock += change.Delta
		r.db.products[change.ProductID] = product
	}

	for i := len(stored.StatusHistory); i < len(order.StatusHistory); i++ {
		order.StatusHistory[i].ID = uuid.New()
		order.StatusHistory[i].OrderID = order.ID
	}
	if len(order.StatusHistory) != len(stored.StatusHistory) {
		order.UpdatedAt = time.Now()
	}
	r.db.orders[id] = cloneOrder(order)

	return &order, nil
}

type userRepository struct{ db *DB }

func (r *userRepository) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := make([]models.UserSummary, 0, len(r.db.users))
	for _, u := range r.db.users {
		name := u.Name
		if name == "" {
			name = models.DefaultUserName
		}
		users = append(users, models.UserSummary{Name: name, Email: u.Email, CreatedAt: u.CreatedAt})
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

type contactRepository struct{ db *DB }

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stamp(&contact.BaseModel)
	r.db.contacts = append(r.db.contacts, *contact)
	return nil
}

func (r *contactRepository) ListActive(ctx context.Context, now time.Time) ([]models.Contact, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	contacts := make([]models.Contact, 0, len(r.db.contacts))
	for _, c := range r.db.contacts {
		if c.ExpiresAt.After(now) {
			contacts = append(contacts, c)
		}
	}
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].CreatedAt.After(contacts[j].CreatedAt) })
	return contacts, nil
}

func (r *contactRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	kept := r.db.contacts[:0]
	var purged int64
	for _, c := range r.db.contacts {
		if c.ExpiresAt.After(now) {
			kept = append(kept, c)
			continue
		}
		purged++
	}
	r.db.contacts = kept
	return purged, nil
}
