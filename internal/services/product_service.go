// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type ProductService struct {
	products  repository.ProductRepository
	sequence  *SequenceService
	storage   *StorageService
	publisher EventPublisher
}

// ProductInput carries the fields of a create or update request. Nil means
// the field was not sent.
type ProductInput struct {
	Name            *string      `validate:"required,min=1,max=255"`
	Description     *string      `validate:"required,min=1"`
	Mrp             *float64     `validate:"required,gte=0"`
	Discount        *float64     `validate:"required,gte=0,lte=100"`
	DiscountedPrice *float64     `validate:"omitempty,gte=0"`
	Category        *string      `validate:"required,min=1,max=100"`
	Stock           *int         `validate:"required,gte=0"`
	Image           *utils.Image `validate:"-"`
}

// ProductResponse exposes the stored image as a data URI.
type ProductResponse struct {
	*models.Product
	Image string `json:"image"`
}

type DeletedProductResponse struct {
	*models.DeletedProduct
	Image string `json:"image"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{Product: p, Image: p.ImageDataURI()}
}

func NewProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = NewProductResponse(&products[i])
	}
	return out
}

func NewDeletedProductResponses(archived []models.DeletedProduct) []DeletedProductResponse {
	out := make([]DeletedProductResponse, len(archived))
	for i := range archived {
		out[i] = DeletedProductResponse{DeletedProduct: &archived[i], Image: archived[i].ImageDataURI()}
	}
	return out
}

func NewProductService(store *repository.Store, sequence *SequenceService, storage *StorageService, publisher EventPublisher) *ProductService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ProductService{
		products:  store.Products,
		sequence:  sequence,
		storage:   storage,
		publisher: publisher,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *ProductInput) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Image == nil {
		return nil, ErrImageRequired
	}

	discounted := discountedPrice(*req.Mrp, *req.Discount)
	if req.DiscountedPrice != nil {
		discounted = *req.DiscountedPrice
	}

	number, err := s.sequence.NextProductID(ctx)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Number:          number,
		Name:            *req.Name,
		Description:     *req.Description,
		Mrp:             *req.Mrp,
		Discount:        *req.Discount,
		DiscountedPrice: discounted,
		Category:        *req.Category,
		Image:           req.Image.Payload,
		ImageType:       req.Image.MimeType,
		Stock:           *req.Stock,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type: EventProductCreated,
		Key:  product.ID.String(),
		At:   product.CreatedAt,
		Payload: map[string]interface{}{
			"_id":   product.ID,
			"id":    product.Number,
			"stock": product.Stock,
		},
	})

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"number":     product.Number,
	}).Info("Product created")

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return product, nil
}

// UpdateProduct merges the supplied fields over the stored product while it
// is locked, so concurrent checkouts keep their stock reservations. The
// public number never changes. When price or discount move without an
// explicit discounted price, the discounted price is recomputed.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductInput) (*models.Product, error) {
	product, err := s.products.Update(ctx, id, func(product *models.Product) error {
		return mergeProduct(product, req)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type: EventProductUpdated,
		Key:  product.ID.String(),
		At:   product.UpdatedAt,
		Payload: map[string]interface{}{
			"_id":   product.ID,
			"id":    product.Number,
			"stock": product.Stock,
		},
	})

	return product, nil
}

func mergeProduct(product *models.Product, req *ProductInput) error {
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	repriced := false
	if req.Mrp != nil {
		product.Mrp = *req.Mrp
		repriced = true
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
		repriced = true
	}
	switch {
	case req.DiscountedPrice != nil:
		product.DiscountedPrice = *req.DiscountedPrice
	case repriced:
		product.DiscountedPrice = discountedPrice(product.Mrp, product.Discount)
	}
	if req.Image != nil {
		product.Image = req.Image.Payload
		product.ImageType = req.Image.MimeType
	}

	merged := &ProductInput{
		Name:            &product.Name,
		Description:     &product.Description,
		Mrp:             &product.Mrp,
		Discount:        &product.Discount,
		DiscountedPrice: &product.DiscountedPrice,
		Category:        &product.Category,
		Stock:           &product.Stock,
	}
	if err := utils.ValidateStruct(merged); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// DeleteProduct moves the product into the archive and returns its id.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	archived, err := s.products.Archive(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, ErrProductNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if key, err := s.storage.PutArchiveSnapshot(ctx, archived); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Failed to copy archived product to object storage")
	} else if key != "" {
		logrus.WithField("key", key).Debug("Archived product copied to object storage")
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type: EventProductArchived,
		Key:  id.String(),
		At:   archived.ArchivedAt,
		Payload: map[string]interface{}{
			"_id":  id,
			"id":   archived.Number,
			"name": archived.Name,
		},
	})

	logrus.WithFields(logrus.Fields{
		"product_id": id,
		"number":     archived.Number,
	}).Info("Product archived")

	return id, nil
}

func (s *ProductService) ListArchived(ctx context.Context) ([]models.DeletedProduct, error) {
	archived, err := s.products.ListArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted products: %w", err)
	}
	return archived, nil
}

// discountedPrice returns mrp less discount percent, rounded to cents.
func discountedPrice(mrp, discount float64) float64 {
	price := decimal.NewFromFloat(mrp)
	off := price.Mul(decimal.NewFromFloat(discount)).Div(decimal.NewFromInt(100))
	return price.Sub(off).Round(2).InexactFloat64()
}
