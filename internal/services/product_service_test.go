package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type fakeS3 struct {
	s3iface.S3API

	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[aws.StringValue(input.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func newProductService(store *repository.Store, storage *StorageService, publisher EventPublisher) *ProductService {
	return NewProductService(store, NewSequenceService(store), storage, publisher)
}

func TestCreateProduct(t *testing.T) {
	_, store := newTestStore()
	svc := newProductService(store, &StorageService{}, nil)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Number)
	assert.Equal(t, 180.0, first.DiscountedPrice)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", NewProductResponse(first).Image)

	input := validProductInput()
	input.DiscountedPrice = ptr(150.0)
	second, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Number)
	assert.Equal(t, 150.0, second.DiscountedPrice)
}

func TestCreateProductValidation(t *testing.T) {
	_, store := newTestStore()
	svc := newProductService(store, &StorageService{}, nil)
	ctx := context.Background()

	input := validProductInput()
	input.Name = nil
	_, err := svc.CreateProduct(ctx, input)
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))

	input = validProductInput()
	input.Discount = ptr(120.0)
	_, err = svc.CreateProduct(ctx, input)
	assert.True(t, utils.IsValidationError(err))

	input = validProductInput()
	input.Image = nil
	_, err = svc.CreateProduct(ctx, input)
	assert.ErrorIs(t, err, ErrImageRequired)

	// Rejected requests never consume a number.
	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Number)
}

func TestUpdateProductMergesFields(t *testing.T) {
	_, store := newTestStore()
	svc := newProductService(store, &StorageService{}, nil)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, created.ID, &ProductInput{Discount: ptr(25.0)})
	require.NoError(t, err)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, "Darjeeling", updated.Name)
	assert.Equal(t, 150.0, updated.DiscountedPrice)

	updated, err = svc.UpdateProduct(ctx, created.ID, &ProductInput{Stock: ptr(0), Category: ptr("Green Tea")})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, 150.0, updated.DiscountedPrice)

	_, err = svc.UpdateProduct(ctx, created.ID, &ProductInput{Stock: ptr(-1)})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.UpdateProduct(ctx, uuid.New(), &ProductInput{Stock: ptr(1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// checkoutDuringUpdate places an order for the product just before the
// update reaches the repository.
type checkoutDuringUpdate struct {
	repository.ProductRepository
	checkout func()
	once     sync.Once
}

func (r *checkoutDuringUpdate) Update(ctx context.Context, id uuid.UUID, apply func(*models.Product) error) (*models.Product, error) {
	r.once.Do(r.checkout)
	return r.ProductRepository.Update(ctx, id, apply)
}

func TestUpdateProductKeepsConcurrentReservations(t *testing.T) {
	_, store := newTestStore()
	ctx := context.Background()

	input := validProductInput()
	input.Stock = ptr(10)
	created, err := newProductService(store, &StorageService{}, nil).CreateProduct(ctx, input)
	require.NoError(t, err)

	orders := NewOrderService(store, testConfig(), nil)
	racing := &checkoutDuringUpdate{ProductRepository: store.Products}
	racing.checkout = func() {
		_, err := orders.CreateOrder(ctx, uuid.New(), &CreateOrderRequest{
			Items: []OrderItemRequest{{ProductID: created.ID, Quantity: 4}},
			ShippingAddress: ShippingAddressRequest{
				FullName:     "Asha Rao",
				Phone:        "+91 98450 00000",
				AddressLine1: "12 MG Road",
				City:         "Bengaluru",
				State:        "Karnataka",
				PostalCode:   "560001",
				Country:      "India",
			},
			DeliveryMethod: models.DeliveryMethodStandard,
			PaymentMethod:  models.PaymentMethodCashOnDelivery,
		})
		require.NoError(t, err)
	}

	raced := *store
	raced.Products = racing
	svc := newProductService(&raced, &StorageService{}, nil)

	updated, err := svc.UpdateProduct(ctx, created.ID, &ProductInput{Name: ptr("Darjeeling Reserve")})
	require.NoError(t, err)
	assert.Equal(t, "Darjeeling Reserve", updated.Name)
	assert.Equal(t, 6, updated.Stock)

	stored, err := store.Products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Stock)
}

func TestProductChangesPublishEvents(t *testing.T) {
	_, store := newTestStore()
	publisher := &recordingPublisher{}
	svc := newProductService(store, &StorageService{}, publisher)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)
	_, err = svc.UpdateProduct(ctx, created.ID, &ProductInput{Stock: ptr(3)})
	require.NoError(t, err)

	// Rejected updates publish nothing.
	_, err = svc.UpdateProduct(ctx, created.ID, &ProductInput{Stock: ptr(-1)})
	require.Error(t, err)

	assert.Equal(t, []string{EventProductCreated, EventProductUpdated}, publisher.types())
	assert.Equal(t, created.ID.String(), publisher.events[1].Key)
}

func TestDeleteProductArchives(t *testing.T) {
	_, store := newTestStore()
	bucket := &fakeS3{}
	publisher := &recordingPublisher{}
	svc := newProductService(store, NewStorageServiceWithClient(bucket, "archive"), publisher)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)

	deletedID, err := svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deletedID)

	_, err = svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	archived, err := svc.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, created.ID.String(), archived[0].ProductID)
	assert.Equal(t, created.Number, archived[0].Number)
	assert.Equal(t, created.Image, archived[0].Image)
	assert.False(t, archived[0].ArchivedAt.IsZero())

	require.Len(t, bucket.puts, 1)
	for key, body := range bucket.puts {
		assert.Contains(t, key, "deleted-products/")
		assert.Contains(t, string(body), `"image":"data:image/png;base64,iVBORw0KGgo="`)
	}
	assert.Equal(t, []string{EventProductCreated, EventProductArchived}, publisher.types())

	_, err = svc.DeleteProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProductSurvivesStorageFailure(t *testing.T) {
	_, store := newTestStore()
	svc := newProductService(store, NewStorageServiceWithClient(&fakeS3{err: errors.New("bucket gone")}, "archive"), nil)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validProductInput())
	require.NoError(t, err)

	_, err = svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)

	archived, err := svc.ListArchived(ctx)
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestArchiveKey(t *testing.T) {
	storage := NewStorageServiceWithClient(&fakeS3{}, "archive")
	assert.True(t, storage.Enabled())
	assert.False(t, (&StorageService{}).Enabled())

	var disabled *StorageService
	key, err := disabled.PutArchiveSnapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, key)

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	archived := &models.DeletedProduct{Number: 12, ArchivedAt: at}
	assert.Equal(t, "deleted-products/2026/02/03/12-2026-02-03T04:05:06Z.json", archiveKey(archived))
}

func TestDiscountedPrice(t *testing.T) {
	assert.Equal(t, 180.0, discountedPrice(200, 10))
	assert.Equal(t, 66.66, discountedPrice(99.99, 33.33))
	assert.Equal(t, 0.0, discountedPrice(50, 100))
}
