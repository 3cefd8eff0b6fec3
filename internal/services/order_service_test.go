package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/repository/memory"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db        *memory.DB
	store     *repository.Store
	publisher *recordingPublisher
	service   *OrderService
	userID    uuid.UUID
	tea       models.Product
	coffee    models.Product
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db, suite.store = newTestStore()
	suite.publisher = &recordingPublisher{}
	suite.service = NewOrderService(suite.store, testConfig(), suite.publisher)
	suite.userID = uuid.New()

	suite.tea = suite.db.SeedProduct(models.Product{Number: 1, Name: "Tea", Mrp: 120, DiscountedPrice: 100, Stock: 10})
	suite.coffee = suite.db.SeedProduct(models.Product{Number: 2, Name: "Coffee", Mrp: 300, DiscountedPrice: 249.5, Stock: 5})
}

func (suite *OrderServiceTestSuite) request(payment models.PaymentMethod, delivery models.DeliveryMethod, items ...OrderItemRequest) *CreateOrderRequest {
	return &CreateOrderRequest{
		Items: items,
		ShippingAddress: ShippingAddressRequest{
			FullName:     "Asha Rao",
			Phone:        "+91 98450 00000",
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			State:        "Karnataka",
			PostalCode:   "560001",
			Country:      "India",
		},
		DeliveryMethod: delivery,
		PaymentMethod:  payment,
	}
}

func (suite *OrderServiceTestSuite) stock(id uuid.UUID) int {
	p, err := suite.store.Products.GetByID(context.Background(), id)
	suite.Require().NoError(err)
	return p.Stock
}

func (suite *OrderServiceTestSuite) placeOrder(payment models.PaymentMethod) *models.Order {
	order, err := suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		payment, models.DeliveryMethodStandard,
		OrderItemRequest{ProductID: suite.tea.ID, Quantity: 2},
		OrderItemRequest{ProductID: suite.coffee.ID, Quantity: 3},
	))
	suite.Require().NoError(err)
	return order
}

func (suite *OrderServiceTestSuite) setStatus(scope OrderScope, id uuid.UUID, status models.OrderStatus) (*models.Order, bool, error) {
	return suite.service.UpdateStatus(context.Background(), scope, id, &UpdateOrderStatusRequest{Status: status})
}

func (suite *OrderServiceTestSuite) TestCreateOrderSnapshotsPricesAndReservesStock() {
	order, err := suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		models.PaymentMethodGateway, models.DeliveryMethodExpress,
		OrderItemRequest{ProductID: suite.tea.ID, Quantity: 1},
		OrderItemRequest{ProductID: suite.coffee.ID, Quantity: 2},
		OrderItemRequest{ProductID: suite.tea.ID, Quantity: 1},
	))
	suite.Require().NoError(err)

	suite.Len(order.Items, 2)
	suite.Equal(2, order.Items[0].Quantity)
	suite.Equal(int64(1), order.Items[0].ProductNumber)
	suite.Equal("Coffee", order.Items[1].Name)
	suite.Equal(249.5, order.Items[1].Price)

	suite.Equal(699.0, order.Subtotal)
	suite.Equal(99.0, order.DeliveryPrice)
	suite.Equal(798.0, order.TotalPrice)
	suite.Equal(models.OrderStatusProcessing, order.OrderStatus)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.Len(order.StatusHistory, 1)
	suite.NotEmpty(order.OrderRef)

	suite.Equal(8, suite.stock(suite.tea.ID))
	suite.Equal(3, suite.stock(suite.coffee.ID))
	suite.Equal([]string{EventOrderCreated}, suite.publisher.types())
}

func (suite *OrderServiceTestSuite) TestCreateOrderInsufficientStockChangesNothing() {
	_, err := suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		models.PaymentMethodCashOnDelivery, models.DeliveryMethodStandard,
		OrderItemRequest{ProductID: suite.tea.ID, Quantity: 4},
		OrderItemRequest{ProductID: suite.coffee.ID, Quantity: 6},
	))
	suite.ErrorIs(err, ErrInsufficientStock)
	suite.Equal(10, suite.stock(suite.tea.ID))
	suite.Equal(5, suite.stock(suite.coffee.ID))
	suite.Empty(suite.publisher.types())
}

func (suite *OrderServiceTestSuite) TestCreateOrderUnknownProduct() {
	_, err := suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		models.PaymentMethodCashOnDelivery, models.DeliveryMethodStandard,
		OrderItemRequest{ProductID: uuid.New(), Quantity: 1},
	))
	suite.ErrorIs(err, ErrProductNotFound)
}

func (suite *OrderServiceTestSuite) TestCreateOrderValidation() {
	_, err := suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		"barter", models.DeliveryMethodStandard,
		OrderItemRequest{ProductID: suite.tea.ID, Quantity: 1},
	))
	suite.True(utils.IsValidationError(err))

	_, err = suite.service.CreateOrder(context.Background(), suite.userID, suite.request(
		models.PaymentMethodUPI, models.DeliveryMethodStandard,
	))
	suite.True(utils.IsValidationError(err))
}

func (suite *OrderServiceTestSuite) TestCancelRestocksExactlyOnce() {
	order := suite.placeOrder(models.PaymentMethodCashOnDelivery)
	suite.Equal(8, suite.stock(suite.tea.ID))
	suite.Equal(2, suite.stock(suite.coffee.ID))

	cancelled, changed, err := suite.setStatus(OrderScope{}, order.ID, models.OrderStatusCancelled)
	suite.Require().NoError(err)
	suite.True(changed)
	suite.Equal(models.OrderStatusCancelled, cancelled.OrderStatus)
	suite.Equal(models.PaymentStatusFailed, cancelled.PaymentStatus)
	suite.Len(cancelled.StatusHistory, 2)
	suite.Equal(10, suite.stock(suite.tea.ID))
	suite.Equal(5, suite.stock(suite.coffee.ID))

	again, changed, err := suite.setStatus(OrderScope{}, order.ID, models.OrderStatusCancelled)
	suite.Require().NoError(err)
	suite.False(changed)
	suite.Len(again.StatusHistory, 2)
	suite.Equal(10, suite.stock(suite.tea.ID))
	suite.Equal(5, suite.stock(suite.coffee.ID))

	suite.Equal([]string{EventOrderCreated, EventOrderStatusChanged}, suite.publisher.types())
}

func (suite *OrderServiceTestSuite) TestCashOnDeliveryCompletesOnDelivery() {
	order := suite.placeOrder(models.PaymentMethodCashOnDelivery)

	shipped, _, err := suite.setStatus(OrderScope{}, order.ID, models.OrderStatusShipped)
	suite.Require().NoError(err)
	suite.Equal(models.PaymentStatusPending, shipped.PaymentStatus)

	delivered, changed, err := suite.setStatus(OrderScope{}, order.ID, models.OrderStatusDelivered)
	suite.Require().NoError(err)
	suite.True(changed)
	suite.Equal(models.PaymentStatusCompleted, delivered.PaymentStatus)

	stored, err := suite.service.GetOrder(context.Background(), OrderScope{}, order.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusDelivered, stored.OrderStatus)
	suite.Len(stored.StatusHistory, 3)
}

func (suite *OrderServiceTestSuite) TestCancelPaidOrderFlagsRefund() {
	seeded := suite.db.SeedOrder(models.Order{
		UserID:        &suite.userID,
		OrderRef:      "paid-1",
		PaymentMethod: models.PaymentMethodGateway,
		PaymentStatus: models.PaymentStatusCompleted,
		OrderStatus:   models.OrderStatusShipped,
		Items:         []models.OrderItem{{ProductID: suite.tea.ID, Quantity: 3}},
	})

	cancelled, changed, err := suite.setStatus(OrderScope{}, seeded.ID, models.OrderStatusCancelled)
	suite.Require().NoError(err)
	suite.True(changed)
	suite.True(cancelled.RefundRequired)
	suite.Equal(models.PaymentStatusCompleted, cancelled.PaymentStatus)
	suite.Equal(13, suite.stock(suite.tea.ID))
}

func (suite *OrderServiceTestSuite) TestInvalidTransition() {
	order := suite.placeOrder(models.PaymentMethodUPI)
	_, _, err := suite.setStatus(OrderScope{}, order.ID, models.OrderStatusDelivered)
	suite.Require().NoError(err)

	_, _, err = suite.setStatus(OrderScope{}, order.ID, models.OrderStatusCancelled)
	suite.ErrorIs(err, ErrInvalidTransition)
	suite.Equal(8, suite.stock(suite.tea.ID))

	_, _, err = suite.setStatus(OrderScope{}, order.ID, "lost")
	suite.True(utils.IsValidationError(err))
}

func (suite *OrderServiceTestSuite) TestScopeHidesOtherUsersOrders() {
	order := suite.placeOrder(models.PaymentMethodCashOnDelivery)
	stranger := uuid.New()
	scope := OrderScope{UserID: &stranger}

	_, err := suite.service.GetOrder(context.Background(), scope, order.ID)
	suite.ErrorIs(err, ErrOrderNotFound)

	_, _, err = suite.setStatus(scope, order.ID, models.OrderStatusCancelled)
	suite.ErrorIs(err, ErrOrderNotFound)
	suite.Equal(8, suite.stock(suite.tea.ID))

	mine, total, err := suite.service.ListOrders(context.Background(), OrderScope{UserID: &suite.userID}, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(mine, 1)

	theirs, _, err := suite.service.ListOrders(context.Background(), scope, nil)
	suite.Require().NoError(err)
	suite.Empty(theirs)
}

func (suite *OrderServiceTestSuite) TestListOrdersPaginates() {
	for i := 0; i < 3; i++ {
		suite.db.SeedOrder(models.Order{UserID: &suite.userID, OrderRef: uuid.NewString()})
	}

	page, total, err := suite.service.ListOrders(context.Background(), OrderScope{}, &utils.PaginationParams{Page: 2, Limit: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(page, 1)
}

func (suite *OrderServiceTestSuite) TestUnknownOrder() {
	_, _, err := suite.setStatus(OrderScope{}, uuid.New(), models.OrderStatusShipped)
	suite.ErrorIs(err, ErrOrderNotFound)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	db, store := newTestStore()
	tea := db.SeedProduct(models.Product{Number: 1, Name: "Tea", DiscountedPrice: 10, Stock: 1})
	publisher := &recordingPublisher{err: assert.AnError}
	svc := NewOrderService(store, testConfig(), publisher)

	order, err := svc.CreateOrder(context.Background(), uuid.New(), &CreateOrderRequest{
		Items: []OrderItemRequest{{ProductID: tea.ID, Quantity: 1}},
		ShippingAddress: ShippingAddressRequest{
			FullName: "A", Phone: "1", AddressLine1: "x", City: "c", State: "s", PostalCode: "1", Country: "IN",
		},
		DeliveryMethod: models.DeliveryMethodStandard,
		PaymentMethod:  models.PaymentMethodCashOnDelivery,
	})
	assert.NoError(t, err)
	assert.Equal(t, 10.0, order.TotalPrice)
	assert.Len(t, publisher.types(), 1)
}
