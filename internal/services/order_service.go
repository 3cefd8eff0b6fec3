// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type OrderService struct {
	orders    repository.OrderRepository
	cfg       *config.Config
	publisher EventPublisher
	now       func() time.Time
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

type ShippingAddressRequest struct {
	FullName     string `json:"fullName" validate:"required,max=255"`
	Phone        string `json:"phone" validate:"required,max=30"`
	AddressLine1 string `json:"addressLine1" validate:"required,max=255"`
	AddressLine2 string `json:"addressLine2" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postalCode" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"orderItems" validate:"required,min=1,max=100,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	DeliveryMethod  models.DeliveryMethod  `json:"deliveryMethod" validate:"required,delivery_method"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod" validate:"required,payment_method"`
	Notes           string                 `json:"notes" validate:"max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,order_status"`
}

// OrderScope restricts an operation to the orders of one user. A nil scope
// reaches every order.
type OrderScope struct {
	UserID *uuid.UUID
}

func NewOrderService(store *repository.Store, cfg *config.Config, publisher EventPublisher) *OrderService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &OrderService{
		orders:    store.Orders,
		cfg:       cfg,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder reserves stock and stores the order with prices snapshotted
// from the catalog.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := s.now()
	order := &models.Order{
		UserID:   &userID,
		OrderRef: utils.GenerateOrderRef(now),
		Shipping: models.ShippingAddress{
			FullName:     req.ShippingAddress.FullName,
			Phone:        req.ShippingAddress.Phone,
			AddressLine1: req.ShippingAddress.AddressLine1,
			AddressLine2: req.ShippingAddress.AddressLine2,
			City:         req.ShippingAddress.City,
			State:        req.ShippingAddress.State,
			PostalCode:   req.ShippingAddress.PostalCode,
			Country:      req.ShippingAddress.Country,
		},
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
		OrderStatus:    models.OrderStatusProcessing,
		Notes:          req.Notes,
		StatusHistory: []models.StatusChange{
			{Status: models.OrderStatusProcessing, Timestamp: now},
		},
	}

	quantities := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		if _, seen := quantities[item.ProductID]; !seen {
			order.Items = append(order.Items, models.OrderItem{ProductID: item.ProductID})
		}
		quantities[item.ProductID] += item.Quantity
	}
	for i := range order.Items {
		order.Items[i].Quantity = quantities[order.Items[i].ProductID]
	}

	err := s.orders.Create(ctx, order, func(o *models.Order) error {
		s.priceOrder(o)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, err
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type:    EventOrderCreated,
		Key:     order.ID.String(),
		At:      now,
		Payload: orderEventPayload(order),
	})

	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"order_ref": order.OrderRef,
		"total":     order.TotalPrice,
	}).Info("Order created")

	return order, nil
}

// priceOrder computes subtotal, delivery and total from the snapshotted
// line item prices.
func (s *OrderService) priceOrder(o *models.Order) {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	delivery := decimal.NewFromFloat(s.cfg.Orders.StandardDeliveryPrice)
	if o.DeliveryMethod == models.DeliveryMethodExpress {
		delivery = decimal.NewFromFloat(s.cfg.Orders.ExpressDeliveryPrice)
	}

	o.Subtotal = subtotal.Round(2).InexactFloat64()
	o.DeliveryPrice = delivery.Round(2).InexactFloat64()
	o.TotalPrice = subtotal.Add(delivery).Round(2).InexactFloat64()
}

func (s *OrderService) ListOrders(ctx context.Context, scope OrderScope, params *utils.PaginationParams) ([]models.Order, int64, error) {
	filter := repository.OrderFilter{UserID: scope.UserID}
	if params != nil {
		filter.Offset = params.Offset()
		filter.Limit = params.Limit
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *OrderService) GetOrder(ctx context.Context, scope OrderScope, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if !scope.allows(order) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus runs the status machine on the locked order. Cancelling puts
// every line item back on stock in the same transaction. Asking for the
// current status changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, scope OrderScope, id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, bool, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, false, fmt.Errorf("validation failed: %w", err)
	}

	var transition *models.Transition
	order, err := s.orders.Transition(ctx, id, func(o *models.Order) ([]repository.StockChange, error) {
		if !scope.allows(o) {
			return nil, repository.ErrNotFound
		}

		t, err := o.ApplyStatus(req.Status, s.now())
		if err != nil {
			return nil, err
		}
		transition = t

		changes := make([]repository.StockChange, 0, len(t.Restock))
		for _, item := range t.Restock {
			changes = append(changes, repository.StockChange{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
			})
		}
		return changes, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, false, ErrOrderNotFound
		case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrUnknownOrderStatus):
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to update order status: %w", err)
	}

	if !transition.Changed {
		return order, false, nil
	}

	publishAfterCommit(ctx, s.publisher, Event{
		Type:    EventOrderStatusChanged,
		Key:     order.ID.String(),
		At:      order.UpdatedAt,
		Payload: orderEventPayload(order),
	})

	logrus.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"from":           transition.From,
		"to":             transition.To,
		"payment_status": order.PaymentStatus,
		"restocked":      len(transition.Restock),
	}).Info("Order status updated")

	return order, true, nil
}

func (sc OrderScope) allows(o *models.Order) bool {
	if sc.UserID == nil {
		return true
	}
	return o.UserID != nil && *o.UserID == *sc.UserID
}

func orderEventPayload(o *models.Order) map[string]interface{} {
	return map[string]interface{}{
		"_id":            o.ID,
		"orderRef":       o.OrderRef,
		"orderStatus":    o.OrderStatus,
		"paymentStatus":  o.PaymentStatus,
		"refundRequired": o.RefundRequired,
		"totalPrice":     o.TotalPrice,
	}
}
