// internal/models/order.go
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUnknownOrderStatus = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

type ShippingAddress struct {
	FullName     string `json:"fullName" gorm:"size:255"`
	Phone        string `json:"phone" gorm:"size:30"`
	AddressLine1 string `json:"addressLine1" gorm:"size:255"`
	AddressLine2 string `json:"addressLine2,omitempty" gorm:"size:255"`
	City         string `json:"city" gorm:"size:100"`
	State        string `json:"state" gorm:"size:100"`
	PostalCode   string `json:"postalCode" gorm:"size:20"`
	Country      string `json:"country" gorm:"size:100"`
}

type Order struct {
	BaseModel
	UserID         *uuid.UUID      `json:"userId,omitempty" gorm:"type:uuid;index"`
	OrderRef       string          `json:"orderRef" gorm:"size:64;uniqueIndex;not null"`
	Items          []OrderItem     `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipping       ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod" gorm:"type:varchar(20);not null;default:'standard'"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20);not null"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderStatus    OrderStatus     `json:"orderStatus" gorm:"type:varchar(20);not null;default:'processing';index"`
	RefundRequired bool            `json:"refundRequired" gorm:"not null;default:false"`
	Subtotal       float64         `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	DeliveryPrice  float64         `json:"deliveryPrice" gorm:"type:decimal(10,2);not null"`
	TotalPrice     float64         `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`
	StatusHistory  []StatusChange  `json:"statusHistory" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a snapshot of the product at checkout time.
type OrderItem struct {
	ID            uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID       uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID `json:"product" gorm:"type:uuid;not null;index"`
	ProductNumber int64     `json:"productId"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Price         float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
}

type StatusChange struct {
	ID        uuid.UUID   `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID   `json:"-" gorm:"type:uuid;not null;index"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Timestamp time.Time   `json:"timestamp" gorm:"not null"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (c *StatusChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (StatusChange) TableName() string {
	return "order_status_history"
}

// Transition describes what a status change did to an order.
type Transition struct {
	From    OrderStatus
	To      OrderStatus
	Changed bool
	// Restock lists the line items whose quantity goes back onto product stock.
	Restock []OrderItem
}

var forwardTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyStatus moves the order to next and applies the payment side effects.
// Asking for the current status is a no-op so a repeated cancellation never
// restocks twice.
func (o *Order) ApplyStatus(next OrderStatus, at time.Time) (*Transition, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrderStatus, next)
	}

	t := &Transition{From: o.OrderStatus, To: next}
	if o.OrderStatus == next {
		return t, nil
	}

	if !CanTransition(o.OrderStatus, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.OrderStatus, next)
	}

	switch next {
	case OrderStatusDelivered:
		if o.PaymentMethod == PaymentMethodCashOnDelivery && o.PaymentStatus == PaymentStatusPending {
			o.PaymentStatus = PaymentStatusCompleted
		}
	case OrderStatusCancelled:
		switch o.PaymentStatus {
		case PaymentStatusPending:
			o.PaymentStatus = PaymentStatusFailed
		case PaymentStatusCompleted:
			o.RefundRequired = true
		}
		t.Restock = append(t.Restock, o.Items...)
	}

	o.OrderStatus = next
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		OrderID:   o.ID,
		Status:    next,
		Timestamp: at,
	})
	t.Changed = true

	return t, nil
}
