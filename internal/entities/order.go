package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the fulfillment state machine allows s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusPaid
	case PaymentStatusPaid:
		return next == PaymentStatusRefunded
	}
	return false
}

// Buyer identifies who placed the order: a registered user or a guest, never both.
type Buyer struct {
	UserID     string
	GuestEmail string
	GuestPhone string
}

func (b Buyer) Valid() bool {
	return (b.UserID == "") != (b.GuestEmail == "")
}

type OrderItem struct {
	ID          string
	ProductID   string
	ProductName string
	ProductSKU  string
	UnitPrice   decimal.Decimal
	Quantity    int
	TotalPrice  decimal.Decimal
}

type Order struct {
	ID              string
	OrderNumber     string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	Buyer           Buyer
	// ContactEmail is the address confirmations go to, for guests and
	// registered users alike.
	ContactEmail    string
	ShippingSummary string
	CustomerNotes   string

	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Tax            decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal

	Items []OrderItem

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}

// ComputeTotal returns subtotal + shipping + tax - discount.
func (o *Order) ComputeTotal() decimal.Decimal {
	return o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.DiscountAmount)
}

// Validate checks the invariants an order must hold before it is persisted.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	if !o.Buyer.Valid() {
		return ErrInvalidBuyer
	}

	subtotal := decimal.Zero
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return ErrInvalidOrder
		}
		if !it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.TotalPrice) {
			return ErrInvalidOrder
		}
		subtotal = subtotal.Add(it.TotalPrice)
	}
	if !subtotal.Equal(o.Subtotal) {
		return ErrInvalidOrder
	}
	if !o.ComputeTotal().Equal(o.Total) || o.Total.IsNegative() {
		return ErrInvalidOrder
	}
	return nil
}

// IsPaid is the idempotency short-circuit for completion.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// Quantities aggregates item quantities by product id.
func (o *Order) Quantities() map[string]int {
	res := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		res[it.ProductID] += it.Quantity
	}
	return res
}

// StatusUpdate carries the fields written by a compare-and-set transition.
type StatusUpdate struct {
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	At              time.Time
}

type OrderFilter struct {
	Status OrderStatus
	From   time.Time
	To     time.Time
	Search string
	Limit  int
	Offset int
}
