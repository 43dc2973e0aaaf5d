package handler

import (
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
)

// CheckoutItem позиция корзины
type CheckoutItem struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=1000"`
}

// Customer контактные данные покупателя
type Customer struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// ShippingAddress адрес доставки
type ShippingAddress struct {
	Address1   string `json:"address1" validate:"required,max=200"`
	Address2   string `json:"address2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
}

// CheckoutRequest запрос на оформление заказа
type CheckoutRequest struct {
	Items    []CheckoutItem  `json:"items" validate:"dive"`
	Customer Customer        `json:"customer"`
	Shipping ShippingAddress `json:"shipping"`
	Notes    string          `json:"notes,omitempty" validate:"max=1000"`
}

// CheckoutResponse данные для завершения оплаты на стороне клиента
type CheckoutResponse struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	Amount       string `json:"amount" example:"129.99"`
	Currency     string `json:"currency" example:"usd"`
}

// CompleteRequest подтверждение оплаты клиентом
type CompleteRequest struct {
	OrderID         string `json:"orderId" validate:"required"`
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

// CompleteResponse результат завершения оформления
type CompleteResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status" enums:"completed,alreadyCompleted"`
}

// OrderItem позиция заказа
type OrderItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	ProductSKU  string `json:"productSku"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"totalPrice"`
}

// Order представляет заказ
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentIntentID string      `json:"paymentIntentId,omitempty"`
	UserID          string      `json:"userId,omitempty"`
	GuestEmail      string      `json:"guestEmail,omitempty"`
	GuestPhone      string      `json:"guestPhone,omitempty"`
	ShippingAddress string      `json:"shippingAddress"`
	CustomerNotes   string      `json:"customerNotes,omitempty"`
	Subtotal        string      `json:"subtotal"`
	ShippingCost    string      `json:"shippingCost"`
	Tax             string      `json:"tax"`
	DiscountAmount  string      `json:"discountAmount"`
	Total           string      `json:"total"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	ConfirmedAt     *time.Time  `json:"confirmedAt,omitempty"`
	ShippedAt       *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time  `json:"deliveredAt,omitempty"`
}

// Pagination параметры страницы
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// OrderList страница заказов
type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// UpdateStatusRequest смена статуса выполнения заказа
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PROCESSING SHIPPED DELIVERED CANCELLED"`
}

// PaymentEvent событие об успешной оплате из очереди
type PaymentEvent struct {
	OrderID         string `json:"order_id" validate:"required"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type listQuery struct {
	Status string `validate:"omitempty,oneof=PENDING CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED"`
	Search string `validate:"max=100"`
	Page   int    `validate:"gte=1"`
	Limit  int    `validate:"gte=1,lte=100"`
	From   time.Time
	To     time.Time
}

func (q listQuery) filter() entities.OrderFilter {
	return entities.OrderFilter{
		Status: entities.OrderStatus(q.Status),
		From:   q.From,
		To:     q.To,
		Search: q.Search,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
}

func CheckoutJSONToEntity(req CheckoutRequest, userID string) entities.CheckoutRequest {
	lines := make([]entities.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, entities.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	return entities.CheckoutRequest{
		Lines:  lines,
		UserID: userID,
		Customer: entities.Customer{
			Email:     req.Customer.Email,
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Phone:     req.Customer.Phone,
		},
		Shipping: entities.Address{
			Line1:      req.Shipping.Address1,
			Line2:      req.Shipping.Address2,
			City:       req.Shipping.City,
			State:      req.Shipping.State,
			PostalCode: req.Shipping.PostalCode,
		},
		Notes: req.Notes,
	}
}

func SessionEntityToJSON(s entities.CheckoutSession) CheckoutResponse {
	return CheckoutResponse{
		ClientSecret: s.ClientSecret,
		OrderID:      s.OrderID,
		OrderNumber:  s.OrderNumber,
		Amount:       s.Amount.StringFixed(2),
		Currency:     s.Currency,
	}
}

func ItemEntityToJSON(i entities.OrderItem) OrderItem {
	return OrderItem{
		ID:          i.ID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		ProductSKU:  i.ProductSKU,
		UnitPrice:   i.UnitPrice.StringFixed(2),
		Quantity:    i.Quantity,
		TotalPrice:  i.TotalPrice.StringFixed(2),
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemEntityToJSON(it))
	}

	return Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentIntentID: o.PaymentIntentID,
		UserID:          o.Buyer.UserID,
		GuestEmail:      o.Buyer.GuestEmail,
		GuestPhone:      o.Buyer.GuestPhone,
		ShippingAddress: o.ShippingSummary,
		CustomerNotes:   o.CustomerNotes,
		Subtotal:        o.Subtotal.StringFixed(2),
		ShippingCost:    o.ShippingCost.StringFixed(2),
		Tax:             o.Tax.StringFixed(2),
		DiscountAmount:  o.DiscountAmount.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
	}
}
