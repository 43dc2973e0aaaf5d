package repo

import (
	"database/sql"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string          `db:"id"`
	OrderNumber     string          `db:"order_number"`
	Status          string          `db:"status"`
	PaymentStatus   string          `db:"payment_status"`
	PaymentIntentID sql.NullString  `db:"payment_intent_id"`
	UserID          sql.NullString  `db:"user_id"`
	GuestEmail      sql.NullString  `db:"guest_email"`
	GuestPhone      sql.NullString  `db:"guest_phone"`
	ContactEmail    sql.NullString  `db:"contact_email"`
	ShippingMethod  string          `db:"shipping_method"`
	CustomerNotes   sql.NullString  `db:"customer_notes"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ShippingCost    decimal.Decimal `db:"shipping_cost"`
	Tax             decimal.Decimal `db:"tax"`
	DiscountAmount  decimal.Decimal `db:"discount_amount"`
	Total           decimal.Decimal `db:"total"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	ConfirmedAt     sql.NullTime    `db:"confirmed_at"`
	ShippedAt       sql.NullTime    `db:"shipped_at"`
	DeliveredAt     sql.NullTime    `db:"delivered_at"`
}

type OrderItem struct {
	ID          string          `db:"id"`
	OrderID     string          `db:"order_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	ProductSKU  string          `db:"product_sku"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Quantity    int             `db:"quantity"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Position    int             `db:"position"`
}

type Product struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	SKU       string          `db:"sku"`
	Price     decimal.Decimal `db:"price"`
	Inventory int             `db:"inventory"`
}

var orderColumns = []string{
	"id", "order_number", "status", "payment_status", "payment_intent_id",
	"user_id", "guest_email", "guest_phone", "contact_email", "shipping_method", "customer_notes",
	"subtotal", "shipping_cost", "tax", "discount_amount", "total",
	"created_at", "updated_at", "confirmed_at", "shipped_at", "delivered_at",
}

var itemColumns = []string{
	"id", "order_id", "product_id", "product_name", "product_sku",
	"unit_price", "quantity", "total_price", "position",
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		ID:          i.ID,
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		ProductSKU:  i.ProductSKU,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
		TotalPrice:  i.TotalPrice,
	}
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          entities.OrderStatus(o.Status),
		PaymentStatus:   entities.PaymentStatus(o.PaymentStatus),
		PaymentIntentID: nullStringToString(o.PaymentIntentID),
		Buyer: entities.Buyer{
			UserID:     nullStringToString(o.UserID),
			GuestEmail: nullStringToString(o.GuestEmail),
			GuestPhone: nullStringToString(o.GuestPhone),
		},
		ContactEmail:    nullStringToString(o.ContactEmail),
		ShippingSummary: o.ShippingMethod,
		CustomerNotes:   nullStringToString(o.CustomerNotes),
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Tax:             o.Tax,
		DiscountAmount:  o.DiscountAmount,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ConfirmedAt:     nullTimeToPtr(o.ConfirmedAt),
		ShippedAt:       nullTimeToPtr(o.ShippedAt),
		DeliveredAt:     nullTimeToPtr(o.DeliveredAt),
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func ProductToSnapshot(p Product) entities.ProductSnapshot {
	return entities.ProductSnapshot{
		ProductID:      p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		Price:          p.Price,
		AvailableStock: p.Inventory,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
