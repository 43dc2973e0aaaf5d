package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const orderNumberConstraint = "orders_order_number_key"

type orderRepo struct {
	postgresRepo
}

func NewOrderRepo(db *sqlx.DB) *orderRepo {
	return &orderRepo{postgresRepo: newPostgresRepo(db)}
}

// Create writes the order and its item snapshots. It must run inside a
// transaction so a failed item insert leaves no order behind.
func (r *orderRepo) Create(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(
			"id", "order_number", "status", "payment_status", "payment_intent_id",
			"user_id", "guest_email", "guest_phone", "contact_email", "shipping_method", "customer_notes",
			"subtotal", "shipping_cost", "tax", "discount_amount", "total",
			"created_at", "updated_at",
		).
		Values(
			o.ID, o.OrderNumber, o.Status, o.PaymentStatus, nullString(o.PaymentIntentID),
			nullString(o.Buyer.UserID), nullString(o.Buyer.GuestEmail), nullString(o.Buyer.GuestPhone),
			nullString(o.ContactEmail), o.ShippingSummary, nullString(o.CustomerNotes),
			o.Subtotal, o.ShippingCost, o.Tax, o.DiscountAmount, o.Total,
			o.CreatedAt, o.UpdatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, orderNumberConstraint) {
			return entities.ErrOrderNumberTaken
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	if len(o.Items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").Columns(itemColumns...)
	for i, it := range o.Items {
		q = q.Values(
			it.ID, o.ID, it.ProductID, it.ProductName, it.ProductSKU,
			it.UnitPrice, it.Quantity, it.TotalPrice, i,
		)
	}

	query, args = q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": id}).
		OrderBy("position").
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

// UpdateStatus applies upd only while the stored payment status still equals
// expected. A confirmation additionally requires the order to still be
// PENDING, so a concurrent cancellation wins. Losing the race yields
// ErrPaymentStatusConflict.
func (r *orderRepo) UpdateStatus(ctx context.Context, id string, expected entities.PaymentStatus, upd entities.StatusUpdate) error {
	where := sq.Eq{"id": id, "payment_status": expected}
	if upd.Status == entities.OrderStatusConfirmed {
		where["status"] = entities.OrderStatusPending
	}

	query, args := r.qb.Update("orders").
		SetMap(statusSetMap(upd)).
		Where(where).
		MustSql()

	return r.applyGuarded(ctx, query, args, entities.ErrPaymentStatusConflict)
}

// TransitionStatus is the fulfillment-side counterpart of UpdateStatus,
// guarded on the stored order status.
func (r *orderRepo) TransitionStatus(ctx context.Context, id string, expected entities.OrderStatus, upd entities.StatusUpdate) error {
	query, args := r.qb.Update("orders").
		SetMap(statusSetMap(upd)).
		Where(sq.Eq{"id": id, "status": expected}).
		MustSql()

	return r.applyGuarded(ctx, query, args, entities.ErrInvalidTransition)
}

func (r *orderRepo) applyGuarded(ctx context.Context, query string, args []any, conflict error) error {
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return conflict
	}
	return nil
}

func statusSetMap(upd entities.StatusUpdate) map[string]any {
	set := map[string]any{"updated_at": upd.At}
	if upd.Status != "" {
		set["status"] = upd.Status
		switch upd.Status {
		case entities.OrderStatusConfirmed:
			set["confirmed_at"] = upd.At
		case entities.OrderStatusShipped:
			set["shipped_at"] = upd.At
		case entities.OrderStatusDelivered:
			set["delivered_at"] = upd.At
		}
	}
	if upd.PaymentStatus != "" {
		set["payment_status"] = upd.PaymentStatus
	}
	if upd.PaymentIntentID != "" {
		set["payment_intent_id"] = upd.PaymentIntentID
	}
	return set
}

func (r *orderRepo) List(ctx context.Context, f entities.OrderFilter) ([]entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC")
	q = applyFilter(q, f)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	query, args := q.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}

	// Получаем товары для этих заказов одним запросом
	query, args = r.qb.Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id", "position").
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[string][]OrderItem, len(ids))
	for _, item := range items {
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToEntity(order, itemsMap[order.ID]))
	}
	return result, nil
}

func (r *orderRepo) Count(ctx context.Context, f entities.OrderFilter) (int, error) {
	query, args := applyFilter(r.qb.Select("COUNT(*)").From("orders"), f).MustSql()

	var n int
	if err := r.getContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func applyFilter(q sq.SelectBuilder, f entities.OrderFilter) sq.SelectBuilder {
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if !f.From.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(sq.Lt{"created_at": f.To})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"order_number": pattern},
			sq.ILike{"contact_email": pattern},
			sq.ILike{"user_id": pattern},
		})
	}
	return q
}
