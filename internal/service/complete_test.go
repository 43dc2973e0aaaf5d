package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func pendingOrder(items ...entities.OrderItem) entities.Order {
	if len(items) == 0 {
		items = []entities.OrderItem{{
			ID: "i1", ProductID: "p1", ProductName: "Salsa", ProductSKU: "SAL-1",
			UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2, TotalPrice: decimal.RequireFromString("19.98"),
		}}
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	return entities.Order{
		ID:            "order-1",
		OrderNumber:   "ORD-20260101-0000000001",
		Status:        entities.OrderStatusPending,
		PaymentStatus: entities.PaymentStatusPending,
		Buyer:         entities.Buyer{GuestEmail: "jane@example.com"},
		Subtotal:      subtotal,
		Total:         subtotal,
		Items:         items,
	}
}

func succeededIntent(order entities.Order) entities.PaymentIntent {
	return entities.PaymentIntent{
		ID:          "pi_1",
		AmountMinor: entities.ToMinorUnits(order.Total),
		Currency:    "usd",
		Status:      entities.IntentStatusSucceeded,
		Metadata:    map[string]string{"orderId": order.ID},
	}
}

func isConfirmation(upd entities.StatusUpdate) bool {
	return upd.Status == entities.OrderStatusConfirmed &&
		upd.PaymentStatus == entities.PaymentStatusPaid &&
		upd.PaymentIntentID == "pi_1" && !upd.At.IsZero()
}

func TestCheckoutService_CompleteCheckout(t *testing.T) {
	type MockBehavior func(d deps)

	order := pendingOrder()
	paid := order
	paid.Status = entities.OrderStatusConfirmed
	paid.PaymentStatus = entities.PaymentStatusPaid

	testCases := []struct {
		name         string
		mockBehavior MockBehavior
		want         entities.CompletionStatus
		wantErr      error
		check        func(t *testing.T, err error)
	}{
		{
			name: "confirms order and decrements stock",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.MatchedBy(isConfirmation)).
					Return(nil).Once()
				d.products.EXPECT().Decrement(mock.Anything, "p1", 2).Return(nil).Once()
				d.cache.EXPECT().Delete("order-1").Return().Once()
				d.audit.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r entities.AuditRecord) bool {
					return r.Action == entities.AuditActionCheckoutCompleted && r.EntityID == "order-1"
				})).Return(nil).Once()
				d.notifier.EXPECT().OrderConfirmed(mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
					return o.ID == "order-1" && o.IsPaid() && o.ConfirmedAt != nil
				})).Return(nil).Once()
			},
			want: entities.CompletionCompleted,
		},
		{
			name: "already paid short-circuits before the gateway",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(paid, nil).Once()
			},
			want: entities.CompletionAlreadyCompleted,
		},
		{
			name: "unknown order",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(entities.Order{}, entities.ErrOrderNotFound).Once()
			},
			wantErr: entities.ErrOrderNotFound,
		},
		{
			name: "cancelled order cannot be completed",
			mockBehavior: func(d deps) {
				cancelled := order
				cancelled.Status = entities.OrderStatusCancelled
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(cancelled, nil).Once()
			},
			wantErr: entities.ErrInvalidTransition,
		},
		{
			name: "gateway unavailable changes nothing",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").
					Return(entities.PaymentIntent{}, fmt.Errorf("%w: deadline exceeded", entities.ErrGatewayUnavailable)).Once()
			},
			wantErr: entities.ErrGatewayUnavailable,
		},
		{
			name: "intent still processing",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				intent := succeededIntent(order)
				intent.Status = entities.IntentStatusProcessing
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(intent, nil).Once()
			},
			wantErr: entities.ErrPaymentNotConfirmed,
		},
		{
			name: "intent amount differs from order total",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				intent := succeededIntent(order)
				intent.AmountMinor = 100
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(intent, nil).Once()
			},
			wantErr: entities.ErrPaymentMismatch,
		},
		{
			name: "intent belongs to another order",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				intent := succeededIntent(order)
				intent.Metadata["orderId"] = "order-2"
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(intent, nil).Once()
			},
			wantErr: entities.ErrPaymentMismatch,
		},
		{
			name: "oversold product rolls back the whole unit",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.Anything).Return(nil).Once()
				d.products.EXPECT().Decrement(mock.Anything, "p1", 2).
					Return(&entities.InsufficientStockError{ProductID: "p1"}).Once()
			},
			wantErr: entities.ErrOversoldInventory,
			check: func(t *testing.T, err error) {
				var oversold *entities.OversoldInventoryError
				require.ErrorAs(t, err, &oversold)
				assert.Equal(t, "p1", oversold.ProductID)
				assert.False(t, entities.IsRetryable(err))
			},
		},
		{
			name: "losing the compare-and-set reports already completed",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.Anything).
					Return(entities.ErrPaymentStatusConflict).Once()
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(paid, nil).Once()
			},
			want: entities.CompletionAlreadyCompleted,
		},
		{
			name: "cancellation during payment lookup wins",
			mockBehavior: func(d deps) {
				cancelled := order
				cancelled.Status = entities.OrderStatusCancelled
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.MatchedBy(isConfirmation)).
					Return(entities.ErrPaymentStatusConflict).Once()
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(cancelled, nil).Once()
			},
			wantErr: entities.ErrInvalidTransition,
		},
		{
			name: "transient database error is retried",
			mockBehavior: func(d deps) {
				d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
				d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.Anything).
					Return(errors.New("connection reset")).Once()
				d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.Anything).
					Return(nil).Once()
				d.products.EXPECT().Decrement(mock.Anything, "p1", 2).Return(nil).Once()
				d.cache.EXPECT().Delete("order-1").Return().Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
				d.notifier.EXPECT().OrderConfirmed(mock.Anything, mock.Anything).Return(nil).Once()
			},
			want: entities.CompletionCompleted,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps(t)
			tc.mockBehavior(d)
			svc := newCheckoutService(t, d, zeroPricing)

			got, err := svc.CompleteCheckout(context.Background(), "order-1", "pi_1")
			svc.Wait()

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				if tc.check != nil {
					tc.check(t, err)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckoutService_CompleteCheckoutDecrementsInProductOrder(t *testing.T) {
	d := newDeps(t)
	order := pendingOrder(
		entities.OrderItem{ID: "i1", ProductID: "p2", UnitPrice: decimal.NewFromInt(1), Quantity: 1, TotalPrice: decimal.NewFromInt(1)},
		entities.OrderItem{ID: "i2", ProductID: "p1", UnitPrice: decimal.NewFromInt(2), Quantity: 2, TotalPrice: decimal.NewFromInt(4)},
		entities.OrderItem{ID: "i3", ProductID: "p2", UnitPrice: decimal.NewFromInt(1), Quantity: 3, TotalPrice: decimal.NewFromInt(3)},
	)

	var decremented []string
	d.orders.EXPECT().GetByID(mock.Anything, "order-1").Return(order, nil).Once()
	d.gateway.EXPECT().GetIntent(mock.Anything, "pi_1").Return(succeededIntent(order), nil).Once()
	d.orders.EXPECT().UpdateStatus(mock.Anything, "order-1", entities.PaymentStatusPending, mock.Anything).Return(nil).Once()
	d.products.EXPECT().Decrement(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, productID string, quantity int) {
			decremented = append(decremented, fmt.Sprintf("%s:%d", productID, quantity))
		}).Return(nil).Times(2)
	d.cache.EXPECT().Delete("order-1").Return().Once()
	d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
	d.notifier.EXPECT().OrderConfirmed(mock.Anything, mock.Anything).Return(nil).Once()

	svc := newCheckoutService(t, d, zeroPricing)
	got, err := svc.CompleteCheckout(context.Background(), "order-1", "pi_1")
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, entities.CompletionCompleted, got)
	assert.Equal(t, []string{"p1:2", "p2:4"}, decremented)
}
