package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/internal/service"
	mocks "github.com/SergeyBogomolovv/checkout-service/internal/service/mocks"
	"github.com/SergeyBogomolovv/checkout-service/pkg/trm"
	txMocks "github.com/SergeyBogomolovv/checkout-service/pkg/trm/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deps struct {
	tx       *txMocks.MockManager
	orders   *mocks.MockOrderRepo
	products *mocks.MockProductRepo
	gateway  *mocks.MockPaymentGateway
	audit    *mocks.MockAuditSink
	notifier *mocks.MockNotifier
	cache    *mocks.MockCache
}

func newDeps(t *testing.T) deps {
	d := deps{
		tx:       txMocks.NewMockManager(t),
		orders:   mocks.NewMockOrderRepo(t),
		products: mocks.NewMockProductRepo(t),
		gateway:  mocks.NewMockPaymentGateway(t),
		audit:    mocks.NewMockAuditSink(t),
		notifier: mocks.NewMockNotifier(t),
		cache:    mocks.NewMockCache(t),
	}
	d.tx.EXPECT().
		Do(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, cb func(ctx context.Context) error, _ ...trm.Option) error {
			return cb(ctx)
		}).Maybe()
	return d
}

type checkoutService interface {
	BeginCheckout(ctx context.Context, req entities.CheckoutRequest) (entities.CheckoutSession, error)
	CompleteCheckout(ctx context.Context, orderID, paymentIntentID string) (entities.CompletionStatus, error)
	Wait()
}

func newCheckoutService(t *testing.T, d deps, pricing config.Checkout) checkoutService {
	policy, err := service.NewFlatPricing(pricing)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewCheckoutService(logger, service.CheckoutDeps{
		TxManager: d.tx,
		Orders:    d.orders,
		Products:  d.products,
		Gateway:   d.gateway,
		Pricing:   policy,
		Audit:     d.audit,
		Notifier:  d.notifier,
		Cache:     d.cache,
	}, service.CheckoutConfig{
		OrderNumberPrefix: "ORD",
		Currency:          "usd",
		Country:           "US",
	})
}

var zeroPricing = config.Checkout{FlatShipping: "0", TaxRate: "0"}

func guestRequest(lines ...entities.CartLine) entities.CheckoutRequest {
	return entities.CheckoutRequest{
		Lines: lines,
		Customer: entities.Customer{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Phone:     "555-0100",
		},
		Shipping: entities.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
		},
	}
}

func salsa(stock int) map[string]entities.ProductSnapshot {
	return map[string]entities.ProductSnapshot{
		"p1": {ProductID: "p1", Name: "Salsa", SKU: "SAL-1", Price: decimal.RequireFromString("9.99"), AvailableStock: stock},
	}
}

func TestCheckoutService_BeginCheckout(t *testing.T) {
	type MockBehavior func(d deps)

	dbError := errors.New("db error")

	testCases := []struct {
		name         string
		req          entities.CheckoutRequest
		pricing      config.Checkout
		mockBehavior MockBehavior
		wantErr      error
		wantTotal    string
		check        func(t *testing.T, err error)
	}{
		{
			name:    "prices cart and opens intent without touching stock",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 2}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1"}).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
					return o.Status == entities.OrderStatusPending &&
						o.PaymentStatus == entities.PaymentStatusPending &&
						o.Total.Equal(decimal.RequireFromString("19.98")) &&
						o.Buyer.GuestEmail == "jane@example.com" && o.Buyer.UserID == "" &&
						o.PaymentIntentID == "" &&
						len(o.Items) == 1 && o.Items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")) &&
						strings.HasPrefix(o.OrderNumber, "ORD-") &&
						o.ShippingSummary == "1 Main St\nSpringfield, IL 62701"
				})).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r entities.AuditRecord) bool {
					return r.Action == entities.AuditActionCheckoutCreated
				})).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.MatchedBy(func(p entities.CreateIntentParams) bool {
					return p.Amount.Equal(decimal.RequireFromString("19.98")) &&
						p.Currency == "usd" && p.OrderID != "" &&
						p.CustomerName == "Jane Doe" && p.Shipping.Country == "US"
				})).Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()
			},
			wantTotal: "19.98",
		},
		{
			name:    "duplicate lines are merged before pricing",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}, entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1"}).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
					return len(o.Items) == 1 && o.Items[0].Quantity == 2
				})).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()
			},
			wantTotal: "19.98",
		},
		{
			name:    "shipping and tax from policy",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 2}),
			pricing: config.Checkout{FlatShipping: "5.00", TaxRate: "0.1"},
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1"}).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
					return o.ShippingCost.Equal(decimal.NewFromInt(5)) &&
						o.Tax.Equal(decimal.RequireFromString("2")) &&
						o.Total.Equal(o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.DiscountAmount))
				})).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()
			},
			wantTotal: "26.98",
		},
		{
			name:    "registered user owns the order",
			req:     func() entities.CheckoutRequest { r := guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}); r.UserID = "user-1"; return r }(),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1"}).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
					return o.Buyer.UserID == "user-1" && o.Buyer.GuestEmail == "" && o.ContactEmail == "jane@example.com"
				})).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r entities.AuditRecord) bool {
					return r.UserID == "user-1"
				})).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()
			},
			wantTotal: "9.99",
		},
		{
			name:         "empty cart",
			req:          guestRequest(),
			pricing:      zeroPricing,
			mockBehavior: func(d deps) {},
			wantErr:      entities.ErrEmptyCart,
		},
		{
			name:         "non positive quantity",
			req:          guestRequest(entities.CartLine{ProductID: "p1", Quantity: 0}),
			pricing:      zeroPricing,
			mockBehavior: func(d deps) {},
			wantErr:      entities.ErrInvalidOrder,
		},
		{
			name: "no buyer identity",
			req: func() entities.CheckoutRequest {
				r := guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1})
				r.Customer.Email = ""
				return r
			}(),
			pricing:      zeroPricing,
			mockBehavior: func(d deps) {},
			wantErr:      entities.ErrInvalidBuyer,
		},
		{
			name:    "unknown product fails the whole cart",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}, entities.CartLine{ProductID: "p9", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1", "p9"}).
					Return(nil, &entities.ProductNotFoundError{ProductIDs: []string{"p9"}}).Once()
			},
			wantErr: entities.ErrProductNotFound,
		},
		{
			name:    "insufficient inventory persists nothing",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 11}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, []string{"p1"}).Return(salsa(10), nil).Once()
			},
			wantErr: entities.ErrInsufficientInventory,
			check: func(t *testing.T, err error) {
				var inv *entities.InsufficientInventoryError
				require.ErrorAs(t, err, &inv)
				assert.Equal(t, 10, inv.Available)
				assert.Equal(t, "p1", inv.ProductID)
			},
		},
		{
			name:    "catalog read failure is retryable",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(nil, dbError).Once()
			},
			wantErr: entities.ErrPersistence,
		},
		{
			name:    "persistence failure skips the gateway",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(dbError).Once()
			},
			wantErr: entities.ErrPersistence,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, dbError)
				assert.True(t, entities.IsRetryable(err))
			},
		},
		{
			name:    "order number collision is retried",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(entities.ErrOrderNumberTaken).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()
			},
			wantTotal: "9.99",
		},
		{
			name:    "order number collisions give up after three attempts",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(entities.ErrOrderNumberTaken).Times(3)
			},
			wantErr: entities.ErrOrderNumberTaken,
		},
		{
			name:    "gateway failure leaves a pending order",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{}, fmt.Errorf("%w: timeout", entities.ErrGatewayUnavailable)).Once()
			},
			wantErr: entities.ErrGatewayUnavailable,
		},
		{
			name:    "audit failure does not fail checkout",
			req:     guestRequest(entities.CartLine{ProductID: "p1", Quantity: 1}),
			pricing: zeroPricing,
			mockBehavior: func(d deps) {
				d.products.EXPECT().Snapshot(mock.Anything, mock.Anything).Return(salsa(10), nil).Once()
				d.orders.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Once()
				d.audit.EXPECT().Record(mock.Anything, mock.Anything).Return(dbError).Once()
				d.gateway.EXPECT().CreateIntent(mock.Anything, mock.Anything).
					Return(entities.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil).Once()
			},
			wantTotal: "9.99",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps(t)
			tc.mockBehavior(d)
			svc := newCheckoutService(t, d, tc.pricing)

			session, err := svc.BeginCheckout(context.Background(), tc.req)
			svc.Wait()

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				if tc.check != nil {
					tc.check(t, err)
				}
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, session.OrderID)
			assert.NotEmpty(t, session.ClientSecret)
			assert.Equal(t, "usd", session.Currency)
			assert.Equal(t, tc.wantTotal, session.Amount.StringFixed(2))
		})
	}
}

func TestNewOrderNumber(t *testing.T) {
	now := mustTime(t, "2026-03-05T23:30:00Z")
	a := service.NewOrderNumber("ORD", now)
	b := service.NewOrderNumber("ORD", now)

	assert.Regexp(t, `^ORD-20260305-[0-9A-F]{10}$`, a)
	assert.NotEqual(t, a, b)
}

func TestNewFlatPricing(t *testing.T) {
	_, err := service.NewFlatPricing(config.Checkout{FlatShipping: "abc", TaxRate: "0"})
	assert.Error(t, err)

	_, err = service.NewFlatPricing(config.Checkout{FlatShipping: "-1", TaxRate: "0"})
	assert.Error(t, err)

	p, err := service.NewFlatPricing(config.Checkout{FlatShipping: "4.50", TaxRate: "0.0825"})
	require.NoError(t, err)
	q := p.Quote(decimal.RequireFromString("19.98"), nil)
	assert.Equal(t, "4.50", q.Shipping.StringFixed(2))
	assert.Equal(t, "1.65", q.Tax.StringFixed(2))
	assert.True(t, q.Discount.IsZero())
}
