package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/internal/handler"
	mocks "github.com/SergeyBogomolovv/checkout-service/internal/handler/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(t *testing.T) (chi.Router, *mocks.MockOrderService) {
	t.Helper()

	svc := mocks.NewMockOrderService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewAdminHandler(logger, config.Admin{User: "admin", Password: "secret"}, svc)

	r := chi.NewRouter()
	h.Init(r)
	return r, svc
}

func adminRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.SetBasicAuth("admin", "secret")
	return req
}

func sampleOrder(status entities.OrderStatus) entities.Order {
	return entities.Order{
		ID:            orderID,
		OrderNumber:   "ORD-20260101-ABCDEF0123",
		Status:        status,
		PaymentStatus: entities.PaymentStatusPaid,
		Buyer:         entities.Buyer{GuestEmail: "ann@example.com"},
		Subtotal:      decimal.RequireFromString("24"),
		ShippingCost:  decimal.RequireFromString("5"),
		Tax:           decimal.RequireFromString("1.92"),
		Total:         decimal.RequireFromString("30.92"),
		Items: []entities.OrderItem{
			{ProductName: "Salsa", Quantity: 2},
			{ProductName: "Chips", Quantity: 1},
		},
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAdminHandler_RequiresAuth(t *testing.T) {
	r, _ := newAdminRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	status, _, _ := do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "wrong")
	status, _, _ = do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminHandler_ListOrders(t *testing.T) {
	testCases := []struct {
		name         string
		query        string
		mockBehavior func(svc *mocks.MockOrderService)
		wantStatus   int
		wantBody     string
	}{
		{
			name:  "defaults",
			query: "",
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					ListOrders(mock.Anything, entities.OrderFilter{Limit: 20, Offset: 0}).
					Return([]entities.Order{sampleOrder(entities.OrderStatusConfirmed)}, 41, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"pagination":{"page":1,"limit":20,"total":41,"totalPages":3}`,
		},
		{
			name:  "filters",
			query: "?status=shipped&from=2026-01-01&to=2026-01-31&search=ann&page=3&limit=10",
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					ListOrders(mock.Anything, entities.OrderFilter{
						Status: entities.OrderStatusShipped,
						From:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
						To:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
						Search: "ann",
						Limit:  10,
						Offset: 20,
					}).
					Return(nil, 0, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"orders":[]`,
		},
		{
			name:         "status all",
			query:        "?status=all",
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					ListOrders(mock.Anything, entities.OrderFilter{Limit: 20}).
					Return(nil, 0, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"totalPages":0`,
		},
		{
			name:         "unknown status",
			query:        "?status=lost",
			mockBehavior: func(svc *mocks.MockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"listQuery.Status":"oneof"`,
		},
		{
			name:         "limit too large",
			query:        "?limit=500",
			mockBehavior: func(svc *mocks.MockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"listQuery.Limit":"lte"`,
		},
		{
			name:         "bad date",
			query:        "?from=yesterday",
			mockBehavior: func(svc *mocks.MockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `expected YYYY-MM-DD or RFC3339 date`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, svc := newAdminRouter(t)
			tc.mockBehavior(svc)

			status, _, body := do(t, r, adminRequest(http.MethodGet, "/api/admin/orders"+tc.query, ""))

			assert.Equal(t, tc.wantStatus, status)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}

func TestAdminHandler_ExportOrders(t *testing.T) {
	r, svc := newAdminRouter(t)

	svc.EXPECT().
		ExportOrders(mock.Anything, entities.OrderFilter{Status: entities.OrderStatusConfirmed, Limit: 20}, mock.Anything).
		RunAndReturn(func(_ context.Context, _ entities.OrderFilter, fn func(entities.Order) error) error {
			return fn(sampleOrder(entities.OrderStatusConfirmed))
		}).Once()

	status, header, body := do(t, r, adminRequest(http.MethodGet, "/api/admin/orders/export?status=CONFIRMED", ""))

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/csv", header.Get("Content-Type"))
	assert.Contains(t, header.Get("Content-Disposition"), `attachment; filename="orders-`)

	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Order Number", records[0][0])
	assert.Equal(t, []string{
		"ORD-20260101-ABCDEF0123", "ann@example.com", "CONFIRMED", "PAID",
		"24.00", "5.00", "1.92", "0.00", "30.92", "2x Salsa; 1x Chips", "2026-01-01T12:00:00Z",
	}, records[1])
}

func TestAdminHandler_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		mockBehavior func(svc *mocks.MockOrderService)
		wantStatus   int
		wantBody     string
	}{
		{
			name: "shipped",
			body: `{"status": "SHIPPED"}`,
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					UpdateStatus(mock.Anything, orderID, entities.OrderStatusShipped, "admin").
					Return(sampleOrder(entities.OrderStatusShipped), nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"SHIPPED"`,
		},
		{
			name:         "confirmed is not allowed",
			body:         `{"status": "CONFIRMED"}`,
			mockBehavior: func(svc *mocks.MockOrderService) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"UpdateStatusRequest.Status":"oneof"`,
		},
		{
			name: "invalid transition",
			body: `{"status": "DELIVERED"}`,
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					UpdateStatus(mock.Anything, orderID, entities.OrderStatusDelivered, "admin").
					Return(entities.Order{}, entities.ErrInvalidTransition).Once()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"invalid status transition"`,
		},
		{
			name: "not found",
			body: `{"status": "CANCELLED"}`,
			mockBehavior: func(svc *mocks.MockOrderService) {
				svc.EXPECT().
					UpdateStatus(mock.Anything, orderID, entities.OrderStatusCancelled, "admin").
					Return(entities.Order{}, entities.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, svc := newAdminRouter(t)
			tc.mockBehavior(svc)

			status, _, body := do(t, r, adminRequest(http.MethodPatch, "/api/admin/orders/"+orderID+"/status", tc.body))

			assert.Equal(t, tc.wantStatus, status)
			assert.Contains(t, body, tc.wantBody)

			if status == http.StatusOK {
				var resp handler.Order
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, orderID, resp.ID)
			}
		})
	}
}
