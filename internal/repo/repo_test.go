//go:build integration

package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/internal/postgres"
	"github.com/SergeyBogomolovv/checkout-service/internal/repo"
	"github.com/SergeyBogomolovv/checkout-service/pkg/trm"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := postgres.New(config.Postgres{
		Host:         host,
		Port:         port.Int(),
		DBName:       "testdb",
		User:         "testuser",
		Password:     "testpass",
		SSLMode:      "disable",
		MaxOpenConns: 10,
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

func seedProduct(t *testing.T, db *sqlx.DB, id string, price string, inventory int) {
	_, err := db.Exec(
		`INSERT INTO products (id, name, sku, price, inventory) VALUES ($1, $2, $3, $4, $5)`,
		id, "Product "+id, "SKU-"+id, price, inventory,
	)
	require.NoError(t, err)
}

func inventoryOf(t *testing.T, db *sqlx.DB, id string) int {
	var n int
	require.NoError(t, db.Get(&n, `SELECT inventory FROM products WHERE id = $1`, id))
	return n
}

func newTestOrder(productID string, qty int) entities.Order {
	price := decimal.RequireFromString("9.99")
	total := price.Mul(decimal.NewFromInt(int64(qty)))
	now := time.Now().UTC().Truncate(time.Microsecond)
	return entities.Order{
		ID:              uuid.NewString(),
		OrderNumber:     "ORD-" + uuid.NewString()[:8],
		Status:          entities.OrderStatusPending,
		PaymentStatus:   entities.PaymentStatusPending,
		Buyer:           entities.Buyer{GuestEmail: "guest@example.com"},
		ContactEmail:    "guest@example.com",
		ShippingSummary: "1 Main St\nSpringfield, IL 62701",
		Subtotal:        total,
		Total:           total,
		Items: []entities.OrderItem{{
			ID:          uuid.NewString(),
			ProductID:   productID,
			ProductName: "Product " + productID,
			ProductSKU:  "SKU-" + productID,
			UnitPrice:   price,
			Quantity:    qty,
			TotalPrice:  total,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepo_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	order := newTestOrder("p1", 2)
	require.NoError(t, orders.Create(ctx, order))

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, entities.OrderStatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("19.98")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Empty(t, got.PaymentIntentID)
	assert.Equal(t, "guest@example.com", got.ContactEmail)

	_, err = orders.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}

func TestOrderRepo_DuplicateOrderNumber(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	first := newTestOrder("p1", 1)
	require.NoError(t, orders.Create(ctx, first))

	second := newTestOrder("p1", 1)
	second.OrderNumber = first.OrderNumber
	assert.ErrorIs(t, orders.Create(ctx, second), entities.ErrOrderNumberTaken)
}

func TestOrderRepo_CreateRollsBackItems(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	orders := repo.NewOrderRepo(db)
	tx := trm.NewManager(db)

	// product is missing, the item insert violates the foreign key
	order := newTestOrder("missing", 1)
	err := tx.Do(ctx, func(ctx context.Context) error {
		return orders.Create(ctx, order)
	})
	require.Error(t, err)

	_, err = orders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)

	var items int
	require.NoError(t, db.Get(&items, `SELECT COUNT(*) FROM order_items WHERE order_id = $1`, order.ID))
	assert.Zero(t, items)
}

func TestOrderRepo_UpdateStatusIsCompareAndSet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	order := newTestOrder("p1", 1)
	require.NoError(t, orders.Create(ctx, order))

	upd := entities.StatusUpdate{
		Status:          entities.OrderStatusConfirmed,
		PaymentStatus:   entities.PaymentStatusPaid,
		PaymentIntentID: "pi_123",
		At:              time.Now(),
	}
	require.NoError(t, orders.UpdateStatus(ctx, order.ID, entities.PaymentStatusPending, upd))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, order.ID, entities.PaymentStatusPending, upd), entities.ErrPaymentStatusConflict)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, entities.OrderStatusConfirmed, got.Status)
	assert.Equal(t, "pi_123", got.PaymentIntentID)
	assert.NotNil(t, got.ConfirmedAt)
}

func TestOrderRepo_ConfirmDoesNotOverrideCancellation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	order := newTestOrder("p1", 1)
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, orders.TransitionStatus(ctx, order.ID, entities.OrderStatusPending, entities.StatusUpdate{
		Status: entities.OrderStatusCancelled, At: time.Now(),
	}))

	err := orders.UpdateStatus(ctx, order.ID, entities.PaymentStatusPending, entities.StatusUpdate{
		Status:          entities.OrderStatusConfirmed,
		PaymentStatus:   entities.PaymentStatusPaid,
		PaymentIntentID: "pi_123",
		At:              time.Now(),
	})
	assert.ErrorIs(t, err, entities.ErrPaymentStatusConflict)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusCancelled, got.Status)
	assert.Equal(t, entities.PaymentStatusPending, got.PaymentStatus)
	assert.Empty(t, got.PaymentIntentID)
	assert.Nil(t, got.ConfirmedAt)
}

func TestOrderRepo_ItemPricesSurviveCatalogChanges(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	order := newTestOrder("p1", 3)
	require.NoError(t, orders.Create(ctx, order))

	_, err := db.Exec(`UPDATE products SET price = 24.50, name = 'Renamed' WHERE id = 'p1'`)
	require.NoError(t, err)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, got.Items[0].TotalPrice.Equal(decimal.RequireFromString("29.97")))
	assert.Equal(t, "Product p1", got.Items[0].ProductName)
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("29.97")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("29.97")))

	snap, err := repo.NewProductRepo(db).Snapshot(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.True(t, snap["p1"].Price.Equal(decimal.RequireFromString("24.5")))
}

func TestOrderRepo_TransitionStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	order := newTestOrder("p1", 1)
	require.NoError(t, orders.Create(ctx, order))

	err := orders.TransitionStatus(ctx, order.ID, entities.OrderStatusConfirmed, entities.StatusUpdate{
		Status: entities.OrderStatusProcessing, At: time.Now(),
	})
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	require.NoError(t, orders.TransitionStatus(ctx, order.ID, entities.OrderStatusPending, entities.StatusUpdate{
		Status: entities.OrderStatusCancelled, At: time.Now(),
	}))
}

func TestOrderRepo_ListAndCount(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	orders := repo.NewOrderRepo(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, orders.Create(ctx, newTestOrder("p1", 1)))
	}
	paid := newTestOrder("p1", 2)
	paid.Buyer = entities.Buyer{UserID: "user-42"}
	require.NoError(t, orders.Create(ctx, paid))
	require.NoError(t, orders.UpdateStatus(ctx, paid.ID, entities.PaymentStatusPending, entities.StatusUpdate{
		Status: entities.OrderStatusConfirmed, PaymentStatus: entities.PaymentStatusPaid, At: time.Now(),
	}))

	all, err := orders.List(ctx, entities.OrderFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for _, o := range all {
		assert.Len(t, o.Items, 1)
	}

	n, err := orders.Count(ctx, entities.OrderFilter{Status: entities.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := orders.List(ctx, entities.OrderFilter{Search: "user-4", Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, paid.ID, found[0].ID)

	page, err := orders.List(ctx, entities.OrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestProductRepo_Snapshot(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	seedProduct(t, db, "p2", "5.00", 0)
	_, err := db.Exec(`UPDATE products SET is_active = FALSE WHERE id = 'p2'`)
	require.NoError(t, err)
	products := repo.NewProductRepo(db)

	snap, err := products.Snapshot(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 10, snap["p1"].AvailableStock)
	assert.True(t, snap["p1"].Price.Equal(decimal.RequireFromString("9.99")))

	_, err = products.Snapshot(ctx, []string{"p1", "p2", "p3"})
	var nf *entities.ProductNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"p2", "p3"}, nf.ProductIDs)
}

func TestProductRepo_Decrement(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	products := repo.NewProductRepo(db)

	require.NoError(t, products.Decrement(ctx, "p1", 6))
	assert.Equal(t, 4, inventoryOf(t, db, "p1"))

	err := products.Decrement(ctx, "p1", 6)
	assert.ErrorIs(t, err, entities.ErrInsufficientStock)
	assert.Equal(t, 4, inventoryOf(t, db, "p1"))
}

func TestProductRepo_ConcurrentDecrementNeverOversells(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedProduct(t, db, "p1", "9.99", 10)
	products := repo.NewProductRepo(db)
	tx := trm.NewManager(db)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.Do(ctx, func(ctx context.Context) error {
				return products.Decrement(ctx, "p1", 3)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, entities.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, inventoryOf(t, db, "p1"))
}

func TestAuditRepo_Record(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	audit := repo.NewAuditRepo(db)

	require.NoError(t, audit.Record(ctx, entities.AuditRecord{
		Action:    entities.AuditActionCheckoutCompleted,
		Entity:    entities.AuditEntityOrder,
		EntityID:  "order-1",
		Changes:   map[string]any{"paymentStatus": "PAID"},
		CreatedAt: time.Now(),
	}))

	var details string
	require.NoError(t, db.Get(&details, `SELECT details::text FROM audit_logs WHERE entity_id = 'order-1'`))
	assert.JSONEq(t, `{"paymentStatus": "PAID"}`, details)
}
