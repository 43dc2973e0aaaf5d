package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/trm"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxOrderNumberAttempts = 3

type CheckoutConfig struct {
	OrderNumberPrefix string
	Currency          string
	Country           string
}

type checkoutService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	products  ProductRepo
	gateway   PaymentGateway
	pricing   PricingPolicy
	audit     AuditSink
	notifier  Notifier
	cache     Cache
	cfg       CheckoutConfig
	retry     utils.RetryConfig
	bg        *background
}

type CheckoutDeps struct {
	TxManager trm.Manager
	Orders    OrderRepo
	Products  ProductRepo
	Gateway   PaymentGateway
	Pricing   PricingPolicy
	Audit     AuditSink
	Notifier  Notifier
	Cache     Cache
}

func NewCheckoutService(logger *slog.Logger, deps CheckoutDeps, cfg CheckoutConfig) *checkoutService {
	logger = logger.With(slog.String("service", "checkout"))
	return &checkoutService{
		logger:    logger,
		txManager: deps.TxManager,
		orders:    deps.Orders,
		products:  deps.Products,
		gateway:   deps.Gateway,
		pricing:   deps.Pricing,
		audit:     deps.Audit,
		notifier:  deps.Notifier,
		cache:     deps.Cache,
		cfg:       cfg,
		retry:     defaultRetry,
		bg:        &background{logger: logger},
	}
}

// BeginCheckout prices the cart against one catalog snapshot, persists a
// PENDING order and opens a payment intent for its total. Stock is only
// checked here, never reserved.
func (s *checkoutService) BeginCheckout(ctx context.Context, req entities.CheckoutRequest) (entities.CheckoutSession, error) {
	lines := entities.MergeLines(req.Lines)
	if len(lines) == 0 {
		return entities.CheckoutSession{}, entities.ErrEmptyCart
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return entities.CheckoutSession{}, fmt.Errorf("%w: quantity for %s must be positive", entities.ErrInvalidOrder, l.ProductID)
		}
		ids = append(ids, l.ProductID)
	}

	buyer := req.Buyer()
	if !buyer.Valid() {
		return entities.CheckoutSession{}, entities.ErrInvalidBuyer
	}

	snapshot, err := s.products.Snapshot(ctx, ids)
	if err != nil {
		if errors.Is(err, entities.ErrProductNotFound) {
			return entities.CheckoutSession{}, err
		}
		return entities.CheckoutSession{}, persistenceErr("failed to read catalog", err)
	}

	order, err := s.buildOrder(req, buyer, lines, snapshot)
	if err != nil {
		return entities.CheckoutSession{}, err
	}

	if err := s.persist(ctx, &order); err != nil {
		return entities.CheckoutSession{}, err
	}
	s.logger.DebugContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("total", order.Total.StringFixed(2)),
	)

	s.bg.Go(ctx, "audit", func(ctx context.Context) error {
		return s.audit.Record(ctx, entities.AuditRecord{
			UserID:   order.Buyer.UserID,
			Action:   entities.AuditActionCheckoutCreated,
			Entity:   entities.AuditEntityOrder,
			EntityID: order.ID,
			Changes: map[string]any{
				"orderNumber": order.OrderNumber,
				"total":       order.Total.StringFixed(2),
				"items":       len(order.Items),
			},
			CreatedAt: order.CreatedAt,
		})
	})

	intent, err := s.gateway.CreateIntent(ctx, entities.CreateIntentParams{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Amount:       order.Total,
		Currency:     s.cfg.Currency,
		ReceiptEmail: req.Customer.Email,
		CustomerName: req.Customer.FullName(),
		Phone:        req.Customer.Phone,
		Shipping: entities.Address{
			Line1:      req.Shipping.Line1,
			Line2:      req.Shipping.Line2,
			City:       req.Shipping.City,
			State:      req.Shipping.State,
			PostalCode: req.Shipping.PostalCode,
			Country:    s.cfg.Country,
		},
	})
	if err != nil {
		// the order stays PENDING without an intent; nothing references it
		s.logger.WarnContext(ctx, "payment intent not created",
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)
		return entities.CheckoutSession{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return entities.CheckoutSession{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          order.Total,
		Currency:        s.cfg.Currency,
	}, nil
}

func (s *checkoutService) buildOrder(req entities.CheckoutRequest, buyer entities.Buyer, lines []entities.CartLine, snapshot map[string]entities.ProductSnapshot) (entities.Order, error) {
	items := make([]entities.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, l := range lines {
		p := snapshot[l.ProductID]
		if l.Quantity > p.AvailableStock {
			return entities.Order{}, &entities.InsufficientInventoryError{
				ProductID: l.ProductID,
				Name:      p.Name,
				Requested: l.Quantity,
				Available: p.AvailableStock,
			}
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, entities.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   l.ProductID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			UnitPrice:   p.Price,
			Quantity:    l.Quantity,
			TotalPrice:  lineTotal,
		})
	}

	quote := s.pricing.Quote(subtotal, items)
	now := time.Now().UTC()

	order := entities.Order{
		ID:              uuid.NewString(),
		Status:          entities.OrderStatusPending,
		PaymentStatus:   entities.PaymentStatusPending,
		Buyer:           buyer,
		ContactEmail:    req.Customer.Email,
		ShippingSummary: req.Shipping.ShippingSummary(),
		CustomerNotes:   req.Notes,
		Subtotal:        subtotal,
		ShippingCost:    quote.Shipping,
		Tax:             quote.Tax,
		DiscountAmount:  quote.Discount,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Total = order.ComputeTotal()

	if err := order.Validate(); err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

// persist writes the order and its items in one transaction, drawing a new
// order number when the previous one is already taken.
func (s *checkoutService) persist(ctx context.Context, order *entities.Order) error {
	for attempt := 1; ; attempt++ {
		order.OrderNumber = NewOrderNumber(s.cfg.OrderNumberPrefix, order.CreatedAt)

		err := s.txManager.Do(ctx, func(ctx context.Context) error {
			return s.orders.Create(ctx, *order)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, entities.ErrOrderNumberTaken) || attempt == maxOrderNumberAttempts {
			return persistenceErr("failed to save order", err)
		}
		s.logger.DebugContext(ctx, "order number taken, regenerating", slog.String("order_number", order.OrderNumber))
	}
}

// Wait blocks until in-flight side effects are done.
func (s *checkoutService) Wait() {
	s.bg.Wait()
}
