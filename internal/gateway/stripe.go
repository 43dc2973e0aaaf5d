package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	metaOrderID     = "orderId"
	metaOrderNumber = "orderNumber"
	metaCustomer    = "customerName"
)

type stripeGateway struct {
	logger  *slog.Logger
	api     *client.API
	timeout time.Duration
}

func NewStripeGateway(logger *slog.Logger, cfg config.Gateway) *stripeGateway {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &stripeGateway{
		logger:  logger.With(slog.String("component", "stripe")),
		api:     client.New(cfg.SecretKey, stripe.NewBackends(httpClient)),
		timeout: cfg.Timeout,
	}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, p entities.CreateIntentParams) (entities.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(entities.ToMinorUnits(p.Amount)),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(p.ReceiptEmail)
	}
	if p.Shipping.Line1 != "" {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name: stripe.String(p.CustomerName),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(p.Shipping.Line1),
				Line2:      stripe.String(p.Shipping.Line2),
				City:       stripe.String(p.Shipping.City),
				State:      stripe.String(p.Shipping.State),
				PostalCode: stripe.String(p.Shipping.PostalCode),
				Country:    stripe.String(p.Shipping.Country),
			},
		}
		if p.Phone != "" {
			params.Shipping.Phone = stripe.String(p.Phone)
		}
	}
	params.Context = ctx
	params.SetIdempotencyKey(IdempotencyKey(p.OrderID))
	params.AddMetadata(metaOrderID, p.OrderID)
	params.AddMetadata(metaOrderNumber, p.OrderNumber)
	if p.CustomerName != "" {
		params.AddMetadata(metaCustomer, p.CustomerName)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return entities.PaymentIntent{}, g.mapError("create", err)
	}
	return intentToEntity(pi), nil
}

func (g *stripeGateway) GetIntent(ctx context.Context, id string) (entities.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return entities.PaymentIntent{}, g.mapError("get", err)
	}
	return intentToEntity(pi), nil
}

// mapError keeps "we could not reach the processor" apart from "the processor
// said no": only the former is retryable.
func (g *stripeGateway) mapError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("%w: %s", entities.ErrPaymentMismatch, stripeErr.Msg)
		case stripeErr.HTTPStatusCode == http.StatusTooManyRequests,
			stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
			g.logger.Warn("stripe unavailable", slog.String("op", op), slog.Any("error", err))
			return fmt.Errorf("%w: %s", entities.ErrGatewayUnavailable, stripeErr.Msg)
		default:
			return fmt.Errorf("stripe %s intent: %s", op, stripeErr.Msg)
		}
	}
	g.logger.Warn("stripe call failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%w: %v", entities.ErrGatewayUnavailable, err)
}

// IdempotencyKey derives the processor idempotency key from the order id so a
// retried create never produces a second intent for the same order.
func IdempotencyKey(orderID string) string {
	return "checkout-" + orderID
}

func intentToEntity(pi *stripe.PaymentIntent) entities.PaymentIntent {
	return entities.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       statusToEntity(pi.Status),
		Metadata:     pi.Metadata,
	}
}

func statusToEntity(s stripe.PaymentIntentStatus) entities.IntentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return entities.IntentStatusSucceeded
	case stripe.PaymentIntentStatusProcessing:
		return entities.IntentStatusProcessing
	case stripe.PaymentIntentStatusCanceled:
		return entities.IntentStatusCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return entities.IntentStatusFailed
	default:
		return entities.IntentStatusRequiresAction
	}
}
