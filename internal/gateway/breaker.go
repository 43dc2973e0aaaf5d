package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/sony/gobreaker/v2"
)

type Gateway interface {
	CreateIntent(ctx context.Context, p entities.CreateIntentParams) (entities.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (entities.PaymentIntent, error)
}

// breakerGateway fails fast with ErrGatewayUnavailable while the processor is
// known to be down. Only unavailability counts as a failure; a declined or
// unknown intent is an answer, not an outage.
type breakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[entities.PaymentIntent]
}

func WithBreaker(logger *slog.Logger, cfg config.Gateway, next Gateway) *breakerGateway {
	logger = logger.With(slog.String("component", "gateway_breaker"))
	maxFailures := cfg.BreakerMaxFailures

	cb := gobreaker.NewCircuitBreaker[entities.PaymentIntent](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, entities.ErrGatewayUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.Set(float64(to))
		},
	})

	return &breakerGateway{next: next, cb: cb}
}

func (g *breakerGateway) CreateIntent(ctx context.Context, p entities.CreateIntentParams) (entities.PaymentIntent, error) {
	return g.execute("create", func() (entities.PaymentIntent, error) {
		return g.next.CreateIntent(ctx, p)
	})
}

func (g *breakerGateway) GetIntent(ctx context.Context, id string) (entities.PaymentIntent, error) {
	return g.execute("get", func() (entities.PaymentIntent, error) {
		return g.next.GetIntent(ctx, id)
	})
}

func (g *breakerGateway) execute(op string, fn func() (entities.PaymentIntent, error)) (entities.PaymentIntent, error) {
	start := time.Now()
	intent, err := g.cb.Execute(fn)
	observeCall(op, err, time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return entities.PaymentIntent{}, fmt.Errorf("%w: %v", entities.ErrGatewayUnavailable, err)
	}
	return intent, err
}
