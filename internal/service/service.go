package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
)

type OrderRepo interface {
	Create(ctx context.Context, order entities.Order) error
	GetByID(ctx context.Context, id string) (entities.Order, error)
	// UpdateStatus is a compare-and-set on payment status. Confirming also
	// requires the order to still be PENDING.
	UpdateStatus(ctx context.Context, id string, expected entities.PaymentStatus, upd entities.StatusUpdate) error
	// TransitionStatus is a compare-and-set on fulfillment status.
	TransitionStatus(ctx context.Context, id string, expected entities.OrderStatus, upd entities.StatusUpdate) error
	List(ctx context.Context, f entities.OrderFilter) ([]entities.Order, error)
	Count(ctx context.Context, f entities.OrderFilter) (int, error)
}

type ProductRepo interface {
	Snapshot(ctx context.Context, ids []string) (map[string]entities.ProductSnapshot, error)
	Decrement(ctx context.Context, productID string, quantity int) error
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, p entities.CreateIntentParams) (entities.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (entities.PaymentIntent, error)
}

type AuditSink interface {
	Record(ctx context.Context, rec entities.AuditRecord) error
}

type Notifier interface {
	OrderConfirmed(ctx context.Context, order entities.Order) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

var defaultRetry = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  5,
	Multiplier:   2,
}

const sideEffectTimeout = 5 * time.Second

// background runs fire-and-forget side effects (audit, notifications).
// Their failures are logged and never reach the caller.
type background struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

func (b *background) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			b.logger.WarnContext(ctx, "side effect failed", slog.String("side_effect", name), slog.Any("error", err))
		}
	}()
}

func (b *background) Wait() {
	b.wg.Wait()
}

func persistenceErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, entities.ErrPersistence, err)
}
