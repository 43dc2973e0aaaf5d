package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/trm"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const exportPageSize = 500

type orderService struct {
	logger    *slog.Logger
	repo      OrderRepo
	txManager trm.Manager
	audit     AuditSink
	cache     Cache
	group     singleflight.Group
	retry     utils.RetryConfig
	bg        *background
}

func NewOrderService(logger *slog.Logger, repo OrderRepo, txManager trm.Manager, audit AuditSink, cache Cache) *orderService {
	logger = logger.With(slog.String("service", "order"))
	return &orderService{
		logger:    logger,
		repo:      repo,
		txManager: txManager,
		audit:     audit,
		cache:     cache,
		retry:     defaultRetry,
		bg:        &background{logger: logger},
	}
}

// cacheable reports whether o may be cached. Pending orders are about to be
// confirmed or cancelled, and a read racing that write would pin the stale
// state until the entry expires.
func cacheable(o entities.Order) bool {
	return o.Status != entities.OrderStatusPending
}

func (s *orderService) GetOrder(ctx context.Context, id string) (entities.Order, error) {
	if data, ok := s.cache.Get(id); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err != nil {
			s.logger.Error("failed to unmarshal order", slog.String("order_id", id), slog.Any("error", err))
			return entities.Order{}, err
		}
		return order, nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		var order entities.Order
		fn := func() error {
			var err error
			order, err = s.repo.GetByID(ctx, id)
			return err
		}
		if err := utils.Retry(ctx, s.retry, fn, entities.ErrOrderNotFound); err != nil {
			return nil, err
		}

		if !cacheable(order) {
			return order, nil
		}
		data, err := order.Marshal()
		if err != nil {
			s.logger.Error("failed to marshal order", slog.String("order_id", id), slog.Any("error", err))
			return nil, err
		}
		s.cache.Set(id, data)
		return order, nil
	})
	if errors.Is(err, entities.ErrOrderNotFound) {
		return entities.Order{}, err
	}
	if err != nil {
		return entities.Order{}, persistenceErr("failed to get order", err)
	}
	return v.(entities.Order), nil
}

// ListOrders returns one page of orders matching f together with the total
// number of matches.
func (s *orderService) ListOrders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int, error) {
	var (
		orders []entities.Order
		total  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.repo.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, persistenceErr("failed to list orders", err)
	}
	return orders, total, nil
}

// ExportOrders streams every order matching f to fn, newest first. All pages
// come from one read-only snapshot, so orders created mid-export do not shift
// the offsets.
func (s *orderService) ExportOrders(ctx context.Context, f entities.OrderFilter, fn func(entities.Order) error) error {
	f.Limit = exportPageSize
	f.Offset = 0

	var sinkErr error
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		for {
			page, err := s.repo.List(ctx, f)
			if err != nil {
				return err
			}
			for _, o := range page {
				if err := fn(o); err != nil {
					sinkErr = err
					return err
				}
			}
			if len(page) < exportPageSize {
				return nil
			}
			f.Offset += exportPageSize
		}
	}, trm.ReadOnly(), trm.WithIsolation(sql.LevelRepeatableRead))

	if sinkErr != nil {
		return sinkErr
	}
	if err != nil {
		return persistenceErr("failed to export orders", err)
	}
	return nil
}

// UpdateStatus applies an administrative fulfillment transition. Confirmation
// is reserved for payment completion.
func (s *orderService) UpdateStatus(ctx context.Context, id string, next entities.OrderStatus, actor string) (entities.Order, error) {
	if !next.Valid() || next == entities.OrderStatusConfirmed {
		return entities.Order{}, fmt.Errorf("%w: cannot move order to %q", entities.ErrInvalidTransition, next)
	}

	order, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, entities.ErrOrderNotFound) {
		return entities.Order{}, err
	}
	if err != nil {
		return entities.Order{}, persistenceErr("failed to load order", err)
	}

	prev := order.Status
	if prev.IsTerminal() {
		return entities.Order{}, fmt.Errorf("%w: order is already %s", entities.ErrInvalidTransition, prev)
	}
	if !prev.CanTransitionTo(next) {
		return entities.Order{}, fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, prev, next)
	}

	upd := entities.StatusUpdate{Status: next, At: time.Now().UTC()}
	if err := s.repo.TransitionStatus(ctx, id, prev, upd); err != nil {
		if errors.Is(err, entities.ErrInvalidTransition) {
			return entities.Order{}, fmt.Errorf("%w: order changed concurrently", err)
		}
		return entities.Order{}, persistenceErr("failed to update order status", err)
	}
	s.cache.Delete(id)

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", id),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
	)
	s.bg.Go(ctx, "audit", func(ctx context.Context) error {
		return s.audit.Record(ctx, entities.AuditRecord{
			UserID:    actor,
			Action:    entities.AuditActionStatusChanged,
			Entity:    entities.AuditEntityOrder,
			EntityID:  id,
			Changes:   map[string]any{"status": map[string]any{"from": prev, "to": next}},
			CreatedAt: upd.At,
		})
	})

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Order{}, persistenceErr("failed to reload order", err)
	}
	return updated, nil
}

// WarmUpCache loads the most recent orders into the cache.
func (s *orderService) WarmUpCache(ctx context.Context, count int) error {
	orders, err := s.repo.List(ctx, entities.OrderFilter{Limit: count})
	if err != nil {
		return fmt.Errorf("failed to load latest orders: %w", err)
	}
	warmed := 0
	for _, order := range orders {
		if !cacheable(order) {
			continue
		}
		data, err := order.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal order: %w", err)
		}
		s.cache.Set(order.ID, data)
		warmed++
	}
	s.logger.Info("cache warmed up", slog.Int("orders", warmed))
	return nil
}

// Wait blocks until in-flight side effects are done.
func (s *orderService) Wait() {
	s.bg.Wait()
}
