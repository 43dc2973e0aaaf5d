package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
)

// CompleteCheckout finalizes a paid order exactly once: the PAID transition
// and every stock decrement commit together or not at all. Repeated calls
// for an already paid order report CompletionAlreadyCompleted.
func (s *checkoutService) CompleteCheckout(ctx context.Context, orderID, paymentIntentID string) (entities.CompletionStatus, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.IsPaid() {
		return entities.CompletionAlreadyCompleted, nil
	}
	if order.Status != entities.OrderStatusPending || !order.PaymentStatus.CanTransitionTo(entities.PaymentStatusPaid) {
		return "", fmt.Errorf("%w: order is %s/%s", entities.ErrInvalidTransition, order.Status, order.PaymentStatus)
	}

	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	if intent.Status != entities.IntentStatusSucceeded {
		return "", fmt.Errorf("%w: intent is %s", entities.ErrPaymentNotConfirmed, intent.Status)
	}
	if err := verifyIntent(order, intent); err != nil {
		s.logger.WarnContext(ctx, "payment intent does not match order",
			slog.String("order_id", order.ID),
			slog.String("payment_intent_id", intent.ID),
			slog.Any("error", err),
		)
		return "", err
	}

	upd := entities.StatusUpdate{
		Status:          entities.OrderStatusConfirmed,
		PaymentStatus:   entities.PaymentStatusPaid,
		PaymentIntentID: paymentIntentID,
		At:              time.Now().UTC(),
	}

	err = s.confirm(ctx, order, upd)
	if errors.Is(err, entities.ErrPaymentStatusConflict) {
		// another completion or a cancellation won the race
		current, rerr := s.loadOrder(ctx, orderID)
		if rerr != nil {
			return "", err
		}
		if current.IsPaid() {
			return entities.CompletionAlreadyCompleted, nil
		}
		if current.Status != entities.OrderStatusPending {
			return "", fmt.Errorf("%w: order is %s", entities.ErrInvalidTransition, current.Status)
		}
		return "", err
	}
	if errors.Is(err, entities.ErrOversoldInventory) {
		s.logger.ErrorContext(ctx, "paid order cannot be backed by stock, needs reconciliation",
			slog.String("order_id", order.ID),
			slog.String("order_number", order.OrderNumber),
			slog.String("payment_intent_id", paymentIntentID),
			slog.Any("error", err),
		)
		return "", err
	}
	if err != nil {
		return "", err
	}

	s.cache.Delete(order.ID)

	order.Status = upd.Status
	order.PaymentStatus = upd.PaymentStatus
	order.PaymentIntentID = upd.PaymentIntentID
	order.ConfirmedAt = &upd.At
	order.UpdatedAt = upd.At

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
	)

	s.bg.Go(ctx, "audit", func(ctx context.Context) error {
		return s.audit.Record(ctx, entities.AuditRecord{
			UserID:   order.Buyer.UserID,
			Action:   entities.AuditActionCheckoutCompleted,
			Entity:   entities.AuditEntityOrder,
			EntityID: order.ID,
			Changes: map[string]any{
				"status":          map[string]any{"from": entities.OrderStatusPending, "to": upd.Status},
				"paymentStatus":   map[string]any{"from": entities.PaymentStatusPending, "to": upd.PaymentStatus},
				"paymentIntentId": paymentIntentID,
			},
			CreatedAt: upd.At,
		})
	})
	s.bg.Go(ctx, "notify", func(ctx context.Context) error {
		return s.notifier.OrderConfirmed(ctx, order)
	})

	return entities.CompletionCompleted, nil
}

func (s *checkoutService) confirm(ctx context.Context, order entities.Order, upd entities.StatusUpdate) error {
	changes := entities.SortedStockChanges(order.Quantities())

	fn := func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			if err := s.orders.UpdateStatus(ctx, order.ID, entities.PaymentStatusPending, upd); err != nil {
				return err
			}
			for _, c := range changes {
				err := s.products.Decrement(ctx, c.ProductID, c.Quantity)
				if errors.Is(err, entities.ErrInsufficientStock) {
					return &entities.OversoldInventoryError{ProductID: c.ProductID}
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := utils.Retry(ctx, s.retry, fn, entities.ErrPaymentStatusConflict, entities.ErrOversoldInventory)
	if err == nil || errors.Is(err, entities.ErrPaymentStatusConflict) || errors.Is(err, entities.ErrOversoldInventory) {
		return err
	}
	return persistenceErr("failed to confirm order", err)
}

func (s *checkoutService) loadOrder(ctx context.Context, id string) (entities.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, entities.ErrOrderNotFound) {
		return entities.Order{}, err
	}
	if err != nil {
		return entities.Order{}, persistenceErr("failed to load order", err)
	}
	return order, nil
}

func verifyIntent(order entities.Order, intent entities.PaymentIntent) error {
	if ref, ok := intent.Metadata["orderId"]; ok && ref != order.ID {
		return fmt.Errorf("%w: intent belongs to order %s", entities.ErrPaymentMismatch, ref)
	}
	if want := entities.ToMinorUnits(order.Total); intent.AmountMinor != want {
		return fmt.Errorf("%w: intent amount %d, order total %d", entities.ErrPaymentMismatch, intent.AmountMinor, want)
	}
	return nil
}
