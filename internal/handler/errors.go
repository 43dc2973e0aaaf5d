package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
)

const retryAfter = 5 * time.Second

// writeServiceError переводит доменную ошибку в HTTP ответ.
func writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	var (
		notFound     *entities.ProductNotFoundError
		insufficient *entities.InsufficientInventoryError
		oversold     *entities.OversoldInventoryError
	)

	switch {
	case errors.As(err, &notFound):
		utils.WriteErrorDetails(w, "product not found", map[string]any{"productIds": notFound.ProductIDs}, http.StatusBadRequest)
	case errors.As(err, &insufficient):
		utils.WriteErrorDetails(w, insufficient.Error(), map[string]any{
			"productId": insufficient.ProductID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		}, http.StatusConflict)
	case errors.As(err, &oversold):
		logger.ErrorContext(ctx, "paid order could not be backed by stock", slog.String("product_id", oversold.ProductID))
		utils.WriteErrorDetails(w, "inventory oversold, the payment will be refunded", map[string]any{"productId": oversold.ProductID}, http.StatusConflict)

	case errors.Is(err, entities.ErrEmptyCart),
		errors.Is(err, entities.ErrInvalidOrder),
		errors.Is(err, entities.ErrInvalidBuyer),
		errors.Is(err, entities.ErrPaymentNotConfirmed),
		errors.Is(err, entities.ErrPaymentMismatch):
		utils.WriteError(w, rootMessage(err), http.StatusBadRequest)
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrPaymentStatusConflict):
		utils.WriteError(w, rootMessage(err), http.StatusConflict)
	case entities.IsRetryable(err):
		logger.WarnContext(ctx, "dependency unavailable", slog.Any("error", err))
		utils.WriteRetryable(w, "service temporarily unavailable, retry later", retryAfter)
	default:
		logger.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// rootMessage отдает клиенту текст доменной ошибки без внутренних оберток.
func rootMessage(err error) string {
	for _, target := range []error{
		entities.ErrEmptyCart,
		entities.ErrInvalidOrder,
		entities.ErrInvalidBuyer,
		entities.ErrPaymentNotConfirmed,
		entities.ErrPaymentMismatch,
		entities.ErrInvalidTransition,
		entities.ErrPaymentStatusConflict,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// resultLabel метка результата для метрик.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case entities.IsRetryable(err):
		return "unavailable"
	case errors.Is(err, entities.ErrOversoldInventory):
		return "oversold"
	case errors.Is(err, entities.ErrInsufficientInventory),
		errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrPaymentStatusConflict):
		return "conflict"
	case errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrProductNotFound),
		errors.Is(err, entities.ErrEmptyCart),
		errors.Is(err, entities.ErrInvalidOrder),
		errors.Is(err, entities.ErrInvalidBuyer),
		errors.Is(err, entities.ErrPaymentNotConfirmed),
		errors.Is(err, entities.ErrPaymentMismatch):
		return "rejected"
	default:
		return "error"
	}
}
