package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/internal/middleware"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CheckoutService interface {
	BeginCheckout(ctx context.Context, req entities.CheckoutRequest) (entities.CheckoutSession, error)
	CompleteCheckout(ctx context.Context, orderID, paymentIntentID string) (entities.CompletionStatus, error)
}

type OrderGetter interface {
	GetOrder(ctx context.Context, id string) (entities.Order, error)
}

type HTTPHandler struct {
	logger      *slog.Logger
	validate    *validator.Validate
	checkout    CheckoutService
	orders      OrderGetter
	idempotency func(http.Handler) http.Handler
}

// NewHTTPHandler создает обработчик публичного API. idempotency может быть nil.
func NewHTTPHandler(logger *slog.Logger, checkout CheckoutService, orders OrderGetter, idempotency func(http.Handler) http.Handler) *HTTPHandler {
	if idempotency == nil {
		idempotency = func(next http.Handler) http.Handler { return next }
	}
	return &HTTPHandler{
		logger:      logger.With(slog.String("handler", "http")),
		validate:    validator.New(),
		checkout:    checkout,
		orders:      orders,
		idempotency: idempotency,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity)
		r.With(h.idempotency).Post("/checkout", h.BeginCheckout)
		r.Post("/checkout/complete", h.CompleteCheckout)
		r.Get("/orders/{id}", h.GetOrder)
	})
}

// BeginCheckout оформляет заказ и создает платеж.
// @Summary      Оформить заказ
// @Description  Проверяет корзину, фиксирует цены, создает заказ в статусе PENDING и платежное намерение
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string           false  "Ключ идемпотентности"
// @Param        X-User-ID        header    string           false  "Идентификатор авторизованного пользователя"
// @Param        request          body      CheckoutRequest  true   "Корзина и данные покупателя"
// @Success      201  {object}  CheckoutResponse
// @Failure      400  {object}  utils.ErrorResponse "Ошибка валидации или товар не найден"
// @Failure      409  {object}  utils.ErrorResponse "Недостаточно товара на складе"
// @Failure      503  {object}  utils.ErrorResponse "Платежный шлюз недоступен"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /api/checkout [post]
func (h *HTTPHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req CheckoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	session, err := h.checkout.BeginCheckout(ctx, CheckoutJSONToEntity(req, middleware.UserID(ctx)))
	checkoutsTotal.WithLabelValues(resultLabel(err)).Inc()
	checkoutDuration.WithLabelValues("begin").Observe(time.Since(start).Seconds())
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteJSON(w, SessionEntityToJSON(session), http.StatusCreated)
}

// CompleteCheckout подтверждает оплату и списывает товар со склада.
// @Summary      Завершить оформление
// @Description  Сверяет платеж со шлюзом, переводит заказ в CONFIRMED/PAID и списывает остатки. Повторный вызов безопасен
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request  body      CompleteRequest  true  "Заказ и платеж"
// @Success      200  {object}  CompleteResponse
// @Failure      400  {object}  utils.ErrorResponse "Платеж не подтвержден или не совпадает с заказом"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      409  {object}  utils.ErrorResponse "Товар закончился или статус заказа не позволяет завершение"
// @Failure      503  {object}  utils.ErrorResponse "Платежный шлюз недоступен"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /api/checkout/complete [post]
func (h *HTTPHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req CompleteRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	status, err := h.checkout.CompleteCheckout(ctx, req.OrderID, req.PaymentIntentID)
	label := resultLabel(err)
	if status == entities.CompletionAlreadyCompleted {
		label = "already_completed"
	}
	completionsTotal.WithLabelValues("http", label).Inc()
	checkoutDuration.WithLabelValues("complete").Observe(time.Since(start).Seconds())
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteJSON(w, CompleteResponse{Success: true, Status: string(status)}, http.StatusOK)
}

// GetOrder возвращает заказ по ID.
// @Summary      Получить заказ по ID
// @Description  Возвращает заказ вместе с позициями
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /api/orders/{id} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.validate.Var(id, "required,uuid"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}
