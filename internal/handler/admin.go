package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPageLimit = 20
	dateLayout       = "2006-01-02"
)

type OrderService interface {
	ListOrders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int, error)
	ExportOrders(ctx context.Context, f entities.OrderFilter, fn func(entities.Order) error) error
	UpdateStatus(ctx context.Context, id string, next entities.OrderStatus, actor string) (entities.Order, error)
}

type AdminHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	creds    map[string]string
}

func NewAdminHandler(logger *slog.Logger, cfg config.Admin, svc OrderService) *AdminHandler {
	return &AdminHandler{
		logger:   logger.With(slog.String("handler", "admin")),
		validate: validator.New(),
		svc:      svc,
		creds:    map[string]string{cfg.User: cfg.Password},
	}
}

func (h *AdminHandler) Init(r chi.Router) {
	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(chimw.BasicAuth("admin", h.creds))
		r.Get("/", h.ListOrders)
		r.Get("/export", h.ExportOrders)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// ListOrders возвращает страницу заказов.
// @Summary      Список заказов
// @Description  Фильтрация по статусу, дате создания и строке поиска (номер заказа, email, пользователь)
// @Tags         admin
// @Produce      json
// @Security     BasicAuth
// @Param        status  query     string  false  "Статус заказа"
// @Param        from    query     string  false  "Дата начала (YYYY-MM-DD или RFC3339)"
// @Param        to      query     string  false  "Дата окончания включительно (YYYY-MM-DD или RFC3339)"
// @Param        search  query     string  false  "Строка поиска"
// @Param        page    query     int     false  "Номер страницы" default(1)
// @Param        limit   query     int     false  "Размер страницы" default(20)
// @Success      200  {object}  OrderList
// @Failure      400  {object}  utils.ErrorResponse "Ошибка валидации"
// @Failure      401  {string}  string "Требуется авторизация"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /api/admin/orders [get]
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseListQuery(r)
	if err != nil {
		utils.WriteErrorDetails(w, "invalid request", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(q); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	orders, total, err := h.svc.ListOrders(ctx, q.filter())
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	resp := OrderList{
		Orders: make([]Order, 0, len(orders)),
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: (total + q.Limit - 1) / q.Limit,
		},
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, OrderEntityToJSON(o))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

var exportHeader = []string{
	"Order Number", "Customer", "Status", "Payment Status",
	"Subtotal", "Shipping", "Tax", "Discount", "Total", "Items", "Created At",
}

// ExportOrders выгружает заказы в CSV.
// @Summary      Экспорт заказов
// @Description  CSV со всеми заказами, подходящими под фильтры списка
// @Tags         admin
// @Produce      text/csv
// @Security     BasicAuth
// @Param        status  query     string  false  "Статус заказа"
// @Param        from    query     string  false  "Дата начала"
// @Param        to      query     string  false  "Дата окончания включительно"
// @Param        search  query     string  false  "Строка поиска"
// @Success      200  {string}  string "CSV файл"
// @Failure      400  {object}  utils.ErrorResponse "Ошибка валидации"
// @Router       /api/admin/orders/export [get]
func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseListQuery(r)
	if err != nil {
		utils.WriteErrorDetails(w, "invalid request", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(q); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="orders-%s.csv"`, time.Now().UTC().Format(dateLayout)))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)

	// Заголовки уже отправлены, ошибку можно только залогировать
	err = h.svc.ExportOrders(ctx, q.filter(), func(o entities.Order) error {
		return cw.Write(exportRow(o))
	})
	cw.Flush()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to export orders", slog.Any("error", err))
	}
}

func exportRow(o entities.Order) []string {
	customer := o.Buyer.UserID
	if customer == "" {
		customer = o.Buyer.GuestEmail
	}

	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, fmt.Sprintf("%dx %s", it.Quantity, it.ProductName))
	}

	return []string{
		o.OrderNumber,
		customer,
		string(o.Status),
		string(o.PaymentStatus),
		o.Subtotal.StringFixed(2),
		o.ShippingCost.StringFixed(2),
		o.Tax.StringFixed(2),
		o.DiscountAmount.StringFixed(2),
		o.Total.StringFixed(2),
		strings.Join(items, "; "),
		o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// UpdateStatus меняет статус выполнения заказа.
// @Summary      Сменить статус заказа
// @Description  PROCESSING, SHIPPED, DELIVERED или CANCELLED согласно допустимым переходам
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        id       path      string               true  "Идентификатор заказа"
// @Param        request  body      UpdateStatusRequest  true  "Новый статус"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      409  {object}  utils.ErrorResponse "Недопустимый переход"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /api/admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.validate.Var(id, "required,uuid"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	actor, _, _ := r.BasicAuth()
	order, err := h.svc.UpdateStatus(ctx, id, entities.OrderStatus(req.Status), actor)
	adminTransitions.WithLabelValues(req.Status, resultLabel(err)).Inc()
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *AdminHandler) parseListQuery(r *http.Request) (listQuery, error) {
	v := r.URL.Query()
	q := listQuery{
		Status: strings.ToUpper(v.Get("status")),
		Search: strings.TrimSpace(v.Get("search")),
		Page:   1,
		Limit:  defaultPageLimit,
	}
	if q.Status == "ALL" {
		q.Status = ""
	}

	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("page must be a number")
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("limit must be a number")
		}
	}
	if s := v.Get("from"); s != "" {
		if q.From, _, err = parseDate(s); err != nil {
			return q, fmt.Errorf("from: %w", err)
		}
	}
	if s := v.Get("to"); s != "" {
		to, dateOnly, err := parseDate(s)
		if err != nil {
			return q, fmt.Errorf("to: %w", err)
		}
		// Фильтр по верхней границе исключающий, дата без времени включает весь день
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
		q.To = to
	}

	return q, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339 date")
	}
	return t, false, nil
}
