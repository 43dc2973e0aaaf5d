package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/middleware"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger *slog.Logger

	router    chi.Router
	httpSrv   *http.Server
	consumers []KafkaHandler
	starters  []Starter
	closers   []Closer
	checks    map[string]HealthCheck

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(logger *slog.Logger, cfg config.Config) *application {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Identity)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(cfg.Http.RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.IdempotencyHeader, middleware.UserIDHeader},
		ExposedHeaders: []string{"Retry-After", middleware.ReplayedHeader},
	}))

	a := &application{
		logger: logger,
		router: router,
		checks: make(map[string]HealthCheck),
	}

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", a.health)
	router.Get("/swagger/*", httpSwagger.Handler())

	a.httpSrv = &http.Server{
		Handler:           otelhttp.NewHandler(router, "checkout-service"),
		Addr:              net.JoinHostPort(cfg.Http.Host, cfg.Http.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a
}

type HttpHandler interface {
	Init(r chi.Router)
}

func (a *application) SetHTTPHandlers(handlers ...HttpHandler) {
	for _, h := range handlers {
		h.Init(a.router)
	}
}

type KafkaHandler interface {
	Consume(ctx context.Context)
	Close() error
}

func (a *application) SetConsumers(handlers ...KafkaHandler) {
	a.consumers = handlers
}

// Starter фоновая задача, которая живет вместе с приложением (прогрев кэша, очистка).
type Starter interface {
	Start(ctx context.Context) error
}

func (a *application) SetStarters(starters ...Starter) {
	a.starters = starters
}

// Closer освобождает ресурсы при остановке, после http сервера и консьюмеров.
type Closer interface {
	Close() error
}

func (a *application) SetClosers(closers ...Closer) {
	a.closers = closers
}

type HealthCheck func(ctx context.Context) error

func (a *application) SetHealthCheck(name string, check HealthCheck) {
	a.checks[name] = check
}

func (a *application) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	ln, err := net.Listen("tcp", a.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen %s: %w", a.httpSrv.Addr, err)
	}

	for _, c := range a.consumers {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			c.Consume(ctx)
		}()
	}

	for _, s := range a.starters {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("background task failed", slog.Any("error", err))
			}
		}()
	}

	go func() {
		a.logger.Info("starting http server", slog.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	a.logger.Info("application started")
	return nil
}

const gracefulShutdownTimeout = 10 * time.Second

func (a *application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	g := new(errgroup.Group)
	for _, c := range a.consumers {
		g.Go(c.Close)
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("background tasks did not finish in time")
	}

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to release resources: %w", err)
	}

	a.logger.Info("application stopped")
	return nil
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (a *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(a.checks))}

	g, ctx := errgroup.WithContext(ctx)
	for name, check := range a.checks {
		g.Go(func() error {
			status := "ok"
			if err := check(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			resp.Checks[name] = status
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	code := http.StatusOK
	for _, status := range resp.Checks {
		if status != "ok" {
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	utils.WriteJSON(w, resp, code)
}
