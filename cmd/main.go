package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/SergeyBogomolovv/checkout-service/docs"
	"github.com/SergeyBogomolovv/checkout-service/internal/app"
	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/gateway"
	"github.com/SergeyBogomolovv/checkout-service/internal/handler"
	"github.com/SergeyBogomolovv/checkout-service/internal/middleware"
	"github.com/SergeyBogomolovv/checkout-service/internal/notify"
	"github.com/SergeyBogomolovv/checkout-service/internal/postgres"
	"github.com/SergeyBogomolovv/checkout-service/internal/repo"
	"github.com/SergeyBogomolovv/checkout-service/internal/service"
	"github.com/SergeyBogomolovv/checkout-service/pkg/cache"
	"github.com/SergeyBogomolovv/checkout-service/pkg/trm"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// @title           Checkout Service API
// @version         1.0
// @description     Оформление заказов, подтверждение оплаты и управление заказами
// @securityDefinitions.basic  BasicAuth
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	if conf.MigrateOnStartup {
		panicIfErr("failed to apply migrations", postgres.Migrate(db))
		logger.Info("migrations applied")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	defer rdb.Close()

	orderRepo := repo.NewOrderRepo(db)
	productRepo := repo.NewProductRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	txManager := trm.NewManager(db)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	prometheus.MustRegister(cache.NewCollector("checkout_service", "order_cache", orderCache))

	pricing, err := service.NewFlatPricing(conf.Checkout)
	panicIfErr("invalid pricing config", err)

	notifier := notify.NewKafkaNotifier(logger, conf.Kafka)

	checkoutService := service.NewCheckoutService(logger, service.CheckoutDeps{
		TxManager: txManager,
		Orders:    orderRepo,
		Products:  productRepo,
		Gateway:   gateway.WithBreaker(logger, conf.Gateway, newPaymentGateway(logger, conf.Gateway)),
		Pricing:   pricing,
		Audit:     auditRepo,
		Notifier:  notifier,
		Cache:     orderCache,
	}, service.CheckoutConfig{
		OrderNumberPrefix: conf.Checkout.OrderNumberPrefix,
		Currency:          conf.Gateway.Currency,
		Country:           conf.Checkout.Country,
	})
	orderService := service.NewOrderService(logger, orderRepo, txManager, auditRepo, orderCache)

	handler.RegisterMetrics()
	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, checkoutService)
	httpHandler := handler.NewHTTPHandler(logger, checkoutService, orderService,
		middleware.Idempotency(logger, rdb, conf.Redis.IdempotencyTTL))
	adminHandler := handler.NewAdminHandler(logger, conf.Admin, orderService)

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler, adminHandler)
	app.SetConsumers(kafkaHandler)
	app.SetStarters(orderCache, cacheWarmUpAdapter{svc: orderService, count: conf.Cache.Capacity})
	app.SetClosers(sideEffects{checkoutService, orderService}, notifier)
	app.SetHealthCheck("postgres", db.PingContext)
	app.SetHealthCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func newPaymentGateway(logger *slog.Logger, cfg config.Gateway) gateway.Gateway {
	if cfg.Sandbox {
		logger.Warn("payment sandbox enabled, no real charges will be made")
		return gateway.NewSandbox()
	}
	return gateway.NewStripeGateway(logger, cfg)
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type warmUpper interface {
	WarmUpCache(ctx context.Context, count int) error
}

type cacheWarmUpAdapter struct {
	svc   warmUpper
	count int
}

func (a cacheWarmUpAdapter) Start(ctx context.Context) error {
	return a.svc.WarmUpCache(ctx, a.count)
}

type waiter interface {
	Wait()
}

// sideEffects дожидается фоновых аудита и уведомлений перед закрытием Kafka writer.
type sideEffects []waiter

func (s sideEffects) Close() error {
	for _, w := range s {
		w.Wait()
	}
	return nil
}
