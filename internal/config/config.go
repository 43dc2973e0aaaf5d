package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Kafka Kafka `validate:"required"`

	Postgres Postgres `validate:"required"`

	Redis Redis `validate:"required"`

	Cache Cache

	Gateway Gateway `validate:"required"`

	Checkout Checkout `validate:"required"`

	Admin Admin `validate:"required"`

	MigrateOnStartup bool
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required"`

	RequestTimeout time.Duration `validate:"gt=0"`
}

type Kafka struct {
	GroupID            string   `validate:"required"`
	Brokers            []string `validate:"required,min=1,dive,hostname_port"`
	PaymentEventsTopic string   `validate:"required"`
	NotificationsTopic string   `validate:"required"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type Redis struct {
	Addr           string        `validate:"required,hostname_port"`
	Password       string
	DB             int           `validate:"gte=0"`
	IdempotencyTTL time.Duration `validate:"gt=0"`
}

type Cache struct {
	Capacity int           `validate:"gte=1"`
	TTL      time.Duration `validate:"gt=0"`
}

type Gateway struct {
	// Sandbox swaps the processor for an in-process fake; never in production.
	Sandbox   bool
	SecretKey string `validate:"required_if=Sandbox false"`
	Currency  string `validate:"required,len=3,lowercase"`

	Timeout            time.Duration `validate:"gt=0"`
	BreakerMaxFailures uint32        `validate:"gte=1"`
	BreakerOpenTimeout time.Duration `validate:"gt=0"`
}

type Checkout struct {
	OrderNumberPrefix string `validate:"required,alphanum,max=8"`
	Country           string `validate:"required,iso3166_1_alpha2"`
	FlatShipping      string `validate:"required,numeric"`
	TaxRate           string `validate:"required,numeric"`
}

type Admin struct {
	User     string `validate:"required"`
	Password string `validate:"required"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host:           env("HOST", "localhost"),
			Port:           env("PORT", "8080"),
			RequestTimeout: envDuration("HTTP_REQUEST_TIMEOUT", 15*time.Second),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Kafka: Kafka{
			GroupID:            env("KAFKA_GROUP_ID", "checkout-service"),
			PaymentEventsTopic: env("KAFKA_PAYMENT_EVENTS_TOPIC", "payment-events"),
			NotificationsTopic: env("KAFKA_NOTIFICATIONS_TOPIC", "order-notifications"),
			Brokers:            strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "shop"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: Redis{
			Addr:           env("REDIS_ADDR", "localhost:6379"),
			Password:       env("REDIS_PASSWORD", ""),
			DB:             envInt("REDIS_DB", 0),
			IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},

		Cache: Cache{
			Capacity: envInt("CACHE_CAPACITY", 1000),
			TTL:      envDuration("CACHE_TTL", 10*time.Minute),
		},

		Gateway: Gateway{
			Sandbox:   envBool("PAYMENT_SANDBOX", false),
			SecretKey: env("STRIPE_SECRET_KEY", ""),
			Currency:  env("STORE_CURRENCY", "usd"),

			Timeout:            envDuration("PAYMENT_TIMEOUT", 10*time.Second),
			BreakerMaxFailures: uint32(envInt("PAYMENT_BREAKER_MAX_FAILURES", 5)),
			BreakerOpenTimeout: envDuration("PAYMENT_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},

		Checkout: Checkout{
			OrderNumberPrefix: env("ORDER_NUMBER_PREFIX", "ORD"),
			Country:           env("SHIPPING_COUNTRY", "US"),
			FlatShipping:      env("FLAT_SHIPPING", "0"),
			TaxRate:           env("TAX_RATE", "0"),
		},

		Admin: Admin{
			User:     env("ADMIN_USER", "admin"),
			Password: env("ADMIN_PASSWORD", ""),
		},

		MigrateOnStartup: envBool("MIGRATE_ON_STARTUP", false),
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
