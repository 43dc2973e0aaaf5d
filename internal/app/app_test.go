package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func testConfig() config.Config {
	return config.Config{
		Http: config.Http{Host: "localhost", Port: "0", RequestTimeout: time.Second},
		Cors: config.CORS{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantBody   string
	}{
		{
			name: "all healthy",
			checks: map[string]HealthCheck{
				"postgres": func(ctx context.Context) error { return nil },
				"redis":    func(ctx context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"postgres": func(ctx context.Context) error { return nil },
				"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"redis":"connection refused"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := New(slog.New(slog.NewTextHandler(io.Discard, nil)), testConfig())
			for name, check := range tc.checks {
				a.SetHealthCheck(name, check)
			}

			rr := httptest.NewRecorder()
			a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

type blockingConsumer struct {
	stopped chan struct{}
	closed  bool
}

func (c *blockingConsumer) Consume(ctx context.Context) {
	<-ctx.Done()
	close(c.stopped)
}

func (c *blockingConsumer) Close() error {
	c.closed = true
	return nil
}

func TestStartStop(t *testing.T) {
	a := New(slog.New(slog.NewTextHandler(io.Discard, nil)), testConfig())
	consumer := &blockingConsumer{stopped: make(chan struct{})}
	a.SetConsumers(consumer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, a.Start(ctx))
	assert.NoError(t, a.Stop())

	<-consumer.stopped
	assert.True(t, consumer.closed)
}
