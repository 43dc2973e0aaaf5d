package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
)

type storedResponse struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the first response recorded for an Idempotency-Key.
// A duplicate that arrives while the first request is still running gets 409.
// 5xx responses are not recorded so the client can retry them. When redis is
// unreachable requests pass through unprotected.
func Idempotency(logger *slog.Logger, rdb redis.Cmdable, ttl time.Duration) func(next http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "idempotency"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				utils.WriteError(w, "idempotency key is too long", http.StatusBadRequest)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			storeKey := "idempotency:" + r.Method + ":" + r.URL.Path + ":" + UserID(ctx) + ":" + key
			fingerprint := fingerprintOf(body)

			marker, _ := json.Marshal(storedResponse{InFlight: true, Fingerprint: fingerprint})
			acquired, err := rdb.SetNX(ctx, storeKey, marker, ttl).Result()
			if err != nil {
				logger.WarnContext(ctx, "idempotency store unavailable", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if !acquired {
				replay(w, r, rdb, storeKey, fingerprint, logger)
				return
			}

			// the client context may already be gone, the record must still land
			storeCtx := context.WithoutCancel(ctx)
			release := func() {
				if err := rdb.Del(storeCtx, storeKey).Err(); err != nil {
					logger.WarnContext(ctx, "failed to release idempotency key", slog.Any("error", err))
				}
			}
			defer func() {
				if rvr := recover(); rvr != nil {
					release()
					panic(rvr)
				}
			}()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				release()
				return
			}

			data, _ := json.Marshal(storedResponse{
				Fingerprint: fingerprint,
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err := rdb.Set(storeCtx, storeKey, data, ttl).Err(); err != nil {
				logger.WarnContext(ctx, "failed to store idempotent response", slog.Any("error", err))
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, rdb redis.Cmdable, storeKey, fingerprint string, logger *slog.Logger) {
	ctx := r.Context()

	data, err := rdb.Get(ctx, storeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// released between SETNX and GET: the first attempt failed with 5xx
		idempotentReplays.WithLabelValues("in_flight").Inc()
		utils.WriteError(w, "request with this idempotency key is in progress, retry later", http.StatusConflict)
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to read idempotent response", slog.Any("error", err))
		utils.WriteRetryable(w, "idempotency store unavailable", time.Second)
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.ErrorContext(ctx, "corrupted idempotent response", slog.String("key", storeKey), slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case stored.Fingerprint != fingerprint:
		idempotentReplays.WithLabelValues("mismatch").Inc()
		utils.WriteError(w, "idempotency key was already used with a different request", http.StatusUnprocessableEntity)
	case stored.InFlight:
		idempotentReplays.WithLabelValues("in_flight").Inc()
		utils.WriteError(w, "request with this idempotency key is in progress, retry later", http.StatusConflict)
	default:
		idempotentReplays.WithLabelValues("replayed").Inc()
		if stored.ContentType != "" {
			w.Header().Set("Content-Type", stored.ContentType)
		}
		w.Header().Set(ReplayedHeader, "true")
		w.WriteHeader(stored.Status)
		w.Write(stored.Body)
	}
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
