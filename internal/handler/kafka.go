package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"
	"github.com/SergeyBogomolovv/checkout-service/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

type PaymentCompleter interface {
	CompleteCheckout(ctx context.Context, orderID, paymentIntentID string) (entities.CompletionStatus, error)
}

var permanentCompletionErrors = []error{
	entities.ErrOrderNotFound,
	entities.ErrPaymentMismatch,
	entities.ErrOversoldInventory,
	entities.ErrInvalidTransition,
	entities.ErrPaymentStatusConflict,
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaHandler struct {
	dlq       messageWriter
	reader    messageReader
	logger    *slog.Logger
	validate  *validator.Validate
	completer PaymentCompleter
	retry     utils.RetryConfig
}

// NewKafkaHandler читает события об оплате и завершает по ним оформление заказов.
func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, completer PaymentCompleter) *kafkaHandler {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   cfg.PaymentEventsTopic,
		MaxWait: cfg.ReaderMaxWait,
	})
	dlq := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
	}
	return newKafkaHandler(logger, reader, dlq, completer)
}

func newKafkaHandler(logger *slog.Logger, reader messageReader, dlq messageWriter, completer PaymentCompleter) *kafkaHandler {
	return &kafkaHandler{
		logger:    logger.With(slog.String("handler", "kafka")),
		reader:    reader,
		dlq:       dlq,
		validate:  validator.New(),
		completer: completer,
		retry:     utils.RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second, Multiplier: 2},
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			} else {
				h.logger.Error("failed to fetch message", slog.Any("error", err))
				continue
			}
		}

		start := time.Now()
		if err := h.handlePaymentEvent(ctx, m); err != nil {
			// Отмена контекста при остановке: сообщение не коммитим, его перечитает другой консьюмер
			if ctx.Err() != nil {
				break
			}

			eventsFailed.Inc()
			h.logger.Error("failed to handle payment event", slog.Any("error", err), slog.Int64("offset", m.Offset))

			// В библиотеке уже есть retry
			if err := h.WriteToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			eventsDLQ.Inc()
		} else {
			eventsProcessed.Inc()
		}
		eventProcessingDuration.Observe(time.Since(start).Seconds())

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			commitErrors.Inc()
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) handlePaymentEvent(ctx context.Context, m kafka.Message) error {
	var event PaymentEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal payment event: %w", err)
	}

	if err := h.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid payment event: %w", err)
	}

	// Временные ошибки (шлюз, БД, платеж еще в обработке) повторяем, остальные сразу в DLQ
	var status entities.CompletionStatus
	err := utils.Retry(ctx, h.retry, func() error {
		var err error
		status, err = h.completer.CompleteCheckout(ctx, event.OrderID, event.PaymentIntentID)
		return err
	}, permanentCompletionErrors...)

	label := resultLabel(err)
	if status == entities.CompletionAlreadyCompleted {
		label = "already_completed"
	}
	completionsTotal.WithLabelValues("kafka", label).Inc()

	if err != nil {
		return fmt.Errorf("failed to complete order %s: %w", event.OrderID, err)
	}

	h.logger.Info("payment event processed",
		slog.String("order_id", event.OrderID),
		slog.String("payment_intent_id", event.PaymentIntentID),
		slog.String("status", string(status)),
	)
	return nil
}

func (h *kafkaHandler) WriteToDLQ(ctx context.Context, m kafka.Message) error {
	return h.dlq.WriteMessages(ctx, kafka.Message{
		Topic:   fmt.Sprintf("%s-dlq", m.Topic),
		Key:     m.Key,
		Value:   m.Value,
		Headers: m.Headers,
	})
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
