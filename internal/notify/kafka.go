package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/checkout-service/internal/config"
	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderConfirmation is the message consumed by the email/notification sink.
type OrderConfirmation struct {
	OrderID         string             `json:"order_id"`
	OrderNumber     string             `json:"order_number"`
	UserID          string             `json:"user_id,omitempty"`
	Email           string             `json:"email,omitempty"`
	PaymentIntentID string             `json:"payment_intent_id"`
	Subtotal        string             `json:"subtotal"`
	Shipping        string             `json:"shipping"`
	Tax             string             `json:"tax"`
	Total           string             `json:"total"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []ConfirmationItem `json:"items"`
	ConfirmedAt     time.Time          `json:"confirmed_at"`
}

type ConfirmationItem struct {
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

func NewOrderConfirmation(o entities.Order) OrderConfirmation {
	msg := OrderConfirmation{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.Buyer.UserID,
		Email:           o.ContactEmail,
		PaymentIntentID: o.PaymentIntentID,
		Subtotal:        o.Subtotal.StringFixed(2),
		Shipping:        o.ShippingCost.StringFixed(2),
		Tax:             o.Tax.StringFixed(2),
		Total:           o.Total.StringFixed(2),
		ShippingAddress: o.ShippingSummary,
		Items:           make([]ConfirmationItem, 0, len(o.Items)),
	}
	if msg.Email == "" {
		msg.Email = o.Buyer.GuestEmail
	}
	if o.ConfirmedAt != nil {
		msg.ConfirmedAt = o.ConfirmedAt.UTC()
	}
	for _, it := range o.Items {
		msg.Items = append(msg.Items, ConfirmationItem{
			Name:      it.ProductName,
			SKU:       it.ProductSKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Total:     it.TotalPrice.StringFixed(2),
		})
	}
	return msg
}

type kafkaNotifier struct {
	logger *slog.Logger
	writer messageWriter
}

func NewKafkaNotifier(logger *slog.Logger, cfg config.Kafka) *kafkaNotifier {
	return newKafkaNotifier(logger, &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: cfg.BatchTimeout,
	})
}

func newKafkaNotifier(logger *slog.Logger, w messageWriter) *kafkaNotifier {
	return &kafkaNotifier{
		logger: logger.With(slog.String("component", "notifier")),
		writer: w,
	}
}

// OrderConfirmed publishes the confirmation keyed by order id, so every
// message about one order lands on the same partition.
func (n *kafkaNotifier) OrderConfirmed(ctx context.Context, order entities.Order) error {
	data, err := json.Marshal(NewOrderConfirmation(order))
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish confirmation: %w", err)
	}

	n.logger.DebugContext(ctx, "order confirmation published", slog.String("order_id", order.ID))
	return nil
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}
