package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

// Публикует события об оплате для асинхронного завершения заказов.
// -repeat > 1 отправляет дубликаты, чтобы проверить идемпотентность.

type paymentEvent struct {
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "адреса брокеров через запятую")
	topic := flag.String("topic", "payment-events", "топик событий об оплате")
	orderID := flag.String("order", "", "идентификатор заказа")
	intentID := flag.String("intent", "", "идентификатор платежного намерения")
	repeat := flag.Int("repeat", 1, "сколько раз отправить событие")
	interval := flag.Duration("interval", 100*time.Millisecond, "пауза между отправками")
	flag.Parse()

	if *orderID == "" || *intentID == "" {
		log.Fatal("укажите -order и -intent")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:    *topic,
		Balancer: &kafka.Hash{},
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	data, _ := json.Marshal(paymentEvent{OrderID: *orderID, PaymentIntentID: *intentID})

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for i := range *repeat {
		msg := kafka.Message{Key: []byte(*orderID), Value: data}
		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Fatalf("failed to publish event: %v", err)
		}
		log.Println("payment event published", *orderID, i+1)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
