package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/google/uuid"
)

// Sandbox is an in-process processor for local runs and load tests.
// Intents are created already succeeded unless the receipt email contains
// "+decline", and creation is idempotent per order like the real processor.
type Sandbox struct {
	mu      sync.Mutex
	intents map[string]entities.PaymentIntent
	byOrder map[string]string
}

func NewSandbox() *Sandbox {
	return &Sandbox{
		intents: make(map[string]entities.PaymentIntent),
		byOrder: make(map[string]string),
	}
}

func (s *Sandbox) CreateIntent(ctx context.Context, p entities.CreateIntentParams) (entities.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return entities.PaymentIntent{}, fmt.Errorf("%w: %v", entities.ErrGatewayUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byOrder[p.OrderID]; ok {
		return s.intents[id], nil
	}

	id := "pi_sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	status := entities.IntentStatusSucceeded
	if strings.Contains(p.ReceiptEmail, "+decline") {
		status = entities.IntentStatusFailed
	}
	intent := entities.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		AmountMinor:  entities.ToMinorUnits(p.Amount),
		Currency:     p.Currency,
		Status:       status,
		Metadata: map[string]string{
			metaOrderID:     p.OrderID,
			metaOrderNumber: p.OrderNumber,
		},
	}
	s.intents[id] = intent
	s.byOrder[p.OrderID] = id
	return intent, nil
}

func (s *Sandbox) GetIntent(ctx context.Context, id string) (entities.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return entities.PaymentIntent{}, fmt.Errorf("%w: %v", entities.ErrGatewayUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return entities.PaymentIntent{}, fmt.Errorf("%w: no such intent %s", entities.ErrPaymentMismatch, id)
	}
	return intent, nil
}

// SetStatus moves an intent to status, as the processor would after the
// client finishes or abandons payment.
func (s *Sandbox) SetStatus(id string, status entities.IntentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return false
	}
	intent.Status = status
	s.intents[id] = intent
	return true
}
