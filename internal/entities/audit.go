package entities

import "time"

const (
	AuditEntityOrder = "order"

	AuditActionCheckoutCreated   = "checkout.created"
	AuditActionCheckoutCompleted = "checkout.completed"
	AuditActionStatusChanged     = "order.status_changed"
)

// AuditRecord is an entity/action/changes entry handed to the audit sink.
// Changes is an opaque bag of what was mutated.
type AuditRecord struct {
	UserID    string
	Action    string
	Entity    string
	EntityID  string
	Changes   map[string]any
	CreatedAt time.Time
}
