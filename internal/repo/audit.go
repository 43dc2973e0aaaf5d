package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	"github.com/jmoiron/sqlx"
)

type auditRepo struct {
	postgresRepo
}

func NewAuditRepo(db *sqlx.DB) *auditRepo {
	return &auditRepo{postgresRepo: newPostgresRepo(db)}
}

func (r *auditRepo) Record(ctx context.Context, rec entities.AuditRecord) error {
	details, err := json.Marshal(rec.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal audit changes: %w", err)
	}

	query, args := r.qb.Insert("audit_logs").
		Columns("user_id", "action", "entity", "entity_id", "details", "created_at").
		Values(nullString(rec.UserID), rec.Action, rec.Entity, nullString(rec.EntityID), string(details), rec.CreatedAt).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
