package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/SergeyBogomolovv/checkout-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type productRepo struct {
	postgresRepo
}

func NewProductRepo(db *sqlx.DB) *productRepo {
	return &productRepo{postgresRepo: newPostgresRepo(db)}
}

// Snapshot reads price and stock of every active product in ids with one query.
func (r *productRepo) Snapshot(ctx context.Context, ids []string) (map[string]entities.ProductSnapshot, error) {
	query, args := r.qb.Select("id", "name", "sku", "price", "inventory").
		From("products").
		Where(sq.Eq{"id": ids, "is_active": true}).
		MustSql()

	var products []Product
	if err := r.selectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}

	res := make(map[string]entities.ProductSnapshot, len(products))
	for _, p := range products {
		res[p.ID] = ProductToSnapshot(p)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := res[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &entities.ProductNotFoundError{ProductIDs: missing}
	}
	return res, nil
}

// Decrement takes quantity units off the product's stock in a single
// conditional update; the row lock it takes serializes concurrent callers.
func (r *productRepo) Decrement(ctx context.Context, productID string, quantity int) error {
	query, args := r.qb.Update("products").
		Set("inventory", sq.Expr("inventory - ?", quantity)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": productID}).
		Where(sq.GtOrEq{"inventory": quantity}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return &entities.InsufficientStockError{ProductID: productID}
	}
	return nil
}
