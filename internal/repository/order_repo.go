package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/internal/model"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create records the order, grants the item to the buyer and bumps the
// item's purchase counter in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o model.Order) error {
	kind, itemID := o.Item()
	if kind == "" {
		return fmt.Errorf("create order: %w", model.ErrInvalidInput)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, user_id, course_id, product_id, payment_info, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, o.UserID, o.CourseID, o.ProductID, o.PaymentInfo, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		grant := `INSERT INTO user_courses (user_id, course_id, created_at) VALUES ($1, $2, $3)`
		bump := `UPDATE courses SET purchased = purchased + 1 WHERE id = $1`
		if kind == model.ItemProduct {
			grant = `INSERT INTO user_products (user_id, product_id, created_at) VALUES ($1, $2, $3)`
			bump = `UPDATE products SET purchased = purchased + 1 WHERE id = $1`
		}

		if _, err := tx.Exec(ctx, grant, o.UserID, itemID, o.CreatedAt); err != nil {
			if isUniqueViolation(err, "") {
				return model.ErrAlreadyPurchased
			}
			return fmt.Errorf("grant %s: %w", kind, err)
		}

		if _, err := tx.Exec(ctx, bump, itemID); err != nil {
			return fmt.Errorf("increment %s purchases: %w", kind, err)
		}

		return nil
	})
}

func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, course_id::text, product_id::text, payment_info, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CourseID, &o.ProductID, &o.PaymentInfo, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
