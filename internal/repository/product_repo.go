package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/internal/model"
)

const selectProduct = `
	SELECT id, parent_title, image_link, alt, thumbnail_public_id, thumbnail_url, price,
	       family, years, frames, generation, breadcrumbs_h1, types_div, texts_div,
	       list_of_hrefs, purchased, created_at, updated_at
	FROM products`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p                 model.Product
		thumbID, thumbURL *string
	)

	err := row.Scan(&p.ID, &p.ParentTitle, &p.ImageLink, &p.Alt, &thumbID, &thumbURL, &p.Price,
		&p.Family, &p.Years, &p.Frames, &p.Generation, &p.BreadcrumbsH1, &p.TypesDiv, &p.TextsDiv,
		&p.ListOfHrefs, &p.Purchased, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}

	p.Thumbnail = imageColumns(thumbID, thumbURL)
	if p.ListOfHrefs == nil {
		p.ListOfHrefs = []model.ProductLinkGroup{}
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) error {
	thumbID, thumbURL := imageArgs(p.Thumbnail)
	if p.ListOfHrefs == nil {
		p.ListOfHrefs = []model.ProductLinkGroup{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, parent_title, image_link, alt, thumbnail_public_id, thumbnail_url, price,
		                       family, years, frames, generation, breadcrumbs_h1, types_div, texts_div,
		                       list_of_hrefs, purchased, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.ParentTitle, p.ImageLink, p.Alt, thumbID, thumbURL, p.Price,
		p.Family, p.Years, p.Frames, p.Generation, p.BreadcrumbsH1, p.TypesDiv, p.TextsDiv,
		p.ListOfHrefs, p.Purchased, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, selectProduct+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search is the database fallback used when no search index is configured.
func (r *ProductRepository) Search(ctx context.Context, query string, limit int, offset int) ([]model.Product, int, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	where := ` WHERE parent_title ILIKE $1 OR family ILIKE $1 OR generation ILIKE $1 OR texts_div ILIKE $1`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count product matches: %w", err)
	}

	rows, err := r.pool.Query(ctx, selectProduct+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p model.Product) error {
	thumbID, thumbURL := imageArgs(p.Thumbnail)
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET parent_title = $2, image_link = $3, alt = $4, thumbnail_public_id = $5,
		        thumbnail_url = $6, price = $7, family = $8, years = $9, frames = $10, generation = $11,
		        breadcrumbs_h1 = $12, types_div = $13, texts_div = $14, list_of_hrefs = $15, updated_at = $16
		 WHERE id = $1`,
		p.ID, p.ParentTitle, p.ImageLink, p.Alt, thumbID, thumbURL, p.Price, p.Family, p.Years, p.Frames,
		p.Generation, p.BreadcrumbsH1, p.TypesDiv, p.TextsDiv, p.ListOfHrefs, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
