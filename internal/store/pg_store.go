package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const productColumns = "id, name, price, available, created_at, updated_at"

const (
	createQuery = `INSERT INTO products (name, price) VALUES ($1, $2) RETURNING ` + productColumns

	findFirstQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND available = $2 LIMIT 1`

	findManyQuery = `SELECT ` + productColumns + ` FROM products WHERE available = $1 OFFSET $2 LIMIT $3`

	countQuery = `SELECT count(*) FROM products WHERE available = $1`

	updateQuery = `UPDATE products SET
    name = COALESCE($2, name),
    price = COALESCE($3, price),
    available = COALESCE($4, available),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Create adds a new product to the system.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	rows, _ := p.db.Query(ctx, createQuery, params.Name, params.Price)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create product %q: %w", params.Name, perrors.ErrProductConflict)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// FindFirst retrieves a product by id and availability.
// Returns ErrProductNotFound if no product matches.
func (p *PgStore) FindFirst(ctx context.Context, id int64, available bool) (*Product, error) {
	rows, _ := p.db.Query(ctx, findFirstQuery, id, available)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindMany retrieves a page of products in table order.
func (p *PgStore) FindMany(ctx context.Context, available bool, offset, limit int32) ([]Product, error) {
	rows, _ := p.db.Query(ctx, findManyQuery, available, offset, limit)
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Count returns the number of products with the given availability.
func (p *PgStore) Count(ctx context.Context, available bool) (int64, error) {
	var total int64
	if err := p.db.QueryRow(ctx, countQuery, available).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, params UpdateParams) (*Product, error) {
	rows, _ := p.db.Query(ctx, updateQuery, id, params.Name, params.Price, params.Available)
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to update product %d: %w", id, perrors.ErrProductConflict)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
