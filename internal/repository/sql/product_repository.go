package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

// ProductRepository implements repository.ProductReader over the products table.
type ProductRepository struct {
	db dbExecutor
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ repository.ProductReader = (*ProductRepository)(nil)

// ListTracked retrieves active, non-deleted products ordered by URL.
func (r *ProductRepository) ListTracked(ctx context.Context) ([]model.Product, error) {
	query := `SELECT url, is_active, is_deleted FROM products
	          WHERE is_active = true AND is_deleted = false
	          ORDER BY url`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var product model.Product
		var isActive, isDeleted sql.NullBool
		if err := rows.Scan(&product.URL, &isActive, &isDeleted); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.IsActive = nullBool(isActive)
		product.IsDeleted = nullBool(isDeleted)
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return model.VisibleProducts(products), nil
}

func nullBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
