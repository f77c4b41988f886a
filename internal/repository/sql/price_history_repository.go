package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

const priceHistoryColumns = `id, product_url, name, price, currency, main_image_url, availability, "timestamp", additional_data`

// PriceHistoryRepository implements repository.PriceHistoryReader over the price_history table.
type PriceHistoryRepository struct {
	db dbExecutor
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository instance.
func NewPriceHistoryRepository(db *sql.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

var _ repository.PriceHistoryReader = (*PriceHistoryRepository)(nil)

// Latest retrieves the most recent point of a product. It returns nil, nil when the product has no history yet.
func (r *PriceHistoryRepository) Latest(ctx context.Context, productURL string) (*model.PricePoint, error) {
	query := `SELECT ` + priceHistoryColumns + ` FROM price_history
	          WHERE product_url = $1
	          ORDER BY "timestamp" DESC
	          LIMIT 1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	point, err := scanPricePoint(stmt.QueryRowContext(ctx, productURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest price point: %w", err)
	}

	return point, nil
}

// History retrieves a page of a product's points, newest first.
func (r *PriceHistoryRepository) History(ctx context.Context, query repository.HistoryQuery) ([]model.PricePoint, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + priceHistoryColumns + ` FROM price_history WHERE product_url = $1`)

	args := []interface{}{query.ProductURL}
	argIndex := 2

	// Apply pagination
	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(` AND ("timestamp", id) < ($%d, $%d)`, argIndex, argIndex+1))
		args = append(args, query.Paginator.LastTimestamp, query.Paginator.LastID)
		argIndex += 2
	}

	// Order by timestamp DESC, id DESC for consistent pagination
	queryBuilder.WriteString(` ORDER BY "timestamp" DESC, id DESC`)

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
	args = append(args, query.EffectiveLimit())

	stmt, err := r.db.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	points := []model.PricePoint{}
	for rows.Next() {
		point, err := scanPricePoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, *point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return points, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPricePoint(row rowScanner) (*model.PricePoint, error) {
	var point model.PricePoint
	var productURL, imageURL sql.NullString
	var availability sql.NullBool
	var additional []byte
	if err := row.Scan(
		&point.ID, &productURL, &point.Name, &point.Price, &point.Currency,
		&imageURL, &availability, &point.Timestamp, &additional,
	); err != nil {
		return nil, err
	}
	point.ProductURL = productURL.String
	point.MainImageURL = nullString(imageURL)
	point.Availability = nullBool(availability)
	if len(additional) > 0 {
		point.AdditionalData = append([]byte(nil), additional...)
	}
	return &point, nil
}
