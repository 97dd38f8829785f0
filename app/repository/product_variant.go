package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-checkout/app/entity"
)

type ProductVariantRepository struct {
	db DBTX
}

func NewProductVariantRepository(db DBTX) *ProductVariantRepository {
	return &ProductVariantRepository{db: db}
}

// FindByIDs returns the variants that exist, keyed by variant id. Missing ids are
// simply absent from the map.
func (r *ProductVariantRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.ProductVariant, error) {
	result := make(map[string]*entity.ProductVariant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, price, currency, active
		FROM product_variants
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		variant := &entity.ProductVariant{}
		var price string
		if err := rows.Scan(&variant.ID, &variant.ProductID, &price, &variant.Currency, &variant.Active); err != nil {
			return nil, err
		}
		variant.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		result[variant.ID] = variant
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
