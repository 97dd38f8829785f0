package entity

import "github.com/shopspring/decimal"

type ProductVariant struct {
	ID        string
	ProductID string
	Price     decimal.Decimal
	Currency  string
	Active    bool
}
