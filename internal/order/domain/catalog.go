package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogProduct is the slice of the external product catalog this core
// consumes: the price snapshotted onto order lines at creation time.
type CatalogProduct struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ProductCatalog looks up products in the external catalog service. Used
// only at order-creation time; the fulfillment engine never reads prices
// afterwards.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID uint) (*CatalogProduct, error)
}
