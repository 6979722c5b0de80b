package catalog

import (
	"context"

	"github.com/capitlshop/storefront-backend/internal/hydrate"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// Lookup adapts the catalog service to the cart hydrator's product lookup.
type Lookup struct {
	svc Service
}

// NewLookup wires the adapter over a catalog service.
func NewLookup(svc Service) (*Lookup, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog service required")
	}
	return &Lookup{svc: svc}, nil
}

// Product implements hydrate.Lookup.
func (l *Lookup) Product(ctx context.Context, id string) (hydrate.ProductInfo, error) {
	product, err := l.svc.GetProduct(ctx, id)
	if err != nil {
		return hydrate.ProductInfo{}, err
	}
	return hydrate.ProductInfo{
		ID:       product.ID,
		Title:    product.Title,
		Price:    product.Price,
		ImageURL: product.Image,
	}, nil
}
