package hydrate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Ref points at a product in the catalog together with the quantity held
// in the cart.
type Ref struct {
	ProductID string
	Quantity  int
}

// ProductInfo is the catalog data needed to display one cart line.
type ProductInfo struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	ImageURL string
}

// Lookup resolves product references against the catalog.
type Lookup interface {
	Product(ctx context.Context, id string) (ProductInfo, error)
}

// Line is a display-ready cart line. It is derived, never persisted;
// quantity mirrors the source ref at hydration time.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageURL  string
}

// Total returns unit price times quantity, unrounded.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LookupError reports the product whose catalog lookup failed.
type LookupError struct {
	ProductID string
	Err       error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("product lookup failed for %s: %v", e.ProductID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Hydrator resolves cart refs into display-ready lines.
type Hydrator struct {
	lookup Lookup
}

// NewHydrator builds a hydrator over the provided catalog lookup.
func NewHydrator(lookup Lookup) (*Hydrator, error) {
	if lookup == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &Hydrator{lookup: lookup}, nil
}

// Hydrate resolves every ref concurrently, one lookup per line, and joins
// the results in input order. Any single failure fails the whole hydration
// with a LookupError naming the product; partial results are never
// returned, since dropping failed lines would show totals for a cart that
// does not exist.
func (h *Hydrator) Hydrate(ctx context.Context, refs []Ref) ([]Line, error) {
	if len(refs) == 0 {
		return []Line{}, nil
	}

	lines := make([]Line, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			info, err := h.lookup.Product(ctx, ref.ProductID)
			if err != nil {
				return &LookupError{ProductID: ref.ProductID, Err: err}
			}
			lines[i] = Line{
				ProductID: ref.ProductID,
				Name:      info.Title,
				UnitPrice: info.Price,
				Quantity:  ref.Quantity,
				ImageURL:  info.ImageURL,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}
