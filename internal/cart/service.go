package cart

import (
	"context"
	"sync"

	"github.com/capitlshop/storefront-backend/internal/hydrate"
	"github.com/capitlshop/storefront-backend/internal/summary"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// Notifier delivers shopper-facing events emitted by cart operations.
type Notifier interface {
	Info(ctx context.Context, shopperID, message string)
	Error(ctx context.Context, shopperID, message string)
}

// LineDTO is one display-ready cart line with presentation rounding applied.
type LineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url"`
	Total     string `json:"total"`
}

// SummaryDTO is the derived order totals, rounded for display.
type SummaryDTO struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// ViewDTO is the hydrated cart plus its summary.
type ViewDTO struct {
	Lines   []LineDTO  `json:"lines"`
	Summary SummaryDTO `json:"summary"`
}

// Service exposes the shopper-facing cart operations.
type Service interface {
	AddItem(ctx context.Context, shopperID, productID string, quantity int) error
	DecrementItem(ctx context.Context, shopperID, productID string, amount int) error
	RemoveItem(ctx context.Context, shopperID, productID string) error
	View(ctx context.Context, shopperID string) (*ViewDTO, error)
	Close()
}

type shopperView struct {
	store   *Store
	watcher *hydrate.Watcher
}

type service struct {
	manager  *Manager
	lookup   hydrate.Lookup
	hydrator *hydrate.Hydrator
	notifier Notifier

	mu    sync.Mutex
	views map[string]*shopperView

	// watchCtx bounds every per-shopper watcher goroutine.
	watchCtx    context.Context
	watchCancel context.CancelFunc
}

// NewService wires the cart orchestration over the store manager, the
// product lookup, and the notification sink.
func NewService(manager *Manager, lookup hydrate.Lookup, notifier Notifier) (Service, error) {
	if manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager required")
	}
	if lookup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product lookup required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}

	hydrator, err := hydrate.NewHydrator(lookup)
	if err != nil {
		return nil, err
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	return &service{
		manager:     manager,
		lookup:      lookup,
		hydrator:    hydrator,
		notifier:    notifier,
		views:       map[string]*shopperView{},
		watchCtx:    watchCtx,
		watchCancel: watchCancel,
	}, nil
}

// AddItem merges the product into the shopper's cart after confirming it
// exists in the catalog.
func (s *service) AddItem(ctx context.Context, shopperID, productID string, quantity int) error {
	if _, err := s.lookup.Product(ctx, productID); err != nil {
		return err
	}

	view, err := s.viewFor(ctx, shopperID)
	if err != nil {
		return err
	}
	return view.store.Add(ctx, productID, quantity)
}

// DecrementItem lowers the line's quantity, dropping it at zero.
func (s *service) DecrementItem(ctx context.Context, shopperID, productID string, amount int) error {
	view, err := s.viewFor(ctx, shopperID)
	if err != nil {
		return err
	}
	return view.store.Decrement(ctx, productID, amount)
}

// RemoveItem deletes the line and tells the shopper what left the cart.
func (s *service) RemoveItem(ctx context.Context, shopperID, productID string) error {
	view, err := s.viewFor(ctx, shopperID)
	if err != nil {
		return err
	}
	if view.store.Quantity(productID) == 0 {
		return nil
	}

	name := ""
	if info, err := s.lookup.Product(ctx, productID); err == nil {
		name = info.Title
	}

	if err := view.store.Remove(ctx, productID); err != nil {
		return err
	}
	if name != "" {
		s.notifier.Info(ctx, shopperID, name+" removed from cart")
	}
	return nil
}

// View hydrates the shopper's cart and derives its summary.
func (s *service) View(ctx context.Context, shopperID string) (*ViewDTO, error) {
	view, err := s.viewFor(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	lines, err := view.watcher.Refresh(ctx)
	if err != nil {
		s.notifier.Error(ctx, shopperID, "Failed to load cart items")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hydrate cart")
	}

	totals := summary.Summarize(lines)
	dto := &ViewDTO{
		Lines: make([]LineDTO, 0, len(lines)),
		Summary: SummaryDTO{
			Subtotal: totals.Subtotal.StringFixed(2),
			Shipping: totals.Shipping.StringFixed(2),
			Total:    totals.Total.StringFixed(2),
		},
	}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
			Total:     line.Total().StringFixed(2),
		})
	}
	return dto, nil
}

// Close stops every per-shopper watcher.
func (s *service) Close() {
	s.watchCancel()
}

func (s *service) viewFor(ctx context.Context, shopperID string) (*shopperView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if view, ok := s.views[shopperID]; ok {
		return view, nil
	}

	store, err := s.manager.StoreFor(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	refs := func() []hydrate.Ref {
		lines := store.Lines()
		out := make([]hydrate.Ref, 0, len(lines))
		for _, line := range lines {
			out = append(out, hydrate.Ref{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		return out
	}
	watcher, err := hydrate.NewWatcher(s.hydrator, refs, store.Subscribe)
	if err != nil {
		return nil, err
	}
	go watcher.Run(s.watchCtx)

	view := &shopperView{store: store, watcher: watcher}
	s.views[shopperID] = view
	return view, nil
}
