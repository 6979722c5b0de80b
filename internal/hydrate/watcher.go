package hydrate

import (
	"context"
	"fmt"
	"sync"
)

// Watcher keeps a hydration of one cart current. It recomputes whenever
// the cart signals a change and discards any in-flight result that a later
// mutation superseded, so stale totals are never published.
type Watcher struct {
	hyd       *Hydrator
	refs      func() []Ref
	subscribe func() (<-chan struct{}, func())

	mu    sync.Mutex
	gen   uint64
	lines []Line
	err   error
	ready bool
}

// NewWatcher wires a watcher over a cart snapshot func and its
// subscription hook.
func NewWatcher(hyd *Hydrator, refs func() []Ref, subscribe func() (<-chan struct{}, func())) (*Watcher, error) {
	if hyd == nil {
		return nil, fmt.Errorf("hydrator required")
	}
	if refs == nil || subscribe == nil {
		return nil, fmt.Errorf("cart accessors required")
	}
	return &Watcher{hyd: hyd, refs: refs, subscribe: subscribe}, nil
}

// Run recomputes on every cart change until ctx is done. Callers start it
// on its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ch, cancel := w.subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			_, _ = w.Refresh(ctx)
		}
	}
}

// Refresh recomputes the hydration from the current cart contents and
// returns the fresh result. If the cart mutates while the lookups are in
// flight, the result is returned to this caller but not published as
// latest; the mutation's own refresh supersedes it.
func (w *Watcher) Refresh(ctx context.Context) ([]Line, error) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	snapshot := w.refs()
	w.mu.Unlock()

	lines, err := w.hyd.Hydrate(ctx, snapshot)

	w.mu.Lock()
	if gen == w.gen {
		w.lines = lines
		w.err = err
		w.ready = true
	}
	w.mu.Unlock()

	return lines, err
}

// Latest returns the last published hydration. ok is false until the
// first refresh completes.
func (w *Watcher) Latest() (lines []Line, err error, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines, w.err, w.ready
}
