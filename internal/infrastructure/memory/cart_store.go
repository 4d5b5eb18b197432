package memory

import (
	"context"
	"sync"

	domain "github.com/bylucie/storefront/internal/domain/cart"
)

// CartStore holds the shopper's cart behind an explicit handle with a narrow
// read/subscribe surface. Mutations happen here, outside the checkout
// pipeline; the wizard only reads, clears on success, and listens for
// changes.
type CartStore struct {
	mu          sync.RWMutex
	lines       domain.Lines
	subscribers map[int]func(domain.Lines)
	nextSub     int
}

func NewCartStore(lines domain.Lines) *CartStore {
	return &CartStore{
		lines:       lines.Clone(),
		subscribers: make(map[int]func(domain.Lines)),
	}
}

func (s *CartStore) Lines(ctx context.Context) (domain.Lines, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines.Clone(), nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	_ = ctx

	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetQuantity adjusts one line's quantity; zero removes the line. This is
// the cart-page mutation that clears stock conflicts.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	_ = ctx
	if quantity < 0 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	updated := make(domain.Lines, 0, len(s.lines))
	for _, l := range s.lines {
		if l.ProductID == productID {
			if quantity == 0 {
				continue
			}
			l.Quantity = quantity
		}
		updated = append(updated, l)
	}
	s.lines = updated
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers a callback invoked after every mutation with the new
// lines. The returned cancel func removes the subscription.
func (s *CartStore) Subscribe(fn func(domain.Lines)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.nextSub
	s.nextSub++
	s.subscribers[idx] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, idx)
	}
}

func (s *CartStore) notify() {
	s.mu.RLock()
	lines := s.lines.Clone()
	fns := make([]func(domain.Lines), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(lines.Clone())
	}
}
