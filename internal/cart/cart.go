// Package cart holds the in-memory shopping cart of the storefront.
//
// The cart is an ordered list of line items keyed by product id plus the
// open/closed state of the cart panel. Totals are derived on every read.
// Mutations that change the state are announced to subscribers with a full
// snapshot taken under the same lock, so observers never see a partial update.
package cart

import (
	"sync"

	"food_store/internal/models"
)

// LineItem is one product-and-quantity entry. Quantity is always at least 1.
type LineItem struct {
	ID        int64        `json:"id"`
	Name      string       `json:"nombre"`
	UnitPrice models.Price `json:"precio"`
	Quantity  int          `json:"cantidad"`
	ImageURL  string       `json:"imagen,omitempty"`
	Category  string       `json:"categoria_nombre,omitempty"`
}

// Subtotal is the unit price times the quantity.
func (li LineItem) Subtotal() models.Price {
	return li.UnitPrice * models.Price(li.Quantity)
}

// State is an immutable view of the cart.
type State struct {
	Items []LineItem   `json:"items"`
	Total models.Price `json:"total"`
	Count int          `json:"count"`
	Open  bool         `json:"is_open"`
	// Version increases with every change; observers can use it to drop stale snapshots.
	Version uint64 `json:"version"`
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Store is the cart state container. The zero value is not usable; call New.
type Store struct {
	mu          sync.RWMutex
	items       []LineItem
	open        bool
	version     uint64
	subscribers []subscriber
	nextSubID   uint64
}

// New returns an empty, closed cart.
func New() *Store {
	return &Store{}
}

// AddItem adds qty units of product. An existing line item for the same product
// has its quantity increased. qty below 1 is ignored.
// Every mutator returns the state right after its own change.
func (s *Store) AddItem(product models.Product, qty int) State {
	if qty < 1 {
		return s.Snapshot()
	}
	return s.mutate(func() bool {
		if i := s.indexLocked(product.ID); i >= 0 {
			s.items[i].Quantity += qty
			return true
		}
		s.items = append(s.items, LineItem{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  qty,
			ImageURL:  product.ImageURL,
			Category:  product.CategoryName,
		})
		return true
	})
}

// RemoveItem deletes the line item with id. Absent ids are ignored.
func (s *Store) RemoveItem(id int64) State {
	return s.mutate(func() bool {
		return s.removeLocked(id)
	})
}

// SetQuantity sets the quantity of the line item with id.
// qty <= 0 removes the item. Absent ids are ignored.
func (s *Store) SetQuantity(id int64, qty int) State {
	return s.mutate(func() bool {
		if qty <= 0 {
			return s.removeLocked(id)
		}
		i := s.indexLocked(id)
		if i < 0 || s.items[i].Quantity == qty {
			return false
		}
		s.items[i].Quantity = qty
		return true
	})
}

// Clear empties the cart. The open state is kept.
func (s *Store) Clear() State {
	return s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// Toggle flips the open state of the cart panel.
func (s *Store) Toggle() State {
	return s.mutate(func() bool {
		s.open = !s.open
		return true
	})
}

// Open shows the cart panel.
func (s *Store) Open() State { return s.setOpen(true) }

// Close hides the cart panel.
func (s *Store) Close() State { return s.setOpen(false) }

func (s *Store) setOpen(open bool) State {
	return s.mutate(func() bool {
		if s.open == open {
			return false
		}
		s.open = open
		return true
	})
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked()
}

// Total is the sum of unit price times quantity over all items.
func (s *Store) Total() models.Price {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalLocked()
}

// Count is the sum of quantities, used for the cart badge.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

// IsOpen reports whether the cart panel is shown.
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Snapshot returns the whole state at once.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change.
// fn runs on the mutating goroutine, after the lock is released.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) mutate(fn func() bool) State {
	s.mu.Lock()
	if !fn() {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}
	s.version++
	state := s.snapshotLocked()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(state)
	}
	return state
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id int64) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return true
}

func (s *Store) itemsLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) totalLocked() models.Price {
	var total models.Price
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

func (s *Store) countLocked() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) snapshotLocked() State {
	return State{
		Items:   s.itemsLocked(),
		Total:   s.totalLocked(),
		Count:   s.countLocked(),
		Open:    s.open,
		Version: s.version,
	}
}
