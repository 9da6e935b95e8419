// Package cart holds the customer's local shopping cart: product-keyed
// entries persisted through a Storage after every mutation, totals
// recomputed on every read. It has no fallible operations of its own:
// storage write errors are reported to the notifier, never block the
// mutation.
package cart

import (
	"sync"
	"time"

	"github.com/j1vetr/EscapeTable/internal/catalog"
)

// DefaultUndoWindow is how long a removed entry can be restored. Matches
// the lifetime of the removal notification shown to the user.
const DefaultUndoWindow = 5 * time.Second

type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (it Item) Subtotal() int { return it.Product.PriceInCents * it.Quantity }

// Storage persists the cart between sessions.
type Storage interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// Notification is a user-visible cart event. Undo is non-nil only for
// removals and is valid until the undo window expires.
type Notification struct {
	Title   string
	Detail  string
	Product string
	Undo    func()
}

// Notifier receives cart notifications. Implementations decide how they are
// surfaced (toast, terminal line, ...); cart logic never does.
type Notifier interface {
	Notify(n Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type removedEntry struct {
	item      Item
	expiresAt time.Time
}

// Store is the cart state container. Mutations are last-write-wins; two
// processes sharing one storage file are not coordinated.
type Store struct {
	mu         sync.Mutex
	items      []Item
	storage    Storage
	notifier   Notifier
	undoWindow time.Duration
	now        func() time.Time
	removed    *removedEntry
}

// NewStore loads any persisted cart from storage. A nil notifier is
// replaced with a no-op one.
func NewStore(storage Storage, notifier Notifier) (*Store, error) {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	items, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Store{
		items:      items,
		storage:    storage,
		notifier:   notifier,
		undoWindow: DefaultUndoWindow,
		now:        time.Now,
	}, nil
}

// Add inserts the product or, if already present, increments its quantity.
// It always succeeds; stock limits are a UI affordance, not a cart rule.
func (s *Store) Add(p catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Product.ID == p.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, Item{Product: p, Quantity: quantity})
	}
	s.persistLocked()
	s.mu.Unlock()

	title := "Sepete eklendi"
	if merged {
		title = "Miktar güncellendi"
	}
	s.notifier.Notify(Notification{Title: title, Product: p.Name})
}

// Remove deletes the entry and offers an undo that restores it verbatim
// (same product snapshot, same quantity) until the window expires.
// Removing an absent product is a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.removed = &removedEntry{item: removed, expiresAt: s.now().Add(s.undoWindow)}
	s.persistLocked()
	s.mu.Unlock()

	s.notifier.Notify(Notification{
		Title:   "Sepetten kaldırıldı",
		Product: removed.Product.Name,
		Undo:    func() { s.Undo() },
	})
}

// Undo restores the most recently removed entry if its window has not
// expired. Returns whether anything was restored.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed == nil || s.now().After(s.removed.expiresAt) {
		s.removed = nil
		return false
	}
	s.items = append(s.items, s.removed.item)
	s.removed = nil
	s.persistLocked()
	return true
}

// SetQuantity replaces the entry's quantity; q <= 0 removes the entry.
func (s *Store) SetQuantity(productID string, q int) {
	if q <= 0 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = q
			s.persistLocked()
			return
		}
	}
}

// Clear empties the cart. Called after a confirmed order.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.removed = nil
	s.persistLocked()
}

// Items returns a copy of the current entries.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of quantities over all entries.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalAmount is the sum of unit price times quantity, in cents, computed
// freshly on every call.
func (s *Store) TotalAmount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

func (s *Store) persistLocked() {
	if err := s.storage.Save(s.items); err != nil {
		s.notifier.Notify(Notification{Title: "Sepet kaydedilemedi", Detail: err.Error()})
	}
}
