// Package cart holds the in-memory shopping cart: an ordered list of entries
// keyed by product ID, plus the totals derived from it.
//
// A Store performs no I/O and is not safe for concurrent use; the owner
// serialises access (see the storefront package).
package cart

import (
	"math"
	"strings"
)

// maxQuantity bounds a single line; persisted carts use the same limit.
const maxQuantity = math.MaxInt32

// Store is the ordered set of cart entries.
type Store struct {
	entries []Entry
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// Restore replaces the cart contents with entries, in order. The entries
// must satisfy the cart invariants; otherwise nothing changes.
func (s *Store) Restore(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return invalid("id", "is duplicated: "+e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	s.entries = append([]Entry(nil), entries...)
	return nil
}

// Add is AddItem with the request's quantity, defaulting to one unit.
func (s *Store) Add(it Item) error {
	qty := it.Quantity
	if qty == 0 {
		qty = 1
	}
	return s.AddItem(it.ID, it.Name, it.Amount, it.UnitPrice, qty)
}

// AddItem increments the quantity of the entry with the given id, or appends
// a new entry when there is none. An existing entry keeps the name, amount
// and price it was first added with.
func (s *Store) AddItem(id, name, amount string, unitPrice float64, quantityDelta int) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "is required")
	}
	if err := validatePrice(unitPrice); err != nil {
		return err
	}
	if err := ValidateQuantity(quantityDelta); err != nil {
		return err
	}

	if i := s.index(id); i >= 0 {
		if s.entries[i].Quantity > maxQuantity-quantityDelta {
			return invalid("quantity", "would exceed the per-line limit")
		}
		s.entries[i].Quantity += quantityDelta
		return nil
	}

	s.entries = append(s.entries, Entry{
		ID:        id,
		Name:      name,
		Amount:    amount,
		UnitPrice: unitPrice,
		Quantity:  quantityDelta,
	})
	return nil
}

// RemoveItem drops the entry with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	kept := make([]Entry, 0, len(s.entries)-1)
	kept = append(kept, s.entries[:i]...)
	kept = append(kept, s.entries[i+1:]...)
	s.entries = kept
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.entries = nil
}

// Entries returns a copy of the cart lines in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the entry with the given id, if any.
func (s *Store) Get(id string) (Entry, bool) {
	if i := s.index(id); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Len is the number of distinct entries.
func (s *Store) Len() int { return len(s.entries) }

func (s *Store) IsEmpty() bool { return len(s.entries) == 0 }

// GrandTotal sums the line totals. The result is not rounded.
func (s *Store) GrandTotal() float64 {
	total := 0.0
	for _, e := range s.entries {
		total += e.LineTotal()
	}
	return total
}

// ItemCount sums the quantities of all entries.
func (s *Store) ItemCount() int {
	n := 0
	for _, e := range s.entries {
		n += e.Quantity
	}
	return n
}

// LineTotal is e.UnitPrice * e.Quantity.
func LineTotal(e Entry) float64 {
	return e.LineTotal()
}

func (s *Store) index(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// ValidateQuantity reports whether n is an acceptable quantity to add.
func ValidateQuantity(n int) error {
	if n < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if n > maxQuantity {
		return invalid("quantity", "is too large")
	}
	return nil
}

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return invalid("id", "is required")
	}
	if err := validatePrice(e.UnitPrice); err != nil {
		return err
	}
	if e.Quantity < 1 || e.Quantity > maxQuantity {
		return invalid("quantity", "must be between 1 and the per-line limit")
	}
	return nil
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return invalid("unitPrice", "must be a finite number")
	}
	if p < 0 {
		return invalid("unitPrice", "must not be negative")
	}
	return nil
}
