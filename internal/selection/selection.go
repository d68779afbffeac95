// Package selection tracks the user's chosen subset of the catalog.
package selection

import (
	"fmt"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
)

// Set is an insertion-ordered map of product id to product.
type Set struct {
	order []int
	items map[int]catalog.Product
}

// New returns an empty Set.
func New() *Set {
	return &Set{items: make(map[int]catalog.Product)}
}

// Toggle adds p if absent or removes it if present, and reports whether p
// is selected afterwards.
func (s *Set) Toggle(p catalog.Product) bool {
	if s.Has(p.ID) {
		s.Remove(p.ID)
		return false
	}
	s.items[p.ID] = p
	s.order = append(s.order, p.ID)
	return true
}

// Remove deselects id. Removing an unselected id is a no-op.
func (s *Set) Remove(id int) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear deselects everything.
func (s *Set) Clear() {
	s.order = nil
	s.items = make(map[int]catalog.Product)
}

// Has reports whether id is selected.
func (s *Set) Has(id int) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of selected products.
func (s *Set) Len() int { return len(s.order) }

// IDs returns the selected ids in selection order.
func (s *Set) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Products returns the selected products in selection order.
func (s *Set) Products() []catalog.Product {
	out := make([]catalog.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Hydrate adds each id that find can resolve, in the given order. Ids that
// cannot be resolved, or are already selected, are skipped.
func (s *Set) Hydrate(ids []int, find func(int) (catalog.Product, bool)) {
	for _, id := range ids {
		if s.Has(id) {
			continue
		}
		if p, ok := find(id); ok {
			s.items[p.ID] = p
			s.order = append(s.order, p.ID)
		}
	}
}

// Summary is the human-readable selection count line.
func (s *Set) Summary() string {
	n := s.Len()
	switch {
	case n == 0:
		return "No products selected yet."
	case n == 1:
		return "1 product selected. Tap a card or the × icon to remove."
	default:
		return fmt.Sprintf("%d products selected. Tap a card or the × icon to remove.", n)
	}
}
