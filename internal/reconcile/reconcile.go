// Package reconcile compares the line items the agent sent with the line items
// the merchant returned. Merchants may cap quantities to stock, drop
// unavailable products or add items of their own; the engine reports those
// differences instead of silently accepting them.
package reconcile

import (
	"fmt"
	"sort"

	"ucp-agent/internal/model"
)

// Change is a product whose returned quantity differs from the requested one.
type Change struct {
	ProductID string
	Requested int // 0 when the merchant added the product
	Returned  int // 0 when the merchant dropped the product
}

// Dropped reports whether the merchant removed the product entirely.
func (c Change) Dropped() bool { return c.Returned == 0 }

// Added reports whether the merchant added a product nobody asked for.
func (c Change) Added() bool { return c.Requested == 0 }

func (c Change) String() string {
	switch {
	case c.Dropped():
		return fmt.Sprintf("%s was removed by the merchant", c.ProductID)
	case c.Added():
		return fmt.Sprintf("%s (x%d) was added by the merchant", c.ProductID, c.Returned)
	default:
		return fmt.Sprintf("%s quantity changed from %d to %d", c.ProductID, c.Requested, c.Returned)
	}
}

// DiffLineItems returns the changes between requested and returned line items,
// sorted by product ID. Matching is by product ID; quantities of repeated
// products are summed, since merchants may split or merge lines.
func DiffLineItems(requested []model.LineItemRequest, returned []model.LineItem) []Change {
	want := make(map[string]int, len(requested))
	for _, li := range requested {
		want[li.Item.ID] += li.Quantity
	}
	got := make(map[string]int, len(returned))
	for _, li := range returned {
		got[li.Item.ID] += li.Quantity
	}

	var changes []Change
	for id, q := range want {
		if got[id] != q {
			changes = append(changes, Change{ProductID: id, Requested: q, Returned: got[id]})
		}
	}
	for id, q := range got {
		if _, ok := want[id]; !ok {
			changes = append(changes, Change{ProductID: id, Returned: q})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].ProductID < changes[j].ProductID })
	return changes
}
