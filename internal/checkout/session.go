// Package checkout drives a single buyer's checkout session against a merchant.
package checkout

import (
	"ucp-agent/internal/model"
	"ucp-agent/internal/reconcile"
)

// Session is the only client-side state of a conversation: which remote
// checkout is current, plus the last state the merchant returned for it.
// Last is advisory; mutations always re-read the merchant first.
// Never persisted.
type Session struct {
	CheckoutID string
	Last       *model.Checkout

	// Changes the merchant made to the items of the last create or update.
	Changes []reconcile.Change
}

// Active reports whether a checkout is open.
func (s *Session) Active() bool {
	return s != nil && s.CheckoutID != ""
}

func (s *Session) record(co *model.Checkout) {
	s.CheckoutID = co.ID
	s.Last = co
}

// Clear forgets the current checkout.
func (s *Session) Clear() {
	s.CheckoutID = ""
	s.Last = nil
	s.Changes = nil
}
