// Package gateway talks to a UCP merchant over REST.
// Every checkout mutation is a full replacement: the merchant never merges.
package gateway

import (
	"context"

	"ucp-agent/internal/model"
)

// Gateway is the merchant-facing API the checkout engine drives.
// Client is the HTTP implementation; Mock serves tests.
type Gateway interface {
	// Discover fetches the merchant's /.well-known/ucp profile.
	Discover(ctx context.Context, opts DiscoverOptions) (*model.DiscoveryProfile, error)

	// CreateCheckout opens a new checkout session.
	CreateCheckout(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error)

	// GetCheckout reads the current merchant state of a checkout.
	GetCheckout(ctx context.Context, checkoutID string) (*model.Checkout, error)

	// UpdateCheckout replaces the checkout state with req.
	UpdateCheckout(ctx context.Context, checkoutID string, req *model.CheckoutUpdateRequest) (*model.Checkout, error)

	// CompleteCheckout submits payment. Only valid once the merchant reports ready_for_complete.
	CompleteCheckout(ctx context.Context, checkoutID string, req *model.CheckoutCompleteRequest) (*model.Checkout, error)

	// CancelCheckout cancels a checkout session.
	CancelCheckout(ctx context.Context, checkoutID string) (*model.Checkout, error)

	// GetOrder fetches a placed order.
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
}

// DiscoverOptions tunes Discover.
type DiscoverOptions struct {
	// NoCache forces a fetch even when a profile is cached. The result is still cached.
	NoCache bool
	// SkipVersionCheck accepts any merchant protocol version.
	SkipVersionCheck bool
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches an Idempotency-Key to requests made with ctx.
// Without one, every request gets a fresh random key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}
