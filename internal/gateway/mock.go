package gateway

import (
	"context"

	"ucp-agent/internal/model"
)

// Mock implements Gateway for testing.
// Each method can be configured via function fields.
type Mock struct {
	DiscoverFunc         func(ctx context.Context, opts DiscoverOptions) (*model.DiscoveryProfile, error)
	CreateCheckoutFunc   func(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error)
	GetCheckoutFunc      func(ctx context.Context, id string) (*model.Checkout, error)
	UpdateCheckoutFunc   func(ctx context.Context, id string, req *model.CheckoutUpdateRequest) (*model.Checkout, error)
	CompleteCheckoutFunc func(ctx context.Context, id string, req *model.CheckoutCompleteRequest) (*model.Checkout, error)
	CancelCheckoutFunc   func(ctx context.Context, id string) (*model.Checkout, error)
	GetOrderFunc         func(ctx context.Context, id string) (*model.Order, error)
}

var _ Gateway = (*Mock)(nil)

// Discover calls the configured DiscoverFunc or returns a checkout-only profile.
func (m *Mock) Discover(ctx context.Context, opts DiscoverOptions) (*model.DiscoveryProfile, error) {
	if m.DiscoverFunc != nil {
		return m.DiscoverFunc(ctx, opts)
	}
	return &model.DiscoveryProfile{
		UCP: model.UCPMetadata{
			Version: model.ProtocolVersion,
			Capabilities: map[string][]model.Capability{
				"dev.ucp.shopping.checkout": {{Version: model.ProtocolVersion}},
			},
		},
	}, nil
}

// CreateCheckout calls the configured CreateCheckoutFunc or returns a transport error.
func (m *Mock) CreateCheckout(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, req)
	}
	return nil, model.NewTransportError(500, "", nil)
}

// GetCheckout calls the configured GetCheckoutFunc or returns not found.
func (m *Mock) GetCheckout(ctx context.Context, id string) (*model.Checkout, error) {
	if m.GetCheckoutFunc != nil {
		return m.GetCheckoutFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("checkout")
}

// UpdateCheckout calls the configured UpdateCheckoutFunc or returns not found.
func (m *Mock) UpdateCheckout(ctx context.Context, id string, req *model.CheckoutUpdateRequest) (*model.Checkout, error) {
	if m.UpdateCheckoutFunc != nil {
		return m.UpdateCheckoutFunc(ctx, id, req)
	}
	return nil, model.NewNotFoundError("checkout")
}

// CompleteCheckout calls the configured CompleteCheckoutFunc or returns not found.
func (m *Mock) CompleteCheckout(ctx context.Context, id string, req *model.CheckoutCompleteRequest) (*model.Checkout, error) {
	if m.CompleteCheckoutFunc != nil {
		return m.CompleteCheckoutFunc(ctx, id, req)
	}
	return nil, model.NewNotFoundError("checkout")
}

// CancelCheckout calls the configured CancelCheckoutFunc or returns not found.
func (m *Mock) CancelCheckout(ctx context.Context, id string) (*model.Checkout, error) {
	if m.CancelCheckoutFunc != nil {
		return m.CancelCheckoutFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("checkout")
}

// GetOrder calls the configured GetOrderFunc or returns not found.
func (m *Mock) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("order")
}
