package checkout

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"ucp-agent/internal/catalog"
	"ucp-agent/internal/gateway"
	"ucp-agent/internal/model"
)

// fakeMerchant is an in-memory UCP merchant behind gateway.Mock. It applies
// full-replacement updates, assigns its own random destination and option IDs,
// and records every request it receives.
type fakeMerchant struct {
	checkouts map[string]*model.Checkout
	nextID    int

	offerDestinations bool
	offerOptions      bool

	// once a destination is selected, echo only its ID
	omitSelectedDestinations bool

	// stock caps quantities per product; zero drops the product
	stock map[string]int

	creates   []*model.CheckoutCreateRequest
	updates   []*model.CheckoutUpdateRequest
	completes []*model.CheckoutCompleteRequest
	gets      int

	completeErr error
}

func newFakeMerchant() *fakeMerchant {
	return &fakeMerchant{
		checkouts:         make(map[string]*model.Checkout),
		offerDestinations: true,
		offerOptions:      true,
	}
}

func (f *fakeMerchant) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func (f *fakeMerchant) applyItems(co *model.Checkout, items []model.LineItemRequest) {
	co.LineItems = co.LineItems[:0]
	for _, li := range items {
		qty := li.Quantity
		if limit, ok := f.stock[li.Item.ID]; ok && qty > limit {
			qty = limit
		}
		if qty == 0 {
			continue
		}
		id := li.ID
		if id == "" {
			id = f.id("li")
		}
		co.LineItems = append(co.LineItems, model.LineItem{
			ID:       id,
			Item:     model.Item{ID: li.Item.ID},
			Quantity: qty,
		})
	}
}

// snapshot returns a deep-enough copy so the engine never aliases merchant state.
func snapshot(co *model.Checkout) *model.Checkout {
	c := *co
	c.LineItems = append([]model.LineItem(nil), co.LineItems...)
	if co.Fulfillment != nil {
		ff := *co.Fulfillment
		ff.Methods = append([]model.FulfillmentMethod(nil), co.Fulfillment.Methods...)
		c.Fulfillment = &ff
	}
	return &c
}

func (f *fakeMerchant) applyFulfillment(co *model.Checkout, req *model.FulfillmentRequest) error {
	m := req.Methods[0]
	switch {
	case len(m.Destinations) > 0:
		method := model.FulfillmentMethod{ID: f.id("method"), Type: m.Type}
		if f.offerDestinations {
			dest := m.Destinations[0]
			dest.ID = "dest_" + uuid.NewString()
			method.Destinations = []model.Destination{dest}
		}
		co.Fulfillment = &model.Fulfillment{Methods: []model.FulfillmentMethod{method}}

	case len(m.Groups) > 0:
		method := &co.Fulfillment.Methods[0]
		if m.SelectedDestinationID != method.SelectedDestinationID {
			return model.NewFieldValidationError("unknown destination", nil)
		}
		group := &method.Groups[0]
		if m.Groups[0].SelectedOptionID != group.Options[0].ID {
			return model.NewFieldValidationError("unknown option", nil)
		}
		group.SelectedOptionID = m.Groups[0].SelectedOptionID
		if co.Buyer != nil && co.Buyer.Email != "" {
			co.Status = model.StatusReadyForComplete
		}

	case m.SelectedDestinationID != "":
		method := &co.Fulfillment.Methods[0]
		if len(method.Destinations) == 0 || m.SelectedDestinationID != method.Destinations[0].ID {
			return model.NewFieldValidationError("unknown destination", nil)
		}
		method.SelectedDestinationID = m.SelectedDestinationID
		if f.omitSelectedDestinations {
			method.Destinations = nil
		}
		if f.offerOptions {
			method.Groups = []model.FulfillmentGroup{{
				ID: f.id("group"),
				Options: []model.FulfillmentOption{
					{ID: "opt_" + uuid.NewString(), Title: "Standard"},
					{ID: "opt_" + uuid.NewString(), Title: "Express"},
				},
			}}
		}
	}
	return nil
}

func (f *fakeMerchant) gateway() *gateway.Mock {
	return &gateway.Mock{
		CreateCheckoutFunc: func(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error) {
			f.creates = append(f.creates, req)
			co := &model.Checkout{ID: f.id("chk"), Status: model.StatusIncomplete, Currency: req.Currency}
			f.applyItems(co, req.LineItems)
			f.checkouts[co.ID] = co
			return snapshot(co), nil
		},
		GetCheckoutFunc: func(ctx context.Context, id string) (*model.Checkout, error) {
			f.gets++
			co, ok := f.checkouts[id]
			if !ok {
				return nil, model.NewNotFoundError("checkout")
			}
			return snapshot(co), nil
		},
		UpdateCheckoutFunc: func(ctx context.Context, id string, req *model.CheckoutUpdateRequest) (*model.Checkout, error) {
			f.updates = append(f.updates, req)
			co, ok := f.checkouts[id]
			if !ok {
				return nil, model.NewNotFoundError("checkout")
			}
			f.applyItems(co, req.LineItems)
			co.Currency = req.Currency
			if req.Buyer != nil {
				co.Buyer = req.Buyer
			}
			if req.Fulfillment != nil {
				if err := f.applyFulfillment(co, req.Fulfillment); err != nil {
					return nil, err
				}
			}
			return snapshot(co), nil
		},
		CompleteCheckoutFunc: func(ctx context.Context, id string, req *model.CheckoutCompleteRequest) (*model.Checkout, error) {
			f.completes = append(f.completes, req)
			if f.completeErr != nil {
				return nil, f.completeErr
			}
			co, ok := f.checkouts[id]
			if !ok {
				return nil, model.NewNotFoundError("checkout")
			}
			co.Status = model.StatusCompleted
			co.Order = &model.OrderConfirmation{ID: "ord_" + id}
			return snapshot(co), nil
		},
		CancelCheckoutFunc: func(ctx context.Context, id string) (*model.Checkout, error) {
			co, ok := f.checkouts[id]
			if !ok {
				return nil, model.NewNotFoundError("checkout")
			}
			co.Status = model.StatusCanceled
			return snapshot(co), nil
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(gw gateway.Gateway) *Engine {
	cat := catalog.New(append(catalog.Default().Products(), catalog.Product{ID: "rose", Title: "Single Rose", Price: 500}))
	return New(gw, cat, &Session{}, Config{AgentName: "test-agent", Logger: testLogger()})
}
