package model

import (
	"encoding/json"
	"testing"
)

func TestCheckout_FindLineItem(t *testing.T) {
	co := &Checkout{
		LineItems: []LineItem{
			{ID: "li_1", Item: Item{ID: "bouquet_roses"}, Quantity: 1},
			{ID: "li_2", Item: Item{ID: "pot_ceramic"}, Quantity: 2},
		},
	}

	li := co.FindLineItem("pot_ceramic")
	if li == nil {
		t.Fatal("FindLineItem() = nil, want li_2")
	}
	if li.ID != "li_2" {
		t.Errorf("ID = %q, want %q", li.ID, "li_2")
	}

	// Returned pointer aliases the slice element.
	li.Quantity = 5
	if co.LineItems[1].Quantity != 5 {
		t.Error("FindLineItem() should return pointer to original, not a copy")
	}

	if co.FindLineItem("gardenias") != nil {
		t.Error("FindLineItem() for absent product should be nil")
	}
}

func TestCheckout_LineItemRequests(t *testing.T) {
	co := &Checkout{
		LineItems: []LineItem{
			{ID: "li_1", Item: Item{ID: "bouquet_roses", Title: "Roses", Price: 3500}, Quantity: 2},
		},
	}

	reqs := co.LineItemRequests()
	if len(reqs) != 1 {
		t.Fatalf("len = %d, want 1", len(reqs))
	}
	want := LineItemRequest{ID: "li_1", Item: ItemRef{ID: "bouquet_roses"}, Quantity: 2}
	if reqs[0] != want {
		t.Errorf("LineItemRequests()[0] = %+v, want %+v", reqs[0], want)
	}
}

func TestCheckoutStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status CheckoutStatus
		want   bool
	}{
		{StatusIncomplete, false},
		{StatusReadyForComplete, false},
		{StatusCompleteInProgress, false},
		{StatusRequiresEscalation, false},
		{StatusCompleted, true},
		{StatusCanceled, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%q.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestExtendsField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single parent", `"dev.ucp.shopping.checkout"`, []string{"dev.ucp.shopping.checkout"}},
		{"multiple parents", `["dev.ucp.shopping.checkout","dev.ucp.shopping.order"]`,
			[]string{"dev.ucp.shopping.checkout", "dev.ucp.shopping.order"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ExtendsField
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			got := e.Parents()
			if len(got) != len(tt.want) {
				t.Fatalf("Parents() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Parents()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if !e.IsExtension() {
				t.Error("IsExtension() = false, want true")
			}
		})
	}

	var e ExtendsField
	if err := json.Unmarshal([]byte(`42`), &e); err == nil {
		t.Error("Unmarshal(42) should fail")
	}
}

// Merchant responses carry fields the agent ignores; decoding must tolerate them.
func TestCheckout_DecodeMerchantResponse(t *testing.T) {
	body := `{
		"ucp": {"version": "2026-01-11", "capabilities": {"dev.ucp.shopping.fulfillment": [{"version": "2026-01-11", "extends": "dev.ucp.shopping.checkout"}]}},
		"id": "chk_123",
		"status": "incomplete",
		"currency": "USD",
		"line_items": [{"id": "li_1", "item": {"id": "bouquet_roses", "title": "Bouquet of Red Roses", "price": 3500}, "quantity": 1}],
		"totals": [{"type": "subtotal", "amount": 3500}, {"type": "total", "amount": 3500}],
		"buyer": {"email": "a@b.com"},
		"fulfillment": {"methods": [{"type": "shipping", "destinations": [{"id": "dest_1", "street_address": "1 Main St", "address_country": "US"}]}]},
		"unknown_field": true
	}`

	var co Checkout
	if err := json.Unmarshal([]byte(body), &co); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if co.Status != StatusIncomplete {
		t.Errorf("Status = %q", co.Status)
	}
	if co.Buyer == nil || co.Buyer.Email != "a@b.com" {
		t.Errorf("Buyer = %+v", co.Buyer)
	}
	dest := co.Fulfillment.Methods[0].Destinations[0]
	if dest.ID != "dest_1" || dest.StreetAddress != "1 Main St" || dest.Country != "US" {
		t.Errorf("Destination = %+v", dest)
	}
	capab := co.UCP.Capabilities["dev.ucp.shopping.fulfillment"][0]
	if capab.Extends == nil || capab.Extends.Parents()[0] != "dev.ucp.shopping.checkout" {
		t.Errorf("Extends = %+v", capab.Extends)
	}
}
