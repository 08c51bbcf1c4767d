package model

// === Request Types ===

// CheckoutCreateRequest opens a new checkout session.
type CheckoutCreateRequest struct {
	Currency    string              `json:"currency"`
	LineItems   []LineItemRequest   `json:"line_items"`
	Payment     Payment             `json:"payment"`
	Buyer       *Buyer              `json:"buyer,omitempty"`
	Fulfillment *FulfillmentRequest `json:"fulfillment,omitempty"`
}

// CheckoutUpdateRequest replaces the checkout state wholesale.
// LineItems is the complete desired list: every surviving item must be resent
// with its merchant-assigned ID, otherwise the merchant drops or re-creates it.
type CheckoutUpdateRequest struct {
	ID          string              `json:"id"`
	Currency    string              `json:"currency"`
	LineItems   []LineItemRequest   `json:"line_items"`
	Payment     Payment             `json:"payment"`
	Buyer       *Buyer              `json:"buyer,omitempty"`
	Fulfillment *FulfillmentRequest `json:"fulfillment,omitempty"`
}

// LineItemRequest specifies a line item in a create or update request.
// ID is empty for items the merchant has not seen yet.
type LineItemRequest struct {
	ID       string  `json:"id,omitempty"`
	Item     ItemRef `json:"item"`
	Quantity int     `json:"quantity"`
}

// ItemRef points at a catalog product.
type ItemRef struct {
	ID string `json:"id"`
}

// FulfillmentRequest carries fulfillment input for an update.
type FulfillmentRequest struct {
	Methods []FulfillmentMethodRequest `json:"methods"`
}

// FulfillmentMethodRequest is one method in a fulfillment update.
type FulfillmentMethodRequest struct {
	Type                  string               `json:"type"`
	Destinations          []Destination        `json:"destinations,omitempty"`
	SelectedDestinationID string               `json:"selected_destination_id,omitempty"`
	Groups                []GroupSelectRequest `json:"groups,omitempty"`
}

// GroupSelectRequest selects an option within a fulfillment group.
type GroupSelectRequest struct {
	SelectedOptionID string `json:"selected_option_id"`
}

// CheckoutCompleteRequest submits payment for a ready checkout.
type CheckoutCompleteRequest struct {
	PaymentData PaymentInstrument `json:"payment_data"`
	RiskSignals map[string]any    `json:"risk_signals"`
}

// LineItemRequests converts the line items of a checkout into request form,
// preserving merchant-assigned IDs and quantities.
func (c *Checkout) LineItemRequests() []LineItemRequest {
	items := make([]LineItemRequest, 0, len(c.LineItems))
	for _, li := range c.LineItems {
		items = append(items, li.Request())
	}
	return items
}

// Request converts a line item into its update-request form.
func (li LineItem) Request() LineItemRequest {
	return LineItemRequest{
		ID:       li.ID,
		Item:     ItemRef{ID: li.Item.ID},
		Quantity: li.Quantity,
	}
}
