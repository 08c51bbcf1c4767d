package model

// OrderConfirmation is attached to a checkout once it has been completed.
type OrderConfirmation struct {
	ID           string `json:"id"`
	PermalinkURL string `json:"permalink_url,omitempty"`
}

// Order is the merchant's record of a placed order.
type Order struct {
	ID           string          `json:"id"`
	CheckoutID   string          `json:"checkout_id,omitempty"`
	PermalinkURL string          `json:"permalink_url,omitempty"`
	LineItems    []OrderLineItem `json:"line_items,omitempty"`
	Totals       []Total         `json:"totals,omitempty"`
	Fulfillment  *Fulfillment    `json:"fulfillment,omitempty"`
}

// OrderLineItem is a line item of a placed order with its fulfillment status.
type OrderLineItem struct {
	ID       string        `json:"id"`
	Item     Item          `json:"item"`
	Quantity OrderQuantity `json:"quantity"`
	Status   string        `json:"status,omitempty"`
}

// OrderQuantity tracks how much of a line item has shipped.
type OrderQuantity struct {
	Total     int `json:"total"`
	Fulfilled int `json:"fulfilled,omitempty"`
}
