// Package model defines data structures for the UCP checkout protocol as seen
// from the agent (buyer) side.
package model

import (
	"encoding/json"
)

// ProtocolVersion is the UCP version this agent speaks.
const ProtocolVersion = "2026-01-11"

// === Root Types ===

// Checkout represents a UCP checkout session.
// The merchant owns this state; the agent only ever reads it from responses.
type Checkout struct {
	UCP       UCPMetadata    `json:"ucp"`
	ID        string         `json:"id"`
	Status    CheckoutStatus `json:"status"`
	Currency  string         `json:"currency"`
	LineItems []LineItem     `json:"line_items"`
	Totals    []Total        `json:"totals"`
	Links     []Link         `json:"links,omitempty"`
	Payment   *Payment       `json:"payment,omitempty"`
	Buyer     *Buyer         `json:"buyer,omitempty"`
	Messages  []Message      `json:"messages,omitempty"`

	// dev.ucp.shopping.fulfillment extension
	Fulfillment *Fulfillment `json:"fulfillment,omitempty"`

	ContinueURL string `json:"continue_url,omitempty"`

	// Populated after checkout completion
	Order *OrderConfirmation `json:"order,omitempty"`
}

// FindLineItem returns the line item for productID, or nil.
func (c *Checkout) FindLineItem(productID string) *LineItem {
	for i := range c.LineItems {
		if c.LineItems[i].Item.ID == productID {
			return &c.LineItems[i]
		}
	}
	return nil
}

// UCPMetadata contains protocol version and registries for capabilities and handlers.
// Registries are maps keyed by reverse-domain name (e.g., "dev.ucp.shopping.checkout").
type UCPMetadata struct {
	Version         string                      `json:"version"`
	Services        map[string][]Service        `json:"services,omitempty"`
	Capabilities    map[string][]Capability     `json:"capabilities,omitempty"`
	PaymentHandlers map[string][]PaymentHandler `json:"payment_handlers,omitempty"`
}

// Service represents a transport binding for a UCP capability.
type Service struct {
	Version   string `json:"version"`
	Transport string `json:"transport"` // "rest", "mcp", "a2a", "embedded"
	Endpoint  string `json:"endpoint,omitempty"`
	Spec      string `json:"spec,omitempty"`
	Schema    string `json:"schema,omitempty"`
}

// Capability declares a supported UCP capability.
type Capability struct {
	Version string        `json:"version"`
	Spec    string        `json:"spec,omitempty"`
	Schema  string        `json:"schema,omitempty"`
	Extends *ExtendsField `json:"extends,omitempty"`
}

// ExtendsField supports both string and []string for single/multi-parent extensions.
type ExtendsField struct {
	single   string
	multiple []string
}

// UnmarshalJSON handles both "string" and ["string", ...] formats.
func (e *ExtendsField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.single = s
		e.multiple = nil
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	e.single = ""
	e.multiple = arr
	return nil
}

// MarshalJSON outputs string for single parent, array for multiple.
func (e ExtendsField) MarshalJSON() ([]byte, error) {
	if e.single != "" {
		return json.Marshal(e.single)
	}
	if len(e.multiple) > 0 {
		return json.Marshal(e.multiple)
	}
	return []byte("null"), nil
}

// Parents returns all parent capability names.
func (e ExtendsField) Parents() []string {
	if e.single != "" {
		return []string{e.single}
	}
	return e.multiple
}

// IsExtension returns true if this capability extends one or more parents.
func (e ExtendsField) IsExtension() bool {
	return e.single != "" || len(e.multiple) > 0
}

// NewSingleExtends creates an ExtendsField with a single parent.
func NewSingleExtends(parent string) *ExtendsField {
	return &ExtendsField{single: parent}
}

// === Enums ===

// CheckoutStatus represents the state of a checkout session.
// Only the merchant advances it.
type CheckoutStatus string

const (
	StatusIncomplete         CheckoutStatus = "incomplete"
	StatusReadyForComplete   CheckoutStatus = "ready_for_complete"
	StatusCompleteInProgress CheckoutStatus = "complete_in_progress"
	StatusCompleted          CheckoutStatus = "completed"
	StatusCanceled           CheckoutStatus = "canceled"
	StatusRequiresEscalation CheckoutStatus = "requires_escalation"
)

// IsTerminal reports whether no further transitions are possible.
func (s CheckoutStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// TotalType categorizes different pricing components.
type TotalType string

const (
	TotalTypeItemsDiscount TotalType = "items_discount"
	TotalTypeSubtotal      TotalType = "subtotal"
	TotalTypeDiscount      TotalType = "discount"
	TotalTypeFulfillment   TotalType = "fulfillment"
	TotalTypeTax           TotalType = "tax"
	TotalTypeFee           TotalType = "fee"
	TotalTypeTotal         TotalType = "total"
)

// LinkType categorizes merchant policy links.
type LinkType string

const (
	LinkTypePrivacyPolicy  LinkType = "privacy_policy"
	LinkTypeTermsOfService LinkType = "terms_of_service"
	LinkTypeRefundPolicy   LinkType = "refund_policy"
)

// === Line Items ===

// LineItem is a product-quantity pair within a checkout, as returned by the merchant.
type LineItem struct {
	ID       string  `json:"id"`
	Item     Item    `json:"item"`
	Quantity int     `json:"quantity"`
	Totals   []Total `json:"totals,omitempty"`
	ParentID string  `json:"parent_id,omitempty"`
}

// Item represents product details within a line item.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Price    int64  `json:"price,omitempty"` // cents, unit price
	ImageURL string `json:"image_url,omitempty"`
}

// === Totals & Links ===

// Total represents a categorized price component in minor currency units.
type Total struct {
	Type        TotalType `json:"type"`
	Amount      int64     `json:"amount"`
	DisplayText string    `json:"display_text,omitempty"`
}

// Link represents a merchant policy URL.
type Link struct {
	Type  LinkType `json:"type"`
	URL   string   `json:"url"`
	Title string   `json:"title,omitempty"`
}

// === Payment ===

// Payment contains submitted payment instruments.
type Payment struct {
	Instruments []PaymentInstrument `json:"instruments"`
}

// PaymentHandler defines a payment collection strategy advertised by the merchant.
type PaymentHandler struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Spec    string `json:"spec,omitempty"`
	Schema  string `json:"schema,omitempty"`
	Config  any    `json:"config,omitempty"`
}

// PaymentInstrument references a payment credential held by an external handler.
// Only an opaque handler id and token ever pass through the agent.
type PaymentInstrument struct {
	ID          string           `json:"id"`
	HandlerID   string           `json:"handler_id"`
	HandlerName string           `json:"handler_name,omitempty"`
	Type        string           `json:"type"`
	Credential  *TokenCredential `json:"credential,omitempty"`
}

// TokenCredential contains payment token data.
type TokenCredential struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// === Address & Buyer ===

// PostalAddress represents a mailing address.
type PostalAddress struct {
	StreetAddress   string `json:"street_address,omitempty"`
	ExtendedAddress string `json:"extended_address,omitempty"`
	Locality        string `json:"address_locality,omitempty"`
	Region          string `json:"address_region,omitempty"`
	Country         string `json:"address_country,omitempty"` // ISO 3166-1 alpha-2
	PostalCode      string `json:"postal_code,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
}

// Buyer represents the purchasing customer.
type Buyer struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// === Messages ===

// Message represents merchant feedback about checkout state.
type Message struct {
	Type     string `json:"type"` // "error", "warning", "info"
	Code     string `json:"code,omitempty"`
	Content  string `json:"content"`
	Path     string `json:"path,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// === Discovery Profile ===

// DiscoveryProfile is returned by the merchant's /.well-known/ucp endpoint.
type DiscoveryProfile struct {
	UCP UCPMetadata `json:"ucp"`
}
