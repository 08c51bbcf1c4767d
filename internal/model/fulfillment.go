package model

// Fulfillment is the dev.ucp.shopping.fulfillment extension of a checkout.
// The merchant fills it in incrementally: destinations first, then option
// groups once a destination has been selected. Any level may be absent.
type Fulfillment struct {
	Methods []FulfillmentMethod `json:"methods,omitempty"`
}

// FulfillmentMethod is one way of getting line items to the buyer.
type FulfillmentMethod struct {
	ID                    string             `json:"id,omitempty"`
	Type                  string             `json:"type"` // "shipping", "pickup"
	LineItemIDs           []string           `json:"line_item_ids,omitempty"`
	Destinations          []Destination      `json:"destinations,omitempty"`
	SelectedDestinationID string             `json:"selected_destination_id,omitempty"`
	Groups                []FulfillmentGroup `json:"groups,omitempty"`
}

// Destination is a shipping address candidate offered or accepted by the merchant.
type Destination struct {
	ID string `json:"id"`
	PostalAddress
}

// FulfillmentGroup holds shipping options for a subset of line items.
type FulfillmentGroup struct {
	ID               string              `json:"id,omitempty"`
	LineItemIDs      []string            `json:"line_item_ids,omitempty"`
	Options          []FulfillmentOption `json:"options,omitempty"`
	SelectedOptionID string              `json:"selected_option_id,omitempty"`
}

// FulfillmentOption is a selectable shipping option.
type FulfillmentOption struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Carrier     string  `json:"carrier,omitempty"`
	Totals      []Total `json:"totals,omitempty"`
}

// FulfillmentStage says how far the merchant has progressed the fulfillment
// negotiation for a checkout.
type FulfillmentStage int

const (
	// StageNone: the checkout carries no fulfillment at all.
	StageNone FulfillmentStage = iota
	// StageNoDestinations: a method exists but the merchant offered no destinations.
	StageNoDestinations
	// StageDestinationsOffered: destinations exist, no option groups yet.
	StageDestinationsOffered
	// StageOptionsOffered: option groups with at least one option exist.
	StageOptionsOffered
	// StageOptionSelected: the first group has a selected option.
	StageOptionSelected
)

func (s FulfillmentStage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageNoDestinations:
		return "no_destinations"
	case StageDestinationsOffered:
		return "destinations_offered"
	case StageOptionsOffered:
		return "options_offered"
	case StageOptionSelected:
		return "option_selected"
	default:
		return "unknown"
	}
}

// FulfillmentState is the negotiation position read from a checkout.
// DestinationID is the first offered destination and SelectedDestinationID the
// one the merchant reports as selected; either may be empty. OptionID is the
// first option of the first group, read whether or not destinations are echoed.
type FulfillmentState struct {
	Stage                 FulfillmentStage
	DestinationID         string
	SelectedDestinationID string
	OptionID              string
}

// Destination returns the selected destination, else the first offered one.
func (s FulfillmentState) Destination() string {
	if s.SelectedDestinationID != "" {
		return s.SelectedDestinationID
	}
	return s.DestinationID
}

// FulfillmentState inspects the first fulfillment method of the checkout.
func (c *Checkout) FulfillmentState() FulfillmentState {
	if c == nil || c.Fulfillment == nil || len(c.Fulfillment.Methods) == 0 {
		return FulfillmentState{Stage: StageNone}
	}

	method := c.Fulfillment.Methods[0]
	state := FulfillmentState{
		Stage:                 StageNoDestinations,
		SelectedDestinationID: method.SelectedDestinationID,
	}
	if len(method.Destinations) > 0 {
		state.DestinationID = method.Destinations[0].ID
	}
	if state.Destination() != "" || len(method.Groups) > 0 {
		state.Stage = StageDestinationsOffered
	}

	if len(method.Groups) == 0 || len(method.Groups[0].Options) == 0 {
		return state
	}
	state.Stage = StageOptionsOffered
	state.OptionID = method.Groups[0].Options[0].ID

	if method.Groups[0].SelectedOptionID != "" {
		state.Stage = StageOptionSelected
	}
	return state
}
