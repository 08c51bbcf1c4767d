package checkout

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ucp-agent/internal/catalog"
	"ucp-agent/internal/gateway"
	"ucp-agent/internal/model"
	"ucp-agent/internal/reconcile"
)

// Defaults applied when the caller leaves a value empty.
const (
	DefaultCurrency       = "USD"
	DefaultPaymentHandler = "mock_payment_handler"
	DefaultPaymentToken   = "success_token"
	DefaultCountry        = "US"
)

// Missing-information labels reported by StartPayment.
const (
	MissingBuyerEmail      = "buyer email address"
	MissingShippingAddress = "shipping address"
)

// Config holds engine settings.
type Config struct {
	Currency  string // currency of new checkouts, default USD
	AgentName string // sent as the device_id risk signal
	Logger    *slog.Logger
}

// Engine turns item-level shopping operations into full-replacement checkout
// updates against the merchant.
//
// An Engine owns one Session and is not safe for concurrent use: two callers
// mutating the same checkout can lose each other's updates.
type Engine struct {
	gateway  gateway.Gateway
	catalog  *catalog.Index
	session  *Session
	currency string
	deviceID string
	logger   *slog.Logger
}

// New creates an engine over session. A nil session starts empty.
func New(gw gateway.Gateway, cat *catalog.Index, session *Session, cfg Config) *Engine {
	if session == nil {
		session = &Session{}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gateway:  gw,
		catalog:  cat,
		session:  session,
		currency: currency,
		deviceID: cfg.AgentName,
		logger:   logger,
	}
}

// CheckoutID returns the current checkout, empty when none is open.
func (e *Engine) CheckoutID() string {
	return e.session.CheckoutID
}

// Session exposes the engine's session state.
func (e *Engine) Session() *Session {
	return e.session
}

// Catalog returns the product index the engine validates against.
func (e *Engine) Catalog() *catalog.Index {
	return e.catalog
}

// Reset forgets the current checkout without contacting the merchant.
func (e *Engine) Reset() {
	if e.session.Active() {
		e.logger.Info("checkout session reset", slog.String("checkout_id", e.session.CheckoutID))
	}
	e.session.Clear()
}

// AddItem adds quantity of a catalog product, opening a checkout if needed.
// An item already in the checkout has its quantity increased.
// If the current checkout can no longer be read, or the merchant has closed
// it, a new one is created with just this item.
func (e *Engine) AddItem(ctx context.Context, productID string, quantity int) (*model.Checkout, error) {
	if _, ok := e.catalog.Get(productID); !ok {
		return nil, model.NewNotFoundError("product " + productID)
	}
	if quantity < 1 {
		return nil, model.NewValidationError("quantity", "must be at least 1")
	}

	if !e.session.Active() {
		return e.create(ctx, productID, quantity)
	}

	existing, err := e.refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		e.logger.Warn("current checkout unavailable, starting a new one",
			slog.String("checkout_id", e.session.CheckoutID),
			slog.String("error", err.Error()),
		)
		return e.create(ctx, productID, quantity)
	}
	if !e.session.Active() {
		return e.create(ctx, productID, quantity)
	}

	if li := existing.FindLineItem(productID); li != nil {
		li.Quantity += quantity
	} else {
		existing.LineItems = append(existing.LineItems, model.LineItem{
			Item:     model.Item{ID: productID},
			Quantity: quantity,
		})
	}

	return e.update(ctx, e.updateRequest(existing, existing.LineItemRequests()))
}

// RemoveItem drops every line item for productID.
func (e *Engine) RemoveItem(ctx context.Context, productID string) (*model.Checkout, error) {
	existing, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.LineItemRequest, 0, len(existing.LineItems))
	for _, li := range existing.LineItems {
		if li.Item.ID != productID {
			items = append(items, li.Request())
		}
	}

	return e.update(ctx, e.updateRequest(existing, items))
}

// SetQuantity sets the quantity of productID. Zero removes it.
func (e *Engine) SetQuantity(ctx context.Context, productID string, quantity int) (*model.Checkout, error) {
	if quantity < 0 {
		return nil, model.NewValidationError("quantity", "must not be negative")
	}
	if quantity == 0 {
		return e.RemoveItem(ctx, productID)
	}

	existing, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	// Lines the merchant split for the same product collapse into the first.
	target := existing.FindLineItem(productID)
	items := make([]model.LineItemRequest, 0, len(existing.LineItems))
	for i := range existing.LineItems {
		li := &existing.LineItems[i]
		if li.Item.ID == productID {
			if li != target {
				continue
			}
			li.Quantity = quantity
		}
		items = append(items, li.Request())
	}

	return e.update(ctx, e.updateRequest(existing, items))
}

// GetCheckout returns the merchant's current state, or nil when no checkout is open.
func (e *Engine) GetCheckout(ctx context.Context) (*model.Checkout, error) {
	if !e.session.Active() {
		return nil, nil
	}
	return e.refresh(ctx)
}

// CustomerDetails is the buyer and shipping address input.
type CustomerDetails struct {
	FirstName       string
	LastName        string
	StreetAddress   string
	ExtendedAddress string
	Locality        string
	Region          string
	PostalCode      string
	Country         string // default US
	Email           string // optional; without it no buyer is sent
}

// UpdateCustomerDetails sets the shipping address and walks the merchant's
// fulfillment flow: submit the address, select the destination the merchant
// assigned, then select the first shipping option offered. Each step reads
// the identifiers it needs from the previous step's response. The flow stops
// early, returning the latest checkout, when the merchant offers nothing to select.
func (e *Engine) UpdateCustomerDetails(ctx context.Context, details CustomerDetails) (*model.Checkout, error) {
	existing, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	country := details.Country
	if country == "" {
		country = DefaultCountry
	}
	destination := model.Destination{
		ID: shortID("dest"),
		PostalAddress: model.PostalAddress{
			StreetAddress:   details.StreetAddress,
			ExtendedAddress: details.ExtendedAddress,
			Locality:        details.Locality,
			Region:          details.Region,
			PostalCode:      details.PostalCode,
			Country:         country,
			FirstName:       details.FirstName,
			LastName:        details.LastName,
		},
	}
	var buyer *model.Buyer
	if details.Email != "" {
		buyer = &model.Buyer{
			Email:     details.Email,
			FirstName: details.FirstName,
			LastName:  details.LastName,
		}
	}
	items := existing.LineItemRequests()

	step := func(prev *model.Checkout, method model.FulfillmentMethodRequest) (*model.Checkout, error) {
		req := e.updateRequest(prev, items)
		req.Buyer = buyer
		req.Fulfillment = &model.FulfillmentRequest{Methods: []model.FulfillmentMethodRequest{method}}
		return e.update(ctx, req)
	}

	// Address.
	co, err := step(existing, model.FulfillmentMethodRequest{
		Type:         "shipping",
		Destinations: []model.Destination{destination},
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("fulfillment address submitted",
		slog.String("checkout_id", co.ID),
		slog.String("status", string(co.Status)),
		slog.String("stage", co.FulfillmentState().Stage.String()),
	)

	// Destination. Option generation only happens after an explicit selection.
	state := co.FulfillmentState()
	if state.DestinationID == "" {
		e.logger.Debug("no destinations offered", slog.String("checkout_id", co.ID))
		return co, nil
	}
	selected := state.DestinationID
	co, err = step(co, model.FulfillmentMethodRequest{
		Type:                  "shipping",
		SelectedDestinationID: selected,
	})
	if err != nil {
		return nil, err
	}

	// Shipping option. Merchants may echo only the selection, not the destinations.
	state = co.FulfillmentState()
	if state.OptionID == "" {
		e.logger.Debug("no shipping options offered", slog.String("checkout_id", co.ID))
		return co, nil
	}
	if dest := state.Destination(); dest != "" {
		selected = dest
	}
	co, err = step(co, model.FulfillmentMethodRequest{
		Type:                  "shipping",
		SelectedDestinationID: selected,
		Groups:                []model.GroupSelectRequest{{SelectedOptionID: state.OptionID}},
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("shipping option selected",
		slog.String("checkout_id", co.ID),
		slog.String("option_id", state.OptionID),
		slog.String("status", string(co.Status)),
	)
	return co, nil
}

// PaymentReadiness reports whether the checkout has what payment needs.
type PaymentReadiness struct {
	Ready    bool
	Missing  []string
	Checkout *model.Checkout
}

// StartPayment checks the checkout for buyer email and shipping address.
// Missing information is reported in the result, not as an error.
func (e *Engine) StartPayment(ctx context.Context) (PaymentReadiness, error) {
	co, err := e.current(ctx)
	if err != nil {
		return PaymentReadiness{}, err
	}

	var missing []string
	if co.Buyer == nil || co.Buyer.Email == "" {
		missing = append(missing, MissingBuyerEmail)
	}
	if co.Fulfillment == nil {
		missing = append(missing, MissingShippingAddress)
	}

	return PaymentReadiness{
		Ready:    len(missing) == 0,
		Missing:  missing,
		Checkout: co,
	}, nil
}

// CompleteCheckout pays with an opaque handler token. The checkout must be
// ready_for_complete. The session is cleared only when the merchant accepts.
func (e *Engine) CompleteCheckout(ctx context.Context, handlerID, token string) (*model.Checkout, error) {
	co, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	if co.Status != model.StatusReadyForComplete {
		return nil, model.NewNotReadyError(co.Status)
	}

	if handlerID == "" {
		handlerID = DefaultPaymentHandler
	}
	if token == "" {
		token = DefaultPaymentToken
	}
	req := &model.CheckoutCompleteRequest{
		PaymentData: model.PaymentInstrument{
			ID:          shortID("inst"),
			HandlerID:   handlerID,
			HandlerName: handlerID,
			Type:        "card",
			Credential:  &model.TokenCredential{Type: "token", Token: token},
		},
		RiskSignals: map[string]any{"device_id": e.deviceID},
	}

	completed, err := e.gateway.CompleteCheckout(ctx, e.session.CheckoutID, req)
	if err != nil {
		return nil, err
	}

	e.logger.Info("checkout completed",
		slog.String("checkout_id", completed.ID),
		slog.String("status", string(completed.Status)),
	)
	e.session.Clear()
	return completed, nil
}

// CancelCheckout cancels the open checkout and clears the session.
func (e *Engine) CancelCheckout(ctx context.Context) (*model.Checkout, error) {
	if !e.session.Active() {
		return nil, model.NewNoActiveSessionError()
	}
	co, err := e.gateway.CancelCheckout(ctx, e.session.CheckoutID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("checkout canceled", slog.String("checkout_id", e.session.CheckoutID))
	e.session.Clear()
	return co, nil
}

// GetOrder fetches an order. Independent of the session.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, model.NewValidationError("order_id", "is required")
	}
	return e.gateway.GetOrder(ctx, orderID)
}

// current re-reads the open checkout from the merchant.
func (e *Engine) current(ctx context.Context) (*model.Checkout, error) {
	if !e.session.Active() {
		return nil, model.NewNoActiveSessionError()
	}
	co, err := e.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if !e.session.Active() {
		return nil, model.NewNoActiveSessionError()
	}
	return co, nil
}

// refresh reads the open checkout. A checkout the merchant completed or
// canceled on its own side ends the session.
func (e *Engine) refresh(ctx context.Context) (*model.Checkout, error) {
	co, err := e.gateway.GetCheckout(ctx, e.session.CheckoutID)
	if err != nil {
		return nil, err
	}
	if co.Status.IsTerminal() {
		e.logger.Info("checkout closed by merchant",
			slog.String("checkout_id", e.session.CheckoutID),
			slog.String("status", string(co.Status)),
		)
		e.session.Clear()
		return co, nil
	}
	e.session.Last = co
	return co, nil
}

func (e *Engine) create(ctx context.Context, productID string, quantity int) (*model.Checkout, error) {
	req := &model.CheckoutCreateRequest{
		Currency: e.currency,
		LineItems: []model.LineItemRequest{{
			Item:     model.ItemRef{ID: productID},
			Quantity: quantity,
		}},
		Payment: model.Payment{Instruments: []model.PaymentInstrument{}},
	}
	co, err := e.gateway.CreateCheckout(ctx, req)
	if err != nil {
		return nil, err
	}
	e.session.record(co)
	e.logger.Info("checkout created", slog.String("checkout_id", co.ID))
	e.noteChanges(req.LineItems, co)
	return co, nil
}

// updateRequest builds a full-replacement update from the merchant's last state.
func (e *Engine) updateRequest(prev *model.Checkout, items []model.LineItemRequest) *model.CheckoutUpdateRequest {
	currency := prev.Currency
	if currency == "" {
		currency = e.currency
	}
	return &model.CheckoutUpdateRequest{
		ID:        e.session.CheckoutID,
		Currency:  currency,
		LineItems: items,
		Payment:   model.Payment{Instruments: []model.PaymentInstrument{}},
	}
}

func (e *Engine) update(ctx context.Context, req *model.CheckoutUpdateRequest) (*model.Checkout, error) {
	co, err := e.gateway.UpdateCheckout(ctx, e.session.CheckoutID, req)
	if err != nil {
		return nil, err
	}
	if co.ID == "" {
		co.ID = e.session.CheckoutID
	}
	e.session.record(co)
	e.noteChanges(req.LineItems, co)
	return co, nil
}

// noteChanges records and logs any difference between the items sent and the
// items the merchant kept.
func (e *Engine) noteChanges(sent []model.LineItemRequest, co *model.Checkout) {
	e.session.Changes = reconcile.DiffLineItems(sent, co.LineItems)
	for _, c := range e.session.Changes {
		e.logger.Warn("merchant adjusted line items",
			slog.String("checkout_id", co.ID),
			slog.String("product_id", c.ProductID),
			slog.Int("requested", c.Requested),
			slog.Int("returned", c.Returned),
		)
	}
}

// shortID returns prefix_ followed by 8 random hex digits.
func shortID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
