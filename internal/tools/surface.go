// Package tools exposes the checkout engine as named agent actions.
// Every action returns text, on success and on failure alike.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ucp-agent/internal/checkout"
	"ucp-agent/internal/metrics"
	"ucp-agent/internal/model"
)

// Action names.
const (
	ActionSearchCatalog         = "search_shopping_catalog"
	ActionAddToCheckout         = "add_to_checkout"
	ActionRemoveFromCheckout    = "remove_from_checkout"
	ActionUpdateCheckout        = "update_checkout"
	ActionGetCheckout           = "get_checkout"
	ActionUpdateCustomerDetails = "update_customer_details"
	ActionStartPayment          = "start_payment"
	ActionCompleteCheckout      = "complete_checkout"
	ActionCancelCheckout        = "cancel_checkout"
	ActionGetOrder              = "get_order"
)

// === Action Inputs ===
// Fields without omitempty are required in the generated MCP schema.

// SearchCatalogInput is the input of search_shopping_catalog.
type SearchCatalogInput struct {
	Query string `json:"query" jsonschema:"search query for finding products"`
}

// AddToCheckoutInput is the input of add_to_checkout.
type AddToCheckoutInput struct {
	ProductID string `json:"product_id" jsonschema:"the product ID to add"`
	Quantity  int    `json:"quantity,omitempty" jsonschema:"quantity to add, default 1"`
}

// RemoveFromCheckoutInput is the input of remove_from_checkout.
type RemoveFromCheckoutInput struct {
	ProductID string `json:"product_id" jsonschema:"the product ID to remove"`
}

// UpdateCheckoutInput is the input of update_checkout.
type UpdateCheckoutInput struct {
	ProductID string `json:"product_id" jsonschema:"the product ID to update"`
	Quantity  int    `json:"quantity" jsonschema:"new quantity, 0 removes the item"`
}

// UpdateCustomerDetailsInput is the input of update_customer_details.
type UpdateCustomerDetailsInput struct {
	FirstName       string `json:"first_name" jsonschema:"first name of the recipient"`
	LastName        string `json:"last_name" jsonschema:"last name of the recipient"`
	StreetAddress   string `json:"street_address" jsonschema:"street address"`
	Locality        string `json:"address_locality" jsonschema:"city or locality"`
	Region          string `json:"address_region" jsonschema:"state or region code"`
	PostalCode      string `json:"postal_code" jsonschema:"postal or ZIP code"`
	Country         string `json:"address_country,omitempty" jsonschema:"ISO country code, default US"`
	ExtendedAddress string `json:"extended_address,omitempty" jsonschema:"suite or apartment number"`
	Email           string `json:"email,omitempty" jsonschema:"buyer email address"`
}

// CompleteCheckoutInput is the input of complete_checkout.
type CompleteCheckoutInput struct {
	PaymentHandlerID string `json:"payment_handler_id,omitempty" jsonschema:"payment handler ID, default mock_payment_handler"`
	PaymentToken     string `json:"payment_token,omitempty" jsonschema:"payment token, default success_token"`
}

// GetOrderInput is the input of get_order.
type GetOrderInput struct {
	OrderID string `json:"order_id" jsonschema:"the order ID to look up"`
}

// NoInput is the input of actions that take no arguments.
type NoInput struct{}

// Surface runs actions against one checkout engine.
// Like the engine it wraps, a Surface serves a single conversation.
type Surface struct {
	engine  *checkout.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Surface. m may be nil.
func New(engine *checkout.Engine, m *metrics.Metrics, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{engine: engine, metrics: m, logger: logger}
}

// Engine returns the engine the surface drives.
func (s *Surface) Engine() *checkout.Engine {
	return s.engine
}

// changes renders the merchant's adjustments to the last item update.
func (s *Surface) changes() string {
	return RenderChanges(s.engine.Session().Changes)
}

// === Actions ===

// SearchCatalog searches the product catalog.
func (s *Surface) SearchCatalog(ctx context.Context, in SearchCatalogInput) string {
	return s.run(ActionSearchCatalog, func() (string, error) {
		return RenderSearch(s.engine.Catalog().Search(in.Query)), nil
	})
}

// AddToCheckout adds a product, opening a checkout when needed.
func (s *Surface) AddToCheckout(ctx context.Context, in AddToCheckoutInput) string {
	return s.run(ActionAddToCheckout, func() (string, error) {
		quantity := in.Quantity
		if quantity == 0 {
			quantity = 1
		}
		co, err := s.engine.AddItem(ctx, in.ProductID, quantity)
		if err != nil {
			return "", err
		}
		title := in.ProductID
		if p, ok := s.engine.Catalog().Get(in.ProductID); ok {
			title = p.Title
		}
		return fmt.Sprintf("Added %dx %s to cart.\n\n%s%s", quantity, title, RenderCheckout(co), s.changes()), nil
	})
}

// RemoveFromCheckout removes a product from the checkout.
func (s *Surface) RemoveFromCheckout(ctx context.Context, in RemoveFromCheckoutInput) string {
	return s.run(ActionRemoveFromCheckout, func() (string, error) {
		co, err := s.engine.RemoveItem(ctx, in.ProductID)
		if err != nil {
			return "", err
		}
		return "Removed item from cart.\n\n" + RenderCheckout(co) + s.changes(), nil
	})
}

// UpdateCheckout sets the quantity of a product.
func (s *Surface) UpdateCheckout(ctx context.Context, in UpdateCheckoutInput) string {
	return s.run(ActionUpdateCheckout, func() (string, error) {
		co, err := s.engine.SetQuantity(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return "", err
		}
		action := "updated in"
		if in.Quantity == 0 {
			action = "removed from"
		}
		return fmt.Sprintf("Item %s cart.\n\n%s%s", action, RenderCheckout(co), s.changes()), nil
	})
}

// GetCheckout shows the current checkout.
func (s *Surface) GetCheckout(ctx context.Context, _ NoInput) string {
	return s.run(ActionGetCheckout, func() (string, error) {
		co, err := s.engine.GetCheckout(ctx)
		if err != nil {
			return "", err
		}
		if co == nil {
			return "No active checkout session. Add items first.", nil
		}
		return RenderCheckout(co), nil
	})
}

// UpdateCustomerDetails sets buyer and shipping details.
func (s *Surface) UpdateCustomerDetails(ctx context.Context, in UpdateCustomerDetailsInput) string {
	return s.run(ActionUpdateCustomerDetails, func() (string, error) {
		co, err := s.engine.UpdateCustomerDetails(ctx, checkout.CustomerDetails{
			FirstName:       in.FirstName,
			LastName:        in.LastName,
			StreetAddress:   in.StreetAddress,
			ExtendedAddress: in.ExtendedAddress,
			Locality:        in.Locality,
			Region:          in.Region,
			PostalCode:      in.PostalCode,
			Country:         in.Country,
			Email:           in.Email,
		})
		if err != nil {
			return "", err
		}
		return "Updated customer details.\n\n" + RenderCheckout(co), nil
	})
}

// StartPayment reports whether the checkout can be paid.
func (s *Surface) StartPayment(ctx context.Context, _ NoInput) string {
	return s.run(ActionStartPayment, func() (string, error) {
		readiness, err := s.engine.StartPayment(ctx)
		if err != nil {
			return "", err
		}
		return RenderReadiness(readiness), nil
	})
}

// CompleteCheckout pays for and places the order.
func (s *Surface) CompleteCheckout(ctx context.Context, in CompleteCheckoutInput) string {
	return s.run(ActionCompleteCheckout, func() (string, error) {
		co, err := s.engine.CompleteCheckout(ctx, in.PaymentHandlerID, in.PaymentToken)
		if err != nil {
			return "", err
		}
		return "Order placed successfully!\n\n" + RenderCheckout(co), nil
	})
}

// CancelCheckout cancels the current checkout.
func (s *Surface) CancelCheckout(ctx context.Context, _ NoInput) string {
	return s.run(ActionCancelCheckout, func() (string, error) {
		co, err := s.engine.CancelCheckout(ctx)
		if err != nil {
			return "", err
		}
		return "Checkout cancelled.\n\n" + RenderCheckout(co), nil
	})
}

// GetOrder shows a placed order.
func (s *Surface) GetOrder(ctx context.Context, in GetOrderInput) string {
	return s.run(ActionGetOrder, func() (string, error) {
		order, err := s.engine.GetOrder(ctx, in.OrderID)
		if err != nil {
			return "", err
		}
		return RenderOrder(order), nil
	})
}

// run executes one action, turning errors and panics into text.
func (s *Surface) run(name string, fn func() (string, error)) (text string) {
	s.logger.Debug("action started", slog.String("action", name))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in action",
				slog.String("action", name),
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
			)
			s.metrics.ObserveTool(name, fmt.Errorf("panic: %v", r))
			text = fmt.Sprintf("Something went wrong while running %s. Please try again.", name)
		}
	}()

	text, err := fn()
	s.metrics.ObserveTool(name, err)
	if err != nil {
		s.logger.Warn("action failed",
			slog.String("action", name),
			slog.String("kind", model.KindOf(err).String()),
			slog.String("error", err.Error()),
		)
		return RenderError(err)
	}
	return text
}

// === Dispatch ===

// action binds a name to a typed Surface method.
type action struct {
	name        string
	description string
	invoke      func(s *Surface, ctx context.Context, args json.RawMessage) string
	register    func(s *Surface, server *mcp.Server)
}

func newAction[In any](name, description string, fn func(*Surface, context.Context, In) string) action {
	return action{
		name:        name,
		description: description,
		invoke: func(s *Surface, ctx context.Context, args json.RawMessage) string {
			var in In
			if len(args) > 0 && string(args) != "null" {
				if err := json.Unmarshal(args, &in); err != nil {
					s.metrics.ObserveTool(name, model.NewValidationError("arguments", err.Error()))
					return fmt.Sprintf("Invalid arguments for %s: %v", name, err)
				}
			}
			return fn(s, ctx, in)
		},
		register: func(s *Surface, server *mcp.Server) {
			addTool(server, name, description, func(ctx context.Context, in In) string {
				return fn(s, ctx, in)
			})
		},
	}
}

var actions = []action{
	newAction(ActionSearchCatalog,
		"Searches the product catalog for products that match the given query. "+
			"Use this tool to find products before adding them to the cart. "+
			"Returns matching products with their IDs, titles and prices.",
		(*Surface).SearchCatalog),
	newAction(ActionAddToCheckout,
		"Adds a product to the checkout session. Creates a new checkout if one doesn't exist. "+
			"Use search_shopping_catalog first to find product IDs.",
		(*Surface).AddToCheckout),
	newAction(ActionRemoveFromCheckout,
		"Removes a product from the checkout session.",
		(*Surface).RemoveFromCheckout),
	newAction(ActionUpdateCheckout,
		"Updates the quantity of a product in the checkout session. Set quantity to 0 to remove the item.",
		(*Surface).UpdateCheckout),
	newAction(ActionGetCheckout,
		"Retrieves the current checkout session with all items and totals.",
		(*Surface).GetCheckout),
	newAction(ActionUpdateCustomerDetails,
		"Adds delivery address and buyer details to the checkout. "+
			"Provide the recipient's name, full address, and optionally email. "+
			"Selects the first shipping option the merchant offers.",
		(*Surface).UpdateCustomerDetails),
	newAction(ActionStartPayment,
		"Checks whether the checkout has the details needed for payment. "+
			"Call this after adding items and customer details.",
		(*Surface).StartPayment),
	newAction(ActionCompleteCheckout,
		"Processes the payment and completes the checkout. "+
			"Requires buyer info and shipping address to be set first. "+
			"Use 'mock_payment_handler' with 'success_token' for testing.",
		(*Surface).CompleteCheckout),
	newAction(ActionCancelCheckout,
		"Cancels the current checkout session and clears the cart.",
		(*Surface).CancelCheckout),
	newAction(ActionGetOrder,
		"Gets details of a placed order by ID.",
		(*Surface).GetOrder),
}

// Names lists every action in registration order.
func Names() []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.name
	}
	return names
}

// Describe returns the description of an action, or "" if unknown.
func Describe(name string) string {
	for _, a := range actions {
		if a.name == name {
			return a.description
		}
	}
	return ""
}

// Invoke runs the named action with JSON arguments. Empty args mean no arguments.
func (s *Surface) Invoke(ctx context.Context, name string, args json.RawMessage) string {
	for _, a := range actions {
		if a.name == name {
			return a.invoke(s, ctx, args)
		}
	}
	return fmt.Sprintf("Unknown action %q. Available actions: %s", name, strings.Join(Names(), ", "))
}
