package tools

import (
	"errors"
	"fmt"
	"strings"

	"ucp-agent/internal/catalog"
	"ucp-agent/internal/checkout"
	"ucp-agent/internal/model"
	"ucp-agent/internal/reconcile"
)

// RenderError turns any error into guidance the agent can act on.
// Raw merchant bodies and causes are never included.
func RenderError(err error) string {
	if err == nil {
		return ""
	}
	var e *model.Error
	if !errors.As(err, &e) {
		e = model.NewTransportError(0, "", err)
	}

	switch e.Kind {
	case model.KindTransport:
		if e.StatusCode != 0 {
			return fmt.Sprintf("The merchant could not process the request (status %d). Please try again.", e.StatusCode)
		}
		return "The merchant could not be reached. Please try again."
	case model.KindNotFound:
		if strings.HasPrefix(e.Message, "product ") {
			return fmt.Sprintf("%s. Use %s to find available products.", capitalize(e.Message), ActionSearchCatalog)
		}
		return capitalize(e.Message) + ". Check the ID and try again."
	case model.KindNoActiveSession:
		return fmt.Sprintf("No active checkout session. Use %s to start one.", ActionAddToCheckout)
	case model.KindNotReady:
		return fmt.Sprintf("Checkout is not ready for payment (status: %s). "+
			"Add the buyer email and shipping address with %s, then check with %s.",
			e.CheckoutStatus, ActionUpdateCustomerDetails, ActionStartPayment)
	case model.KindValidation:
		var b strings.Builder
		b.WriteString("Some details were rejected:")
		if len(e.FieldErrors) == 0 {
			b.WriteString("\n  - " + e.Message)
		}
		for _, fe := range e.FieldErrors {
			fmt.Fprintf(&b, "\n  - %s: %s", fe.Field, fe.Message)
		}
		b.WriteString("\nCorrect these values and try again.")
		return b.String()
	case model.KindVersion:
		return fmt.Sprintf("The merchant does not support protocol version %s (merchant implements %s). "+
			"Checkout is unavailable with this merchant.", e.ClientVersion, e.MerchantVersion)
	case model.KindBadRequest:
		return fmt.Sprintf("The merchant rejected the request: %s", e.Message)
	default:
		return "Something went wrong. Please try again."
	}
}

// RenderCheckout summarizes a checkout.
func RenderCheckout(co *model.Checkout) string {
	if co == nil {
		return "No active checkout session."
	}
	lines := []string{
		"**Checkout ID:** " + co.ID,
		"**Status:** " + string(co.Status),
		"**Currency:** " + co.Currency,
	}

	if len(co.LineItems) > 0 {
		lines = append(lines, "", "**Items in Cart:**")
		for _, li := range co.LineItems {
			title := li.Item.Title
			if title == "" {
				title = li.Item.ID
			}
			lines = append(lines, fmt.Sprintf("  - %s x%d @ %s each", title, li.Quantity, model.FormatPrice(li.Item.Price)))
		}
	}

	if option := selectedOption(co); option != nil {
		label := option.Title
		if label == "" {
			label = option.ID
		}
		lines = append(lines, "", "**Shipping:** "+label)
	}

	if len(co.Totals) > 0 {
		lines = append(lines, "", "**Totals:**")
		lines = append(lines, renderTotals(co.Totals)...)
	}

	if len(co.Messages) > 0 {
		lines = append(lines, "", "**Messages:**")
		for _, m := range co.Messages {
			lines = append(lines, fmt.Sprintf("  - [%s] %s", m.Type, m.Content))
		}
	}

	if co.Order != nil {
		lines = append(lines, "", "**Order Confirmed!**", "  - Order ID: "+co.Order.ID)
		if co.Order.PermalinkURL != "" {
			lines = append(lines, "  - Order URL: "+co.Order.PermalinkURL)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderOrder summarizes a placed order.
func RenderOrder(order *model.Order) string {
	lines := []string{
		"**Order ID:** " + orNA(order.ID),
		"**Checkout ID:** " + orNA(order.CheckoutID),
	}
	if order.PermalinkURL != "" {
		lines = append(lines, "**Order URL:** "+order.PermalinkURL)
	}

	if len(order.LineItems) > 0 {
		lines = append(lines, "", "**Items:**")
		for _, li := range order.LineItems {
			title := li.Item.Title
			if title == "" {
				title = "Unknown"
			}
			status := li.Status
			if status == "" {
				status = "unknown"
			}
			lines = append(lines, fmt.Sprintf("  - %s x%d - Status: %s", title, li.Quantity.Total, status))
		}
	}

	if len(order.Totals) > 0 {
		lines = append(lines, "", "**Totals:**")
		lines = append(lines, renderTotals(order.Totals)...)
	}

	return strings.Join(lines, "\n")
}

// RenderSearch lists search results with prices.
func RenderSearch(result catalog.SearchResult) string {
	if len(result.Products) == 0 {
		return fmt.Sprintf("No products found for '%s'.", result.Query)
	}
	lines := []string{fmt.Sprintf("Found %d product(s) for '%s':", result.Total, result.Query), ""}
	for _, p := range result.Products {
		line := fmt.Sprintf("  - **%s** (Product ID: `%s`)", p.Title, p.ID)
		if p.Price > 0 {
			line += " - " + model.FormatPrice(p.Price)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderChanges lists merchant adjustments, prefixed by a blank line. Empty
// when there are none.
func RenderChanges(changes []reconcile.Change) string {
	if len(changes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nThe merchant adjusted your cart:")
	for _, c := range changes {
		b.WriteString("\n  - " + c.String())
	}
	return b.String()
}

// RenderReadiness reports what is still missing before payment.
func RenderReadiness(r checkout.PaymentReadiness) string {
	if !r.Ready {
		return fmt.Sprintf("Checkout is not ready. Missing: %s. Provide them with %s.",
			strings.Join(r.Missing, ", "), ActionUpdateCustomerDetails)
	}
	return fmt.Sprintf("Checkout is ready for payment!\n\n%s\n\nUse %s to finalize the order.",
		RenderCheckout(r.Checkout), ActionCompleteCheckout)
}

func renderTotals(totals []model.Total) []string {
	lines := make([]string, 0, len(totals))
	for _, t := range totals {
		label := t.DisplayText
		if label == "" {
			label = titleCase(string(t.Type))
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", label, model.FormatPrice(t.Amount)))
	}
	return lines
}

// selectedOption returns the chosen shipping option of the first group, if any.
func selectedOption(co *model.Checkout) *model.FulfillmentOption {
	if co.FulfillmentState().Stage != model.StageOptionSelected {
		return nil
	}
	group := co.Fulfillment.Methods[0].Groups[0]
	for i := range group.Options {
		if group.Options[i].ID == group.SelectedOptionID {
			return &group.Options[i]
		}
	}
	return nil
}

// titleCase turns "items_discount" into "Items Discount".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
