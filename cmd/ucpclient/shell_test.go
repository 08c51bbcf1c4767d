package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ucp-agent/internal/catalog"
	"ucp-agent/internal/checkout"
	"ucp-agent/internal/gateway"
	"ucp-agent/internal/model"
	"ucp-agent/internal/negotiation"
	"ucp-agent/internal/tools"
)

func init() {
	disableColors()
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArgs map[string]any
		wantErr  bool
	}{
		{line: "get_checkout", wantName: tools.ActionGetCheckout},
		{line: "cart", wantName: tools.ActionGetCheckout},
		{
			line:     "search red roses",
			wantName: tools.ActionSearchCatalog,
			wantArgs: map[string]any{"query": "red roses"},
		},
		{
			line:     "add bouquet_roses 2",
			wantName: tools.ActionAddToCheckout,
			wantArgs: map[string]any{"product_id": "bouquet_roses", "quantity": float64(2)},
		},
		{
			line:     "update_checkout product_id=pot_ceramic quantity=0",
			wantName: tools.ActionUpdateCheckout,
			wantArgs: map[string]any{"product_id": "pot_ceramic", "quantity": float64(0)},
		},
		{
			line:     `details first_name=Ada "street_address=1 Main St" postal_code=02139`,
			wantName: tools.ActionUpdateCustomerDetails,
			wantArgs: map[string]any{"first_name": "Ada", "street_address": "1 Main St", "postal_code": "02139"},
		},
		{
			line:     `complete {"payment_handler_id":"mock_payment_handler"}`,
			wantName: tools.ActionCompleteCheckout,
			wantArgs: map[string]any{"payment_handler_id": "mock_payment_handler"},
		},
		{line: `complete {"payment_handler_id":`, wantErr: true},
		{line: `details "street_address=1 Main St`, wantErr: true},
		{line: "remove a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, raw, err := parseLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseLine(%q) succeeded, want error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLine(%q) error: %v", tt.line, err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if tt.wantArgs == nil {
				if raw != nil {
					t.Errorf("args = %s, want none", raw)
				}
				return
			}
			var got map[string]any
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("args not JSON: %v", err)
			}
			if !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("args = %v, want %v", got, tt.wantArgs)
			}
		})
	}
}

func TestQuoteArgs(t *testing.T) {
	if got := quoteArgs([]string{`{"query":"a b"}`}); got != `{"query":"a b"}` {
		t.Errorf("JSON argument changed: %q", got)
	}
	if got := quoteArgs([]string{"street_address=1 Main St", "x"}); got != `"street_address=1 Main St" x` {
		t.Errorf("quoteArgs() = %q", got)
	}
}

func shellSurface() *tools.Surface {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := &gateway.Mock{
		CreateCheckoutFunc: func(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error) {
			co := &model.Checkout{ID: "chk_shell", Status: model.StatusIncomplete, Currency: req.Currency}
			for _, li := range req.LineItems {
				co.LineItems = append(co.LineItems, model.LineItem{
					ID:       "li_1",
					Item:     model.Item{ID: li.Item.ID},
					Quantity: li.Quantity,
				})
			}
			return co, nil
		},
	}
	engine := checkout.New(gw, catalog.Default(), nil, checkout.Config{Logger: logger})
	return tools.New(engine, nil, logger)
}

func TestRunShell(t *testing.T) {
	script := strings.Join([]string{
		"search tulips",
		"add bouquet_tulips 2",
		"reset",
		"cart",
		"complete {oops",
		"exit",
		"cart",
	}, "\n")

	var out bytes.Buffer
	s := shellSurface()
	if err := runShell(context.Background(), strings.NewReader(script), printer{out: &out}, s); err != nil {
		t.Fatalf("runShell() error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Spring Tulips",
		"Added 2x Spring Tulips to cart.",
		"Session cleared.",
		"No active checkout session",
		"invalid JSON arguments",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if s.Engine().CheckoutID() != "" {
		t.Errorf("checkout = %q after reset", s.Engine().CheckoutID())
	}
	if strings.Count(got, "No active checkout session") != 1 {
		t.Errorf("lines after exit were executed:\n%s", got)
	}
}

func TestRunShell_EOF(t *testing.T) {
	var out bytes.Buffer
	if err := runShell(context.Background(), strings.NewReader("help"), printer{out: &out, quiet: true}, shellSurface()); err != nil {
		t.Fatalf("runShell() error: %v", err)
	}
	if !strings.Contains(out.String(), tools.ActionCompleteCheckout) {
		t.Errorf("help output missing actions:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Type 'help'") {
		t.Error("quiet shell printed the banner")
	}
}

func TestActionsCommand(t *testing.T) {
	var out bytes.Buffer
	c := &cli{}
	root := newRootCommand(c)
	root.SetOut(&out)
	root.SetArgs([]string{"actions"})

	if err := execute(context.Background(), c, root); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, name := range tools.Names() {
		if !strings.Contains(out.String(), name) {
			t.Errorf("actions output missing %s", name)
		}
	}
}

func TestExecute_FailureStillTearsDown(t *testing.T) {
	ps, err := startProfileServer(0, "")
	if err != nil {
		t.Fatalf("startProfileServer() error: %v", err)
	}
	c := &cli{profile: ps}
	root := newRootCommand(c)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"no-such-command"})

	if err := execute(context.Background(), c, root); err == nil {
		t.Fatal("execute() succeeded, want unknown command error")
	}
	if c.profile != nil {
		t.Error("profile server not released")
	}
	if resp, err := http.Get(ps.url); err == nil {
		resp.Body.Close()
		t.Error("profile server still serving after a failed command")
	}
}

func TestProfileServer(t *testing.T) {
	ps, err := startProfileServer(0, "")
	if err != nil {
		t.Fatalf("startProfileServer() error: %v", err)
	}
	defer ps.stop()

	resp, err := http.Get(ps.url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var profile model.DiscoveryProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if profile.UCP.Version != model.ProtocolVersion {
		t.Errorf("version = %q", profile.UCP.Version)
	}
	if _, ok := profile.UCP.Capabilities[negotiation.CapabilityCheckout]; !ok {
		t.Error("profile missing checkout capability")
	}
}

func TestProfileJSON_File(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	os.WriteFile(good, []byte(`{"ucp":{"version":"2026-01-11"}}`), 0o600)
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"ucp":`), 0o600)

	if _, err := profileJSON(good); err != nil {
		t.Errorf("good profile: %v", err)
	}
	if _, err := profileJSON(bad); err == nil {
		t.Error("bad profile accepted")
	}
	if _, err := profileJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing profile accepted")
	}
}

func TestPrintNegotiation(t *testing.T) {
	var out bytes.Buffer
	printNegotiation(printer{out: &out}, &negotiation.Result{
		Version: model.ProtocolVersion,
		Capabilities: map[string][]model.Capability{
			negotiation.CapabilityCheckout: {{Version: model.ProtocolVersion}},
		},
		PaymentHandlers: map[string][]model.PaymentHandler{
			"com.example": {{ID: "mock_payment_handler"}},
		},
	})

	got := out.String()
	for _, want := range []string{
		"Protocol version: " + model.ProtocolVersion,
		negotiation.CapabilityCheckout,
		"merchant does not support " + negotiation.CapabilityFulfillment,
		"mock_payment_handler",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
