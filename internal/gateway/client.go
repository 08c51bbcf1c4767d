package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ucp-agent/internal/model"
	"ucp-agent/internal/negotiation"
)

// DefaultTimeout bounds each merchant request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a merchant response is read.
const maxResponseBytes = 4 << 20

// Config holds gateway client settings.
type Config struct {
	MerchantURL string
	AgentName   string
	ProfileURL  string // advertised in UCP-Agent when set
	APIKey      string // sent as a bearer token when set
	Timeout     time.Duration
	Transport   http.RoundTripper // nil uses http.DefaultTransport
	Verbose     bool              // debug-log every request and response body
	Logger      *slog.Logger
}

// Client is the HTTP Gateway. The underlying http.Client is created on first
// use and released by Close; a later call creates a new one.
type Client struct {
	merchantURL string
	agentHeader string
	apiKey      string
	timeout     time.Duration
	transport   http.RoundTripper
	verbose     bool
	logger      *slog.Logger

	mu         sync.Mutex
	httpClient *http.Client
	profile    *model.DiscoveryProfile
}

var _ Gateway = (*Client)(nil)

// New validates cfg and returns a client. No connection is made.
func New(cfg Config) (*Client, error) {
	if cfg.MerchantURL == "" {
		return nil, fmt.Errorf("merchant URL is required")
	}
	u, err := url.Parse(cfg.MerchantURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid merchant URL %q", cfg.MerchantURL)
	}

	header, err := negotiation.FormatUCPAgentHeader(negotiation.UCPAgent{
		Name:       cfg.AgentName,
		Version:    model.ProtocolVersion,
		ProfileURL: cfg.ProfileURL,
	})
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		merchantURL: strings.TrimSuffix(cfg.MerchantURL, "/"),
		agentHeader: header,
		apiKey:      cfg.APIKey,
		timeout:     timeout,
		transport:   cfg.Transport,
		verbose:     cfg.Verbose,
		logger:      logger,
	}, nil
}

func (c *Client) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout, Transport: c.transport}
	}
	return c.httpClient
}

// Close releases idle connections. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	hc := c.httpClient
	c.httpClient = nil
	c.mu.Unlock()

	if hc != nil {
		hc.CloseIdleConnections()
	}
	return nil
}

// ClearProfileCache drops the cached discovery profile.
func (c *Client) ClearProfileCache() {
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()
}

// Discover returns the merchant profile, from cache unless opts.NoCache.
// A merchant older than this agent's protocol version is rejected with a
// KindVersion error and not cached. Unparsable versions are logged and accepted.
func (c *Client) Discover(ctx context.Context, opts DiscoverOptions) (*model.DiscoveryProfile, error) {
	if !opts.NoCache {
		c.mu.Lock()
		cached := c.profile
		c.mu.Unlock()
		if cached != nil {
			c.debug("using cached profile")
			return cached, nil
		}
	}

	var profile model.DiscoveryProfile
	if err := c.do(ctx, http.MethodGet, "/.well-known/ucp", nil, &profile, "profile"); err != nil {
		return nil, err
	}

	if !opts.SkipVersionCheck {
		err := negotiation.ValidateVersion(model.ProtocolVersion, profile.UCP.Version)
		switch {
		case errors.Is(err, negotiation.ErrUnparsableVersion):
			c.logger.Warn("could not parse UCP version", slog.String("error", err.Error()))
		case err != nil:
			return nil, err
		}
	}

	c.mu.Lock()
	c.profile = &profile
	c.mu.Unlock()
	return &profile, nil
}

func (c *Client) CreateCheckout(ctx context.Context, req *model.CheckoutCreateRequest) (*model.Checkout, error) {
	var co model.Checkout
	if err := c.do(ctx, http.MethodPost, "/checkout-sessions", req, &co, "checkout"); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*model.Checkout, error) {
	var co model.Checkout
	if err := c.do(ctx, http.MethodGet, checkoutPath(checkoutID, ""), nil, &co, "checkout"); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) UpdateCheckout(ctx context.Context, checkoutID string, req *model.CheckoutUpdateRequest) (*model.Checkout, error) {
	var co model.Checkout
	if err := c.do(ctx, http.MethodPut, checkoutPath(checkoutID, ""), req, &co, "checkout"); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) CompleteCheckout(ctx context.Context, checkoutID string, req *model.CheckoutCompleteRequest) (*model.Checkout, error) {
	var co model.Checkout
	if err := c.do(ctx, http.MethodPost, checkoutPath(checkoutID, "complete"), req, &co, "checkout"); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) CancelCheckout(ctx context.Context, checkoutID string) (*model.Checkout, error) {
	var co model.Checkout
	if err := c.do(ctx, http.MethodPost, checkoutPath(checkoutID, "cancel"), nil, &co, "checkout"); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order, "order"); err != nil {
		return nil, err
	}
	return &order, nil
}

func checkoutPath(id, action string) string {
	p := "/checkout-sessions/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// do sends one request and decodes a 2xx JSON response into out.
// resource names the entity in not-found errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any, resource string) error {
	target := c.merchantURL + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", resource, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(ctx, req)

	c.debug("merchant request",
		slog.String("method", method),
		slog.String("url", target),
		slog.String("request_id", req.Header.Get("Request-Id")),
		slog.String("payload", string(payload)),
	)

	resp, err := c.client().Do(req)
	if err != nil {
		return model.NewTransportError(0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.NewTransportError(resp.StatusCode, "", fmt.Errorf("reading response: %w", err))
	}

	c.debug("merchant response",
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseErrorResponse(resp.StatusCode, respBody, resource)
		c.debug("merchant error", slog.String("error", apiErr.Error()))
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewTransportError(resp.StatusCode, string(respBody),
			fmt.Errorf("decoding %s response: %w", resource, err))
	}
	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("UCP-Agent", c.agentHeader)
	req.Header.Set("Request-Id", uuid.NewString())

	key, ok := idempotencyKeyFrom(ctx)
	if !ok {
		key = uuid.NewString()
	}
	req.Header.Set("Idempotency-Key", key)

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) debug(msg string, attrs ...any) {
	if c.verbose {
		c.logger.Debug(msg, attrs...)
	}
}
