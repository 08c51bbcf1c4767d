// Package app wires configuration into the gateway, catalog and action surface
// shared by the MCP server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ucp-agent/internal/catalog"
	"ucp-agent/internal/checkout"
	"ucp-agent/internal/config"
	"ucp-agent/internal/gateway"
	"ucp-agent/internal/metrics"
	"ucp-agent/internal/negotiation"
	"ucp-agent/internal/tools"
	"ucp-agent/internal/transport"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Gateway *gateway.Client
	Catalog *catalog.Index
}

// New builds the merchant gateway and loads the catalog.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	m := metrics.New()

	rt, err := transport.New(transport.Kind(cfg.HTTPTransport), cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	gw, err := gateway.New(gateway.Config{
		MerchantURL: cfg.Merchant.URL,
		AgentName:   cfg.AgentName,
		ProfileURL:  cfg.AgentProfileURL,
		APIKey:      cfg.Merchant.APIKey,
		Timeout:     cfg.RequestTimeout,
		Transport:   m.InstrumentRoundTripper(rt),
		Verbose:     cfg.Verbose,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gateway: %w", err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Gateway: gw,
		Catalog: cat,
	}, nil
}

// NewSurface returns an action surface over a fresh, empty checkout session.
func (a *App) NewSurface() *tools.Surface {
	engine := checkout.New(a.Gateway, a.Catalog, nil, checkout.Config{
		Currency:  a.Config.Currency,
		AgentName: a.Config.AgentName,
		Logger:    a.Logger,
	})
	return tools.New(engine, a.Metrics, a.Logger)
}

// CheckMerchant discovers the merchant and negotiates capabilities.
// Missing checkout or fulfillment support is logged, not returned as an error.
func (a *App) CheckMerchant(ctx context.Context) (*negotiation.Result, error) {
	profile, err := a.Gateway.Discover(ctx, gateway.DiscoverOptions{})
	if err != nil {
		return nil, err
	}

	result, err := negotiation.CommonCapabilities(negotiation.AgentMetadata(), profile.UCP)
	if err != nil {
		return nil, err
	}

	if missing := result.Missing(negotiation.CapabilityCheckout, negotiation.CapabilityFulfillment); len(missing) > 0 {
		a.Logger.Warn("merchant lacks required capabilities",
			slog.String("missing", strings.Join(missing, ",")),
		)
	}
	a.Logger.Info("merchant discovered",
		slog.String("version", result.Version),
		slog.Int("capabilities", len(result.Capabilities)),
		slog.String("payment_handlers", strings.Join(negotiation.HandlerIDs(result.PaymentHandlers), ",")),
	)
	return result, nil
}

// Close releases the gateway's connections.
func (a *App) Close() error {
	return a.Gateway.Close()
}

// NewLogger creates a structured logger configured for the environment.
// Production uses JSON format for Cloud Logging compatibility; development
// uses text. Debug level adds source locations.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.Verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
