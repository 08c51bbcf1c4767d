// UCP Agent - exposes a merchant's UCP checkout as MCP tools.
// Runs over stdio for local assistants or over streamable HTTP on Cloud Run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ucp-agent/internal/app"
	"ucp-agent/internal/config"
	"ucp-agent/internal/middleware"
	"ucp-agent/internal/model"
	"ucp-agent/internal/negotiation"
	"ucp-agent/internal/tools"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout belongs to the MCP stream in stdio mode
	var logOut io.Writer = os.Stdout
	if cfg.TransportMode == config.ModeStdio {
		logOut = os.Stderr
	}
	logger := app.NewLogger(cfg, logOut)

	logger.Info("configuration loaded",
		slog.String("version", version),
		slog.String("transport_mode", cfg.TransportMode),
		slog.String("environment", cfg.Environment),
		slog.String("merchant_url", cfg.Merchant.URL),
		slog.String("http_transport", cfg.HTTPTransport),
	)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.CheckMerchant(ctx); err != nil {
		if model.KindOf(err) == model.KindVersion {
			return fmt.Errorf("checking merchant: %w", err)
		}
		logger.Warn("merchant discovery failed, continuing", slog.String("error", err.Error()))
	}

	if cfg.TransportMode == config.ModeHTTP {
		return serveHTTP(ctx, a)
	}

	logger.Info("serving MCP over stdio")
	if err := tools.NewMCPServer(a.NewSurface(), version).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newHandler routes the MCP endpoint, metrics, health and the agent's own UCP
// profile. Each MCP session gets its own checkout engine.
func newHandler(a *app.App) http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		a.Logger.Debug("new mcp session", slog.String("request_id", middleware.RequestIDFrom(r.Context())))
		return tools.NewMCPServer(a.NewSurface(), version)
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("GET /metrics", a.Metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	// Lets AGENT_PROFILE_URL point at this server.
	mux.HandleFunc("GET /.well-known/ucp", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		writeJSON(w, model.DiscoveryProfile{UCP: negotiation.AgentMetadata()})
	})

	// Recovery outermost so panics in logging are caught
	return middleware.Chain(
		middleware.Recovery(a.Logger),
		middleware.RequestID(),
		middleware.Logging(a.Logger),
	)(mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func serveHTTP(ctx context.Context, a *app.App) error {
	logger := a.Logger

	// No WriteTimeout: MCP responses may stream for the life of a session.
	server := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           newHandler(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("port", a.Config.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
