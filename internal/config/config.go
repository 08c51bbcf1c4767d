// Package config handles loading and validation of agent configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Transport modes for the MCP server.
const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"
)

// HTTP client transports for merchant requests.
const (
	HTTPTransportStandard = "standard"
	HTTPTransportChrome   = "chrome"
)

// Defaults applied when a setting is absent.
const (
	DefaultPort           = "8080"
	DefaultAgentName      = "ucp-agent"
	DefaultCurrency       = "USD"
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds all agent configuration.
// Environment determines whether merchant credentials load from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	TransportMode string // "stdio" or "http"
	Port          string
	Environment   string // "development" or "production"
	LogLevel      string // "debug", "info", "warn", "error"
	Verbose       bool   // log every merchant request and response

	// Agent identity sent to the merchant
	AgentName       string
	AgentProfileURL string

	// Checkout settings
	Currency    string
	CatalogFile string // empty uses the built-in catalog

	// Merchant HTTP client
	RequestTimeout time.Duration
	HTTPTransport  string // "standard" or "chrome"

	// GCP settings (required in production)
	GCPProject     string
	MerchantSecret string

	// Merchant endpoint and credentials (loaded from secrets in production)
	Merchant MerchantConfig
}

// MerchantConfig contains the merchant endpoint and credentials.
// In production, this is loaded from Secret Manager as JSON.
type MerchantConfig struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key,omitempty"`
}

// accessSecret fetches a secret payload. Replaced in tests.
var accessSecret = accessSecretVersion

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set), then env vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	timeout, err := envDuration("REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	verbose, err := envBool("VERBOSE")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TransportMode:   envOrDefault("TRANSPORT_MODE", ModeStdio),
		Port:            envOrDefault("PORT", DefaultPort),
		Environment:     envOrDefault("ENVIRONMENT", "development"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		Verbose:         verbose,
		AgentName:       envOrDefault("AGENT_NAME", DefaultAgentName),
		AgentProfileURL: os.Getenv("AGENT_PROFILE_URL"),
		Currency:        envOrDefault("CURRENCY", DefaultCurrency),
		CatalogFile:     os.Getenv("CATALOG_FILE"),
		RequestTimeout:  timeout,
		HTTPTransport:   envOrDefault("HTTP_TRANSPORT", HTTPTransportStandard),
		GCPProject:      os.Getenv("GCP_PROJECT"),
		MerchantSecret:  os.Getenv("MERCHANT_SECRET"),
	}

	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.MerchantSecret == "" {
			return nil, fmt.Errorf("MERCHANT_SECRET required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		cfg.Merchant = MerchantConfig{
			URL:    os.Getenv("MERCHANT_URL"),
			APIKey: os.Getenv("MERCHANT_API_KEY"),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading merchant config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple env vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		TransportMode   string         `json:"transport_mode"`
		Port            string         `json:"port"`
		Environment     string         `json:"environment"`
		LogLevel        string         `json:"log_level"`
		Verbose         bool           `json:"verbose"`
		AgentName       string         `json:"agent_name"`
		AgentProfileURL string         `json:"agent_profile_url"`
		Currency        string         `json:"currency"`
		CatalogFile     string         `json:"catalog_file"`
		RequestTimeout  string         `json:"request_timeout"`
		HTTPTransport   string         `json:"http_transport"`
		Merchant        MerchantConfig `json:"merchant"`
	}
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	timeout := DefaultRequestTimeout
	if fileConfig.RequestTimeout != "" {
		timeout, err = time.ParseDuration(fileConfig.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid request_timeout %q: %w", fileConfig.RequestTimeout, err)
		}
	}

	cfg := &Config{
		TransportMode:   withDefault(fileConfig.TransportMode, ModeStdio),
		Port:            withDefault(fileConfig.Port, DefaultPort),
		Environment:     withDefault(fileConfig.Environment, "development"),
		LogLevel:        withDefault(fileConfig.LogLevel, "info"),
		Verbose:         fileConfig.Verbose,
		AgentName:       withDefault(fileConfig.AgentName, DefaultAgentName),
		AgentProfileURL: fileConfig.AgentProfileURL,
		Currency:        withDefault(fileConfig.Currency, DefaultCurrency),
		CatalogFile:     fileConfig.CatalogFile,
		RequestTimeout:  timeout,
		HTTPTransport:   withDefault(fileConfig.HTTPTransport, HTTPTransportStandard),
		Merchant:        fileConfig.Merchant,
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSecretManager fetches merchant config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.MerchantSecret)

	data, err := accessSecret(ctx, secretName)
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}
	if err := json.Unmarshal(data, &c.Merchant); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	return nil
}

func accessSecretVersion(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, err
	}
	return result.GetPayload().GetData(), nil
}

func (c *Config) normalize() {
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.TransportMode = strings.ToLower(c.TransportMode)
	c.HTTPTransport = strings.ToLower(c.HTTPTransport)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Merchant.URL = strings.TrimSuffix(strings.TrimSpace(c.Merchant.URL), "/")
}

// validate checks that all required configuration fields are present and sane.
func (c *Config) validate() error {
	if c.Merchant.URL == "" {
		return fmt.Errorf("merchant url is required")
	}
	u, err := url.Parse(c.Merchant.URL)
	if err != nil {
		return fmt.Errorf("invalid merchant url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid merchant url %q: must be an absolute http(s) URL", c.Merchant.URL)
	}

	if c.AgentProfileURL != "" {
		if _, err := url.ParseRequestURI(c.AgentProfileURL); err != nil {
			return fmt.Errorf("invalid agent profile url: %w", err)
		}
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}

	if len(c.Currency) != 3 || strings.IndexFunc(c.Currency, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return fmt.Errorf("invalid currency %q: must be a 3-letter ISO 4217 code", c.Currency)
	}

	switch c.TransportMode {
	case ModeStdio, ModeHTTP:
	default:
		return fmt.Errorf("invalid transport mode %q: must be stdio or http", c.TransportMode)
	}

	switch c.HTTPTransport {
	case HTTPTransportStandard, HTTPTransportChrome:
	default:
		return fmt.Errorf("invalid http transport %q: must be standard or chrome", c.HTTPTransport)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.TransportMode == ModeHTTP {
		if _, err := strconv.Atoi(c.Port); err != nil {
			return fmt.Errorf("invalid port %q", c.Port)
		}
	}

	return nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envDuration parses a duration such as "30s". Bare integers are seconds.
func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func envBool(key string) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return b, nil
}
