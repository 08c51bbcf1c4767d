// ucpclient drives a UCP merchant through the agent's action surface from the
// terminal. Without a subcommand it starts an interactive shell.
//
// Examples:
//
//	MERCHANT_URL=http://localhost:8182 ucpclient
//	ucpclient --merchant http://localhost:8182 call search roses
//	ucpclient call add_to_checkout '{"product_id":"bouquet_roses","quantity":2}'
//	ucpclient profile
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ucp-agent/internal/app"
	"ucp-agent/internal/config"
	"ucp-agent/internal/negotiation"
	"ucp-agent/internal/tools"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	if err := execute(ctx, c, newRootCommand(c)); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// execute runs root and releases whatever setup started, even when the
// command fails.
func execute(ctx context.Context, c *cli, root *cobra.Command) error {
	defer c.teardown()
	return root.ExecuteContext(ctx)
}

// cli holds flag values and the state built from them.
type cli struct {
	configFile   string
	merchantURL  string
	quiet        bool
	noColor      bool
	verbose      bool
	serveProfile bool
	profilePort  int
	profileFile  string

	out     printer
	app     *app.App
	profile *profileServer
}

// needsApp marks commands that talk to the merchant.
const needsApp = "needs-app"

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "ucpclient",
		Short:         "Interactive client for UCP merchant checkouts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{needsApp: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), cmd.InOrStdin(), c.out, c.app.NewSurface())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "JSON config file (overrides CONFIG_FILE)")
	flags.StringVarP(&c.merchantURL, "merchant", "m", "", "merchant base URL (overrides MERCHANT_URL)")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "only print action output and errors")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log every merchant request and response")
	flags.BoolVar(&c.serveProfile, "serve-profile", false, "serve the agent profile locally and advertise its URL")
	flags.IntVar(&c.profilePort, "profile-port", 0, "port for --serve-profile (0 picks a free port)")
	flags.StringVar(&c.profileFile, "profile-file", "", "profile JSON served by --serve-profile (default: agent metadata)")

	root.AddCommand(
		newShellCommand(c),
		newCallCommand(c),
		newActionsCommand(c),
		newProfileCommand(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor {
		disableColors()
	}
	c.out = printer{out: cmd.OutOrStdout(), quiet: c.quiet}
	if cmd.Annotations[needsApp] != "true" {
		return nil
	}

	if c.configFile != "" {
		os.Setenv("CONFIG_FILE", c.configFile)
	}
	if c.merchantURL != "" {
		os.Setenv("MERCHANT_URL", c.merchantURL)
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Verbose = cfg.Verbose || c.verbose

	if c.serveProfile && cfg.AgentProfileURL == "" {
		c.profile, err = startProfileServer(c.profilePort, c.profileFile)
		if err != nil {
			return err
		}
		cfg.AgentProfileURL = c.profile.url
		c.out.info("Profile server started at %s", c.profile.url)
	}

	c.app, err = app.New(cfg, app.NewLogger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	c.out.info("Merchant: %s", cfg.Merchant.URL)
	return nil
}

func (c *cli) teardown() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
	if c.profile != nil {
		c.profile.stop()
		c.profile = nil
	}
}

func newShellCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "shell",
		Short:       "Start an interactive session (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), cmd.InOrStdin(), c.out, c.app.NewSurface())
		},
	}
}

func newCallCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "call <action> [json | key=value... | values...]",
		Short: "Run one action against a fresh checkout session",
		Long: "Run one action and print its output. Since each call starts a new session, " +
			"this suits search_shopping_catalog, get_order and add_to_checkout smoke tests.",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			line := args[0]
			if len(args) > 1 {
				line += " " + quoteArgs(args[1:])
			}
			name, params, err := parseLine(line)
			if err != nil {
				return err
			}
			c.out.result(c.app.NewSurface().Invoke(cmd.Context(), name, params))
			return nil
		},
	}
}

// quoteArgs rejoins shell-split arguments so parseLine sees the same tokens.
func quoteArgs(args []string) string {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "{") {
		return args[0]
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

func newActionsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printHelp(c.out)
		},
	}
}

func newProfileCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "profile",
		Short:       "Discover the merchant and show negotiated capabilities",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.CheckMerchant(cmd.Context())
			if err != nil {
				return err
			}
			printNegotiation(c.out, result)
			return nil
		},
	}
}

func printNegotiation(p printer, r *negotiation.Result) {
	p.heading("Protocol version: %s", r.Version)

	names := make([]string, 0, len(r.Capabilities))
	for name := range r.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	p.heading("Capabilities:")
	for _, name := range names {
		p.result("  " + name)
	}
	for _, missing := range r.Missing(negotiation.CapabilityCheckout, negotiation.CapabilityFulfillment) {
		p.warning("merchant does not support %s", missing)
	}

	p.heading("Payment handlers:")
	ids := negotiation.HandlerIDs(r.PaymentHandlers)
	if len(ids) == 0 {
		p.result("  (none)")
	}
	for _, id := range ids {
		p.result("  " + id)
	}
	if r.Has(negotiation.CapabilityCheckout) {
		p.success("Merchant is ready for %s.", tools.ActionAddToCheckout)
	}
}
