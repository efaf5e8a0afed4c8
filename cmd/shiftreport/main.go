// Command shiftreport is the terminal client for driver shift reports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/config"
	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/tui"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// ---- flags ----

var (
	cfgFile  string
	apiURL   string
	logLevel string
	devMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "shiftreport",
	Short: "Shift reports for drivers",
	Long: `shiftreport fills in and submits driver shift reports.

Without a subcommand it starts the interactive form. Identity comes from the
platform launch data (TG_INIT_DATA) or a launch token; --dev uses a test user.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shiftreport %s (%s)\n", version, buildDate)
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect the saved form draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the draft as JSON",
	RunE:  draftShow,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the draft to an empty form",
	RunE:  draftClear,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Resolve the launching user and print it as JSON",
	RunE:  whoami,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Print the latest reports as JSON",
	RunE:  listReports,
}

var tokenCmd = &cobra.Command{
	Use:   "launch-token <platform-id>",
	Short: "Issue a launch token for a platform user (needs SHIFTREPORT_LAUNCH_KEY)",
	Args:  cobra.ExactArgs(1),
	RunE:  launchToken,
}

var tokenTTL time.Duration

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/shiftreport/config.yaml)")
	pf.StringVar(&apiURL, "api-url", "", "backend base URL")
	pf.StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	pf.BoolVar(&devMode, "dev", false, "use the development stand-in host and test user")

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime (0 = no expiry)")

	draftCmd.AddCommand(draftShowCmd, draftClearCmd)
	rootCmd.AddCommand(versionCmd, draftCmd, whoamiCmd, reportsCmd, tokenCmd)
}

// loadConfig layers the flags over file and environment settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("dev") {
		cfg.Host.Dev = devMode
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ---- commands ----

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("api", cfg.APIURL),
		zap.Bool("dev", cfg.Host.Dev),
	)

	m := tui.New(tui.Deps{
		Bridge:  a.bridge,
		Auth:    a.auth,
		Reports: a.reports,
		Drafts:  a.drafts,
		Log:     a.log,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}

func draftShow(cmd *cobra.Command, _ []string) error {
	a, err := appFor(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return printJSON(cmd.OutOrStdout(), a.drafts.Load(cmd.Context(), nil))
}

func draftClear(cmd *cobra.Command, _ []string) error {
	a, err := appFor(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return printJSON(cmd.OutOrStdout(), a.drafts.Reset(cmd.Context()))
}

func whoami(cmd *cobra.Command, _ []string) error {
	a, err := appFor(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.user(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), u)
}

func listReports(cmd *cobra.Command, _ []string) error {
	a, err := appFor(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.user(cmd.Context())
	if err != nil {
		return err
	}
	list, err := a.reports.Recent(cmd.Context(), *u)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), list)
}

func launchToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Host.LaunchKey == "" {
		return errors.New("launch key is not configured (SHIFTREPORT_LAUNCH_KEY)")
	}
	var id host.Identity
	if _, err := fmt.Sscan(args[0], &id.ID); err != nil || id.ID <= 0 {
		return fmt.Errorf("bad platform id %q", args[0])
	}
	tok, err := host.IssueLaunchToken([]byte(cfg.Host.LaunchKey), id, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}

func appFor(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, io.Discard)
}

// ---- utils ----

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) {
	switch {
	case errors.Is(err, errs.ErrNoIdentity):
		fmt.Fprintln(os.Stderr, "no platform identity: set TG_INIT_DATA, SHIFTREPORT_LAUNCH_TOKEN or use --dev")
	case errors.Is(err, errs.ErrNotFound):
		fmt.Fprintln(os.Stderr, "user is not registered; run shiftreport to register")
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// ---- main ----

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fail(err)
	}
}
