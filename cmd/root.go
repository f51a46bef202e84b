package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	console "github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/output"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
)

const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitAPIError    = 2
	ExitConfigError = 3
)

// App holds shared dependencies for all subcommands.
type App struct {
	Config     *config.Config
	Location   config.Location
	Apps       []api.App
	Client     *api.Client
	Printer    *output.Printer
	Cache      *pickupcache.Cache
}

var (
	app         App
	flagPretty  bool
	flagCompact bool
	flagTable   bool
	flagQuiet   bool
	flagVerbose bool
	flagConfig  string
	version     string
)

var rootCmd = &cobra.Command{
	Use:           "abfallcli",
	Short:         "Abfallplus CLI: waste pickup dates for your address",
	Long:          "Registers an address with the Abfallplus app backend and reports the next pickup dates\nper waste category. Outputs structured JSON to stdout, or a table with --table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize printer first (always needed)
		mode := output.ModeFromFlags(flagPretty, flagCompact, flagTable)
		app.Printer = output.NewPrinter(os.Stdout, os.Stderr, mode, flagQuiet)
		setupLogging()

		// Load config
		loc, err := config.Locate(flagConfig)
		if err != nil {
			return ExitWithError(ExitConfigError, "config path: %v", err)
		}
		app.Location = loc

		cfg, err := config.Load(loc.File)
		if err != nil {
			return ExitWithError(ExitConfigError, "loading config: %v", err)
		}
		app.Config = cfg

		apps, err := config.LoadApps(cfg.AppsFile)
		if err != nil {
			return ExitWithError(ExitConfigError, "loading apps: %v", err)
		}
		app.Apps = apps

		// Commands that only need config (no vendor client)
		if configOnly(cmd) {
			return nil
		}

		app.Cache = pickupcache.New(loc.Dir)
		app.Client = newClient(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "force pretty-printed JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "force compact JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "print a table instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress informational messages on stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
}

// Execute runs the root command. Called from main.
func Execute(v string) error {
	version = v
	rootCmd.Version = v

	err := rootCmd.Execute()

	// Persist pickup cache on exit
	if app.Cache != nil {
		if perr := app.Cache.Persist(); perr != nil && app.Printer != nil {
			app.Printer.Warn("saving pickup cache: %v", perr)
		}
	}

	var ee *exitErr
	if err != nil && !errors.As(err, &ee) && app.Printer != nil {
		// Cobra's own errors (unknown flag, missing argument) are not printed yet.
		app.Printer.Error("%v", err)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUserError
}

func setupLogging() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	if flagQuiet && !flagVerbose {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithLogger(slog.Default()),
		// 2 requests per second; the vendor backend is a small app server
		api.WithRateLimit(rate.NewLimiter(2, 2)),
	)
}

// configOnly returns true for commands that need config but no vendor client.
func configOnly(cmd *cobra.Command) bool {
	switch fullCmdName(cmd) {
	case "abfallcli config", "abfallcli apps", "abfallcli profiles", "abfallcli profiles remove", "abfallcli help", "abfallcli completion":
		return true
	}
	return false
}

func fullCmdName(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, " ")
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...interface{}) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// ExitWithError prints an error to stderr and returns an error for the exit code.
func ExitWithError(code int, format string, args ...interface{}) error {
	app.Printer.Error(format, args...)
	return exitError(code, format, args...)
}

// exitCodeFor picks the exit code for an error coming out of the api or wizard packages.
func exitCodeFor(err error) int {
	var (
		cfgErr *api.ConfigurationError
		selErr *api.SelectionNotFoundError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &selErr):
		return ExitUserError
	default:
		return ExitAPIError
	}
}

// vendorError reports a failed vendor interaction with the matching exit code.
func vendorError(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return ExitWithError(exitCodeFor(err), "%s: %v", msg, err)
}

// updateConfig applies fn to the stored config under its file lock, then to the
// loaded one. Environment overrides never reach the file.
func updateConfig(fn func(*config.Config) error) error {
	if _, err := config.Update(app.Location.File, fn); err != nil {
		return err
	}
	return fn(app.Config)
}
