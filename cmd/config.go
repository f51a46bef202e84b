package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change abfallcli configuration",
	Long:  "Without flags, prints the effective configuration. With flags, updates config.json first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if changed(cmd) {
			if err := runConfigSet(cmd); err != nil {
				return err
			}
		}
		return runConfigShow()
	},
}

func init() {
	configCmd.Flags().String("base-url", "", "vendor base URL")
	configCmd.Flags().Duration("refresh-interval", 0, "watch refresh interval, e.g. 30m")
	configCmd.Flags().Duration("request-timeout", 0, "per-request timeout, e.g. 10s")
	configCmd.Flags().String("apps-file", "", "YAML file with extra vendor apps")
	rootCmd.AddCommand(configCmd)
}

func changed(cmd *cobra.Command) bool {
	for _, f := range []string{"base-url", "refresh-interval", "request-timeout", "apps-file"} {
		if cmd.Flags().Changed(f) {
			return true
		}
	}
	return false
}

func runConfigSet(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("apps-file") {
		if path, _ := flags.GetString("apps-file"); path != "" {
			if _, err := config.LoadApps(path); err != nil {
				return ExitWithError(ExitConfigError, "%v", err)
			}
		}
	}

	// The stored file is edited under its lock; env overrides stay out of it.
	_, err := config.Update(app.Location.File, func(cfg *config.Config) error {
		if flags.Changed("base-url") {
			cfg.BaseURL, _ = flags.GetString("base-url")
		}
		if flags.Changed("refresh-interval") {
			d, _ := flags.GetDuration("refresh-interval")
			cfg.RefreshInterval = config.Duration(d)
		}
		if flags.Changed("request-timeout") {
			d, _ := flags.GetDuration("request-timeout")
			cfg.RequestTimeout = config.Duration(d)
		}
		if flags.Changed("apps-file") {
			cfg.AppsFile, _ = flags.GetString("apps-file")
		}
		return nil
	})
	if err != nil {
		return ExitWithError(ExitConfigError, "saving config: %v", err)
	}
	app.Printer.Info("Configuration saved to: %s", app.Location.File)

	loaded, err := config.Load(app.Location.File)
	if err != nil {
		return ExitWithError(ExitConfigError, "loading config: %v", err)
	}
	app.Config = loaded
	return nil
}

func runConfigShow() error {
	cfg := app.Config
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "(default)"
	}

	output := struct {
		BaseURL         string `json:"base_url"`
		RefreshInterval string `json:"refresh_interval"`
		RequestTimeout  string `json:"request_timeout"`
		AppsFile        string `json:"apps_file,omitempty"`
		Apps            int    `json:"apps"`
		ConfigPath      string `json:"config_path"`
		Profiles        int    `json:"profiles"`
	}{
		BaseURL:         baseURL,
		RefreshInterval: cfg.Interval().String(),
		RequestTimeout:  cfg.Timeout().String(),
		AppsFile:        cfg.AppsFile,
		Apps:            len(app.Apps),
		ConfigPath:      app.Location.File,
		Profiles:        len(cfg.Profiles),
	}

	return app.Printer.JSON(output)
}
