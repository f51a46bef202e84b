package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/resolver"
)

var reconnectCmd = &cobra.Command{
	Use:   "reconnect [profile]",
	Short: "Drop the stored vendor session of a profile and log in again",
	Long: "Profiles keep the session cookie obtained during setup. When the vendor no longer accepts it,\n" +
		"reconnect fetches a new one for the same client id and selections.",
	Args: cobra.MaximumNArgs(1),
	RunE: runReconnect,
}

func init() {
	rootCmd.AddCommand(reconnectCmd)
}

func runReconnect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	p, err := resolver.Resolve(app.Config, query)
	if err != nil {
		return ExitWithError(ExitUserError, "%v", err)
	}

	updated := *p
	updated.Configuration = p.Configuration.Clone()
	updated.Configuration.Cookie = nil

	app.Printer.Info("Logging in again for %s...", p.Name)
	session, err := app.Client.EnsureAuthenticated(ctx, &updated.Configuration)
	if err != nil {
		return vendorError(err, "logging in")
	}
	if session == nil {
		return ExitWithError(ExitAPIError, "the vendor did not hand out a session; the old one is kept")
	}

	if err := updateConfig(func(c *config.Config) error { return c.UpdateProfile(updated) }); err != nil {
		return ExitWithError(ExitConfigError, "saving config: %v", err)
	}

	app.Printer.Info("Reconnected %s (%d cookie(s))", p.Name, len(session.Cookies))
	return app.Printer.JSON(profileOutput(updated))
}
