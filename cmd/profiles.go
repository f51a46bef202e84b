package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(app.Config.Profiles) == 0 {
			return ExitWithError(ExitConfigError, "no profiles configured. Run: abfallcli setup")
		}

		out := make([]api.ProfileOutput, 0, len(app.Config.Profiles))
		for _, p := range app.Config.Profiles {
			out = append(out, profileOutput(p))
		}

		if app.Printer.IsTable() {
			rows := make([][]string, 0, len(out))
			for _, p := range out {
				rows = append(rows, []string{p.Name, p.App, p.Community, p.Street + " " + p.HouseNumber, strings.Join(p.Categories, ", ")})
			}
			return app.Printer.Table([]string{"PROFILE", "APP", "COMMUNITY", "ADDRESS", "CATEGORIES"}, rows)
		}
		return app.Printer.JSON(out)
	},
}

var profilesRemoveCmd = &cobra.Command{
	Use:   "remove <profile>",
	Short: "Remove a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		p, err := app.Config.FindProfile(name)
		if err != nil {
			return ExitWithError(ExitUserError, "%v", err)
		}
		removed := p.Name

		err = updateConfig(func(c *config.Config) error { return c.RemoveProfile(removed) })
		if err != nil {
			return ExitWithError(ExitConfigError, "saving config: %v", err)
		}

		// The cached pickups go with the profile.
		cache := pickupcache.New(app.Location.Dir)
		cache.Forget(removed)
		if err := cache.Persist(); err != nil {
			app.Printer.Warn("updating pickup cache: %v", err)
		}

		app.Printer.Info("Removed profile %s", removed)

		output := struct {
			Removed string `json:"removed"`
		}{
			Removed: removed,
		}
		return app.Printer.JSON(output)
	},
}

func init() {
	profilesCmd.AddCommand(profilesRemoveCmd)
	rootCmd.AddCommand(profilesCmd)
}

func profileOutput(p config.Profile) api.ProfileOutput {
	c := p.Configuration
	out := api.ProfileOutput{
		Name:       p.Name,
		Categories: []string{},
		ClientID:   c.ClientID,
		CreatedAt:  p.CreatedAt,
	}
	if c.App != nil {
		out.App = c.App.Name
	}
	if c.Community != nil {
		out.Community = c.Community.Name
	}
	if c.Street != nil {
		out.Street = c.Street.Name
	}
	if c.HNr != nil {
		out.HouseNumber = c.HNr.Name
	}
	for _, a := range c.Abfallarten {
		out.Categories = append(out.Categories, a.Name)
	}
	return out
}
