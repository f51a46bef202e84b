package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List supported vendor apps",
	Long:  "Lists the built-in vendor apps plus those from the apps_file configured in config.json.",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		apps := app.Apps
		// Client-side search filter
		if search != "" {
			search = strings.ToLower(search)
			var filtered []api.App
			for _, a := range apps {
				if strings.Contains(strings.ToLower(a.Name), search) || strings.Contains(strings.ToLower(a.AppID), search) {
					filtered = append(filtered, a)
				}
			}
			apps = filtered
		}

		if apps == nil {
			apps = []api.App{}
		}

		if app.Printer.IsTable() {
			rows := make([][]string, 0, len(apps))
			for _, a := range apps {
				rows = append(rows, []string{a.Name, a.AppID, a.LandkreisID})
			}
			return app.Printer.Table([]string{"NAME", "APP ID", "LANDKREIS"}, rows)
		}
		return app.Printer.JSON(apps)
	},
}

func init() {
	appsCmd.Flags().String("search", "", "filter apps by name or app id (case-insensitive)")
	rootCmd.AddCommand(appsCmd)
}
