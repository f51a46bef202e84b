package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/resolver"
)

// rawSteps maps the step names accepted by the raw command to their endpoints.
var rawSteps = map[string]api.Endpoint{
	"community":   api.EndpointCommunities,
	"street":      api.EndpointStreets,
	"hnr":         api.EndpointHouseNumber,
	"abfallarten": api.EndpointAbfallarten,
}

var rawCmd = &cobra.Command{
	Use:   "raw <step> [profile]",
	Short: "Show what an assistant step offers for a saved profile",
	Long: "Replays one assistant step with the selections a profile made before it and prints the parsed\n" +
		"options. Useful to check whether the vendor still offers the saved choices.\n" +
		"Steps: community, street, hnr, abfallarten.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		step := strings.ToLower(args[0])
		ep, ok := rawSteps[step]
		if !ok {
			return ExitWithError(ExitUserError, "unknown step %q (expected community, street, hnr or abfallarten)", args[0])
		}

		query := ""
		if len(args) == 2 {
			query = args[1]
		}
		p, err := resolver.Resolve(app.Config, query)
		if err != nil {
			return ExitWithError(ExitUserError, "%v", err)
		}

		cfg := selectionsBefore(p.Configuration, step)
		options, err := app.Client.Options(ctx, &cfg, ep)
		if err != nil {
			return vendorError(err, "fetching %s options", step)
		}

		if app.Printer.IsTable() {
			rows := make([][]string, 0, len(options))
			for _, o := range options {
				rows = append(rows, []string{o.Name, o.Data, selectedMark(p.Configuration, step, o)})
			}
			return app.Printer.Table([]string{"NAME", "DATA", "SELECTED"}, rows)
		}
		return app.Printer.JSON(options)
	},
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

// selectionsBefore keeps only the selections the assistant had made when it reached step.
func selectionsBefore(c api.Configuration, step string) api.Configuration {
	out := c.Clone()
	out.Abfallarten = []api.Option{}
	switch step {
	case "community":
		out.Community, out.Street, out.HNr = nil, nil, nil
	case "street":
		out.Street, out.HNr = nil, nil
	case "hnr":
		out.HNr = nil
	}
	return out
}

func selectedMark(c api.Configuration, step string, o api.Option) string {
	var selected bool
	switch step {
	case "community":
		selected = c.Community != nil && c.Community.Data == o.Data
	case "street":
		selected = c.Street != nil && c.Street.Data == o.Data
	case "hnr":
		selected = c.HNr != nil && c.HNr.Data == o.Data
	case "abfallarten":
		selected = c.HasAbfallart(o)
	}
	if selected {
		return "*"
	}
	return ""
}
