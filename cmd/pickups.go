package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
	"github.com/nicolasacchi/abfallcli/internal/resolver"
	"github.com/nicolasacchi/abfallcli/internal/watch"
)

var pickupsCmd = &cobra.Command{
	Use:   "pickups [profile...]",
	Short: "Show the next pickup dates",
	Long: "Fetches the next two pickup dates per waste category for each profile (all profiles by default).\n" +
		"When the vendor is unreachable the last known dates are shown and marked stale.",
	Example: "  abfallcli pickups home --table\n  abfallcli pickups --until +7d",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		untilFlag, _ := cmd.Flags().GetString("until")
		cached, _ := cmd.Flags().GetBool("cached")

		var until time.Time
		if untilFlag != "" {
			var err error
			until, err = parseDate(untilFlag)
			if err != nil {
				return ExitWithError(ExitUserError, "invalid --until: %v", err)
			}
		}

		profiles, err := resolveProfiles(args)
		if err != nil {
			return err
		}

		w := watch.New(app.Client, app.Cache)
		var outputs []api.PickupOutput
		var failed error
		for _, p := range profiles {
			entry, ok := app.Cache.Get(p.Name)
			if !cached || !ok {
				app.Printer.Info("Fetching pickup dates for %s...", p.Name)
				entry, err = w.Refresh(ctx, p)
				if err != nil {
					app.Printer.Warn("refreshing %s: %v", p.Name, err)
					failed = err
				} else if entry.Stale() {
					app.Printer.Warn("vendor unavailable, showing last known dates for %s", p.Name)
				}
			}
			outputs = append(outputs, pickupOutput(p, entry, until))
		}

		if app.Printer.IsTable() {
			if err := app.Printer.Table(pickupTable(outputs, time.Now())); err != nil {
				return err
			}
		} else if err := app.Printer.JSON(outputs); err != nil {
			return err
		}

		if failed != nil && len(profiles) == 1 {
			return exitError(exitCodeFor(failed), "%v", failed)
		}
		return nil
	},
}

func init() {
	pickupsCmd.Flags().String("until", "", "only categories collected on or before this day: YYYY-MM-DD, today, tomorrow, +Nd")
	pickupsCmd.Flags().Bool("cached", false, "use cached dates when present instead of asking the vendor")
	rootCmd.AddCommand(pickupsCmd)
}

func resolveProfiles(args []string) ([]config.Profile, error) {
	if len(app.Config.Profiles) == 0 {
		return nil, ExitWithError(ExitConfigError, "no profiles configured. Run: abfallcli setup")
	}
	profiles, err := resolver.ResolveAll(app.Config, args...)
	if err != nil {
		return nil, ExitWithError(ExitUserError, "%v", err)
	}
	return profiles, nil
}

// pickupOutput shapes a cache entry for printing. Categories follow the order they were
// selected in; a zero until keeps them all.
func pickupOutput(p config.Profile, entry pickupcache.Entry, until time.Time) api.PickupOutput {
	out := api.PickupOutput{
		Profile:    p.Name,
		FetchedAt:  entry.FetchedAt,
		Stale:      entry.Stale(),
		Categories: []api.CategoryPickupOut{},
	}
	for _, cat := range p.Configuration.Abfallarten {
		dates := entry.Pickups[cat.Name]
		if !until.IsZero() && (len(dates) == 0 || dates[0].After(until)) {
			continue
		}
		c := api.CategoryPickupOut{Category: cat.Name, Dates: []string{}}
		for i, d := range dates {
			c.Dates = append(c.Dates, d.Format("2006-01-02"))
			switch i {
			case 0:
				c.Next = formatPickupDate(d)
			case 1:
				c.Following = formatPickupDate(d)
			}
		}
		out.Categories = append(out.Categories, c)
	}
	return out
}

func pickupTable(outputs []api.PickupOutput, now time.Time) ([]string, [][]string) {
	header := []string{"PROFILE", "CATEGORY", "NEXT", "WHEN", "AFTER THAT"}
	var rows [][]string
	for _, o := range outputs {
		profile := o.Profile
		if o.Stale {
			profile += " (stale)"
		}
		for _, c := range o.Categories {
			when, next, following := "-", "-", "-"
			if len(c.Dates) > 0 {
				d, _ := time.Parse("2006-01-02", c.Dates[0])
				when = relativeDay(daysUntil(now, d))
				next = c.Next
			}
			if c.Following != "" {
				following = c.Following
			}
			rows = append(rows, []string{profile, c.Category, next, when, following})
		}
	}
	return header, rows
}
