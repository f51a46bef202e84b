package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and cached pickup status of every profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		output := api.StatusOutput{
			Profiles: []api.ProfileStatus{},
		}

		if len(app.Config.Profiles) == 0 {
			app.Printer.Info("No profiles configured. Run: abfallcli setup")
			return app.Printer.JSON(output)
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "PROFILE\tSESSION\tFETCHED\tFAILURES\tNEXT PICKUP\tDAYS LEFT\n")
		fmt.Fprintf(w, "-------\t-------\t-------\t--------\t-----------\t---------\n")

		for _, p := range app.Config.Profiles {
			entry, _ := app.Cache.Get(p.Name)
			st := profileStatus(p, entry, now)

			session, fetched, next, days := "none", "never", "-", "-"
			if st.HasSession {
				session = "yes"
			}
			if st.FetchedAt != nil {
				fetched = st.FetchedAt.Local().Format("2006-01-02 15:04")
			}
			if st.NextPickup != "" {
				next = st.NextCategory + " " + st.NextPickup
				days = fmt.Sprintf("%d", *st.DaysUntilNext)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", st.Name, session, fetched, st.Failures, next, days)

			output.Profiles = append(output.Profiles, st)
		}
		w.Flush()

		return app.Printer.JSON(output)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// profileStatus finds the earliest cached pickup that is not in the past.
func profileStatus(p config.Profile, entry pickupcache.Entry, now time.Time) api.ProfileStatus {
	st := api.ProfileStatus{
		Name:     p.Name,
		Failures: entry.Failures,
	}
	if c := p.Configuration.Cookie; c != nil {
		st.HasSession = true
		if !c.CapturedAt.IsZero() {
			since := c.CapturedAt
			st.SessionSince = &since
		}
	}
	if !entry.FetchedAt.IsZero() {
		fetched := entry.FetchedAt
		st.FetchedAt = &fetched
	}

	var best time.Time
	for _, cat := range p.Configuration.Abfallarten {
		for _, d := range entry.Pickups[cat.Name] {
			if daysUntil(now, d) < 0 {
				continue
			}
			if best.IsZero() || d.Before(best) {
				best = d
				st.NextCategory = cat.Name
			}
			break
		}
	}
	if !best.IsZero() {
		days := daysUntil(now, best)
		st.NextPickup = formatPickupDate(best)
		st.DaysUntilNext = &days
	}
	return st
}
