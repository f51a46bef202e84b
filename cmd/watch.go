package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
	"github.com/nicolasacchi/abfallcli/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [profile...]",
	Short: "Refresh pickup dates periodically",
	Long: "Refreshes the pickup dates of the given profiles (all by default) right away and then on every\n" +
		"interval, printing one JSON line per profile and refresh. Stops on Ctrl-C.",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = app.Config.Interval()
		}

		profiles, err := resolveProfiles(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		byName := make(map[string]int, len(profiles))
		for i, p := range profiles {
			byName[p.Name] = i
		}

		observer := watch.ObserverFunc(func(entry pickupcache.Entry, err error) {
			if err != nil {
				app.Printer.Warn("refreshing %s: %v", entry.Profile, err)
			} else if entry.Stale() {
				app.Printer.Warn("vendor unavailable, keeping last known dates for %s", entry.Profile)
			}
			i, ok := byName[entry.Profile]
			if !ok {
				return
			}
			out := pickupOutput(profiles[i], entry, time.Time{})
			if app.Printer.IsTable() {
				app.Printer.Table(pickupTable([]api.PickupOutput{out}, time.Now()))
				return
			}
			app.Printer.JSON(out)
		})

		app.Printer.Info("Watching %d profile(s), refreshing every %s", len(profiles), interval)
		w := watch.New(app.Client, app.Cache, watch.WithInterval(interval), watch.WithObserver(observer))
		if err := w.Run(ctx, profiles); err != nil {
			return ExitWithError(ExitUserError, "%v", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "refresh interval (default: refresh_interval from config, 1h)")
	rootCmd.AddCommand(watchCmd)
}
