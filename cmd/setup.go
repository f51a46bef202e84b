package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/wizard"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register an address with the vendor and save it as a profile",
	Long: "Walks through the vendor assistant: app, community, street, house number and waste categories.\n" +
		"Every choice can be given as a flag; missing ones are asked for on the terminal.",
	Example: "  abfallcli setup --name home --app ZAW-DW --community Musterstadt --street Hauptstr. --hnr 12 --category Restmüll --category Biomüll",
	RunE:    runSetup,
}

func init() {
	setupCmd.Flags().StringP("name", "n", "", "profile name (default: street and house number)")
	setupCmd.Flags().String("app", "", "vendor app name")
	setupCmd.Flags().String("community", "", "community name")
	setupCmd.Flags().String("street", "", "street name")
	setupCmd.Flags().String("hnr", "", "house number")
	setupCmd.Flags().StringArray("category", nil, "waste category (repeatable)")
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers are the choices given on the command line, keyed by wizard step.
type setupAnswers map[wizard.State][]string

func runSetup(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name, _ := cmd.Flags().GetString("name")
	answers := setupAnswers{}
	for state, flag := range map[wizard.State]string{
		wizard.SelectApp:         "app",
		wizard.SelectCommunity:   "community",
		wizard.SelectStreet:      "street",
		wizard.SelectHouseNumber: "hnr",
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			answers[state] = []string{v}
		}
	}
	if cats, _ := cmd.Flags().GetStringArray("category"); len(cats) > 0 {
		answers[wizard.SelectWasteCategories] = cats
	}

	if name != "" {
		if _, err := app.Config.FindProfile(name); err == nil {
			return ExitWithError(ExitUserError, "profile %q already exists. Remove it first: abfallcli profiles remove %s", name, name)
		}
	}

	w, err := wizard.New(app.Client, wizard.WithApps(app.Apps), wizard.WithLogger(slog.Default()))
	if err != nil {
		return ExitWithError(ExitUserError, "starting assistant: %v", err)
	}

	var p *prompter
	if len(answers) < 5 {
		tty, err := os.Open("/dev/tty")
		if err == nil {
			defer tty.Close()
			p = newPrompter(tty, app.Printer)
		}
	}

	for w.State() != wizard.Finalized {
		if err := setupStep(ctx, w, answers, p); err != nil {
			return err
		}
		if w.State() == wizard.SelectWasteCategories && len(w.Configuration().Abfallarten) > 0 {
			break
		}
	}

	app.Printer.Info("Finalizing registration...")
	final, err := w.Finalize(ctx)
	if err != nil {
		return vendorError(err, "finalizing registration")
	}

	if name == "" {
		name = defaultProfileName(final)
	}
	profile := config.Profile{Name: name, CreatedAt: time.Now(), Configuration: final}
	if err := updateConfig(func(c *config.Config) error { return c.AddProfile(profile) }); err != nil {
		return ExitWithError(ExitConfigError, "saving profile: %v", err)
	}

	app.Printer.Info("Saved profile %q with %d waste categories", profile.Name, len(final.Abfallarten))
	return app.Printer.JSON(profileOutput(profile))
}

// setupStep fetches the options of the current step and applies the answer from the
// flags or the prompt. A name the vendor does not offer is asked again when a
// terminal is available.
func setupStep(ctx context.Context, w *wizard.Wizard, answers setupAnswers, p *prompter) error {
	state := w.State()
	if state != wizard.SelectApp {
		app.Printer.Info("Fetching %s options...", state)
	}
	options, err := w.Options(ctx)
	if err != nil {
		return vendorError(err, "fetching %s options", state)
	}

	multi := state == wizard.SelectWasteCategories
	picked, fromFlags := answers[state]
	for {
		if !fromFlags {
			if p == nil {
				return ExitWithError(ExitUserError, "--%s is required when not running on a terminal", flagFor(state))
			}
			picked, err = p.choose(state.String(), options, multi)
			if err != nil {
				return ExitWithError(ExitUserError, "%v", err)
			}
		}

		err = w.Select(picked...)
		var nf *api.SelectionNotFoundError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &nf) && fromFlags:
			return ExitWithError(ExitUserError, "%s %q not offered%s", state, nf.Selection, suggest(nf))
		case errors.As(err, &nf) && p != nil:
			app.Printer.Warn("%s %q not offered, try again", state, nf.Selection)
		default:
			return vendorError(err, "selecting %s", state)
		}
	}
}

// suggest lists offered names that contain the rejected one, like "Did you mean" hints.
func suggest(nf *api.SelectionNotFoundError) string {
	var similar []string
	q := strings.ToLower(nf.Selection)
	for _, n := range nf.Available {
		if strings.Contains(strings.ToLower(n), q) || strings.Contains(q, strings.ToLower(n)) {
			similar = append(similar, n)
		}
	}
	if len(similar) == 0 {
		return ""
	}
	return fmt.Sprintf(". Did you mean: %s?", strings.Join(similar, ", "))
}

func flagFor(state wizard.State) string {
	switch state {
	case wizard.SelectApp:
		return "app"
	case wizard.SelectCommunity:
		return "community"
	case wizard.SelectStreet:
		return "street"
	case wizard.SelectHouseNumber:
		return "hnr"
	default:
		return "category"
	}
}

func defaultProfileName(cfg api.Configuration) string {
	if cfg.Street != nil && cfg.HNr != nil {
		return strings.ToLower(strings.ReplaceAll(cfg.Street.Name+"-"+cfg.HNr.Name, " ", "-"))
	}
	return cfg.ClientID[:8]
}
