// Package wizard drives the vendor assistant: app, community, street, house number
// and waste categories, followed by the finish request.
package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

// State is a step of the assistant. States only move forward.
type State int

const (
	SelectApp State = iota
	SelectCommunity
	SelectStreet
	SelectHouseNumber
	SelectWasteCategories
	Finalized
)

func (s State) String() string {
	switch s {
	case SelectApp:
		return "app"
	case SelectCommunity:
		return "community"
	case SelectStreet:
		return "street"
	case SelectHouseNumber:
		return "house number"
	case SelectWasteCategories:
		return "waste categories"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// step describes how a state fetches its options and applies a selection.
type step struct {
	endpoint api.Endpoint
	apply    func(cfg *api.Configuration, o api.Option)
}

var steps = map[State]step{
	SelectCommunity: {
		endpoint: api.EndpointCommunities,
		apply:    func(cfg *api.Configuration, o api.Option) { cfg.Community = &o },
	},
	SelectStreet: {
		endpoint: api.EndpointStreets,
		apply:    func(cfg *api.Configuration, o api.Option) { cfg.Street = &o },
	},
	SelectHouseNumber: {
		endpoint: api.EndpointHouseNumber,
		apply:    func(cfg *api.Configuration, o api.Option) { cfg.HNr = &o },
	},
	SelectWasteCategories: {
		endpoint: api.EndpointAbfallarten,
		apply: func(cfg *api.Configuration, o api.Option) {
			if !cfg.HasAbfallart(o) {
				cfg.Abfallarten = append(cfg.Abfallarten, o)
			}
		},
	},
}

// Wizard is the assistant state machine for one Configuration. It is not safe for
// concurrent use.
type Wizard struct {
	client *api.Client
	cfg    *api.Configuration
	apps   []api.App
	logger *slog.Logger

	state   State
	offered []api.Option
	// offeredFor is the state the offered options belong to.
	offeredFor State
	hasOffer   bool
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithApps replaces the app catalog offered in the first step.
func WithApps(apps []api.App) Option {
	return func(w *Wizard) { w.apps = apps }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// New starts a wizard on a fresh Configuration.
func New(client *api.Client, opts ...Option) (*Wizard, error) {
	cfg, err := api.NewConfiguration()
	if err != nil {
		return nil, err
	}
	w := &Wizard{
		client: client,
		cfg:    cfg,
		apps:   api.Apps(),
		logger: slog.Default(),
		state:  SelectApp,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// State returns the current step.
func (w *Wizard) State() State {
	return w.state
}

// Configuration returns a copy of the selections made so far.
func (w *Wizard) Configuration() api.Configuration {
	return w.cfg.Clone()
}

// Options returns the choices for the current step and remembers them for Select.
// The app step is served from the local catalog; the others ask the vendor.
func (w *Wizard) Options(ctx context.Context) ([]api.Option, error) {
	if w.state == Finalized {
		return nil, finalizedError()
	}

	var options []api.Option
	if w.state == SelectApp {
		options = make([]api.Option, 0, len(w.apps))
		for _, a := range w.apps {
			options = append(options, api.Option{Name: a.Name, Data: a.AppID})
		}
	} else {
		var err error
		options, err = w.client.Options(ctx, w.cfg, steps[w.state].endpoint)
		if err != nil {
			return nil, err
		}
	}

	w.offered = options
	w.offeredFor = w.state
	w.hasOffer = true
	return append([]api.Option{}, options...), nil
}

// Select applies the named choices to the current step. Single-choice steps take
// exactly one name and advance; the waste category step takes any number of names
// and stays put until Finalize. Names are matched against the options last returned
// by Options; if one does not match, nothing is applied.
func (w *Wizard) Select(names ...string) error {
	if w.state == Finalized {
		return finalizedError()
	}
	if !w.hasOffer || w.offeredFor != w.state {
		return &api.ConfigurationError{Reason: fmt.Sprintf("options for %s have not been fetched", w.state)}
	}
	if w.state != SelectWasteCategories && len(names) != 1 {
		return &api.ConfigurationError{Reason: fmt.Sprintf("%s takes exactly one selection, got %d", w.state, len(names))}
	}

	matched := make([]api.Option, 0, len(names))
	for _, name := range names {
		o, ok := w.lookup(name)
		if !ok {
			return &api.SelectionNotFoundError{
				Step:      w.state.String(),
				Selection: name,
				Available: w.offeredNames(),
			}
		}
		matched = append(matched, o)
	}

	if w.state == SelectApp {
		return w.selectApp(matched[0])
	}

	st := steps[w.state]
	for _, o := range matched {
		st.apply(w.cfg, o)
		w.logger.Debug("selected", "step", w.state.String(), "name", o.Name, "data", o.Data)
	}
	if w.state != SelectWasteCategories {
		w.advance()
	}
	return nil
}

// Finalize sends the finish request and returns the finished Configuration.
// The wizard cannot be used afterwards.
func (w *Wizard) Finalize(ctx context.Context) (api.Configuration, error) {
	if w.state == Finalized {
		return api.Configuration{}, finalizedError()
	}
	if w.state != SelectWasteCategories {
		return api.Configuration{}, &api.ConfigurationError{Reason: fmt.Sprintf("cannot finalize during %s step", w.state)}
	}
	if err := w.client.Finalize(ctx, w.cfg); err != nil {
		return api.Configuration{}, err
	}
	w.state = Finalized
	w.offered = nil
	w.hasOffer = false
	w.logger.Debug("assistant finalized", "client_id", w.cfg.ClientID, "categories", len(w.cfg.Abfallarten))
	return w.cfg.Clone(), nil
}

func (w *Wizard) selectApp(o api.Option) error {
	for _, a := range w.apps {
		if a.AppID == o.Data {
			app := a
			w.cfg.App = &app
			w.logger.Debug("selected", "step", w.state.String(), "name", a.Name, "app_id", a.AppID)
			w.advance()
			return nil
		}
	}
	return &api.SelectionNotFoundError{Step: w.state.String(), Selection: o.Name, Available: w.offeredNames()}
}

func (w *Wizard) advance() {
	w.state++
	w.offered = nil
	w.hasOffer = false
}

func (w *Wizard) lookup(name string) (api.Option, bool) {
	for _, o := range w.offered {
		if o.Name == name {
			return o, true
		}
	}
	return api.Option{}, false
}

func (w *Wizard) offeredNames() []string {
	names := make([]string, 0, len(w.offered))
	for _, o := range w.offered {
		names = append(names, o.Name)
	}
	return names
}

func finalizedError() error {
	return &api.ConfigurationError{Reason: "assistant already finalized; start a new one"}
}
