package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// --- Assistant types ---

// App describes a vendor app (one per waste management company).
type App struct {
	Name         string `json:"name" yaml:"name"`
	AppID        string `json:"app_id" yaml:"app_id"`
	LandkreisID  string `json:"landkreis_id" yaml:"landkreis_id"` // composite, e.g. "633|0|AWG Donau-Wald"
	BundeslandID string `json:"bundesland_id" yaml:"bundesland_id"`
}

// Option is a selectable choice offered by an assistant step.
// Data is the opaque vendor token; two options are the same if their Data matches.
type Option struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// SessionCookie is one cookie captured from the vendor during login.
type SessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the captured vendor session.
type Session struct {
	Cookies    []SessionCookie `json:"cookies"`
	CapturedAt time.Time       `json:"captured_at"`
}

// HTTPCookies converts the captured session into request cookies.
func (s *Session) HTTPCookies() []*http.Cookie {
	if s == nil {
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies
}

// Configuration accumulates the assistant selections for one registration.
// It is built step by step by the wizard and treated as a value once finalized.
type Configuration struct {
	ClientID    string   `json:"client_id"`
	Cookie      *Session `json:"cookie"`
	App         *App     `json:"app"`
	Community   *Option  `json:"community"`
	Street      *Option  `json:"street"`
	HNr         *Option  `json:"hnr"`
	Abfallarten []Option `json:"abfallarten"`
}

// NewConfiguration returns an empty configuration with a freshly generated client id.
func NewConfiguration() (*Configuration, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("generating client id: %w", err)
	}
	return &Configuration{
		ClientID:    id.String(),
		Abfallarten: []Option{},
	}, nil
}

// Clone returns a deep copy, so the copy can be handed out without aliasing.
func (c Configuration) Clone() Configuration {
	out := c
	if c.Cookie != nil {
		s := *c.Cookie
		s.Cookies = append([]SessionCookie(nil), c.Cookie.Cookies...)
		out.Cookie = &s
	}
	if c.App != nil {
		a := *c.App
		out.App = &a
	}
	out.Community = cloneOption(c.Community)
	out.Street = cloneOption(c.Street)
	out.HNr = cloneOption(c.HNr)
	out.Abfallarten = append([]Option{}, c.Abfallarten...)
	return out
}

// HasAbfallart reports whether a waste category with the same Data is already selected.
func (c *Configuration) HasAbfallart(o Option) bool {
	for _, a := range c.Abfallarten {
		if a.Data == o.Data {
			return true
		}
	}
	return false
}

func cloneOption(o *Option) *Option {
	if o == nil {
		return nil
	}
	v := *o
	return &v
}

// --- Pickup types ---

// PickupRecord is one collection date from the struktur payload.
// CategoryID is composite ("<prefix>-<categoryToken>").
type PickupRecord struct {
	CategoryID string
	PickupDate time.Time
}

// CategoryToken returns the part of CategoryID after the first "-", or "" if there is none.
func (r PickupRecord) CategoryToken() string {
	for i := 0; i < len(r.CategoryID); i++ {
		if r.CategoryID[i] == '-' {
			return r.CategoryID[i+1:]
		}
	}
	return ""
}

// PickupResult maps a waste category name to its next (at most two) pickup dates, in payload order.
type PickupResult map[string][]time.Time

// --- CLI output types ---

// PickupOutput is the JSON shape printed for one profile.
type PickupOutput struct {
	Profile    string              `json:"profile"`
	FetchedAt  time.Time           `json:"fetched_at"`
	Stale      bool                `json:"stale,omitempty"`
	Categories []CategoryPickupOut `json:"categories"`
}

// CategoryPickupOut holds the next and the following pickup of one category.
type CategoryPickupOut struct {
	Category  string   `json:"category"`
	Next      string   `json:"next,omitempty"`
	Following string   `json:"following,omitempty"`
	Dates     []string `json:"dates"`
}

// ProfileOutput is the JSON shape printed by the profiles command.
type ProfileOutput struct {
	Name        string    `json:"name"`
	App         string    `json:"app"`
	Community   string    `json:"community,omitempty"`
	Street      string    `json:"street,omitempty"`
	HouseNumber string    `json:"house_number,omitempty"`
	Categories  []string  `json:"categories"`
	ClientID    string    `json:"client_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusOutput is the JSON shape printed by the status command.
type StatusOutput struct {
	Profiles []ProfileStatus `json:"profiles"`
}

// ProfileStatus summarizes the session and cached pickups of one profile.
type ProfileStatus struct {
	Name          string     `json:"name"`
	HasSession    bool       `json:"has_session"`
	SessionSince  *time.Time `json:"session_since,omitempty"`
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
	Failures      int        `json:"failures"`
	NextPickup    string     `json:"next_pickup,omitempty"`
	NextCategory  string     `json:"next_category,omitempty"`
	DaysUntilNext *int       `json:"days_until_next,omitempty"`
}
