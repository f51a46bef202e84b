package resolver

import (
	"fmt"
	"strings"

	"github.com/nicolasacchi/abfallcli/internal/config"
)

// Resolve finds a profile in the config.
// The query can be a profile name, client id, client id prefix, or the
// "<street> <house number>" address (all case-insensitive).
// An empty query selects the only profile when exactly one exists.
func Resolve(cfg *config.Config, query string) (*config.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		switch len(cfg.Profiles) {
		case 0:
			return nil, fmt.Errorf("no profiles configured; run 'abfallcli setup' first")
		case 1:
			return &cfg.Profiles[0], nil
		default:
			return nil, fmt.Errorf("%d profiles configured; name one", len(cfg.Profiles))
		}
	}

	var matches []*config.Profile
	for i := range cfg.Profiles {
		p := &cfg.Profiles[i]
		// A name match is unambiguous.
		if strings.EqualFold(p.Name, query) {
			return p, nil
		}
		if matchesProfile(p, query) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no profile found matching %q", query)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous identifier %q matches %d profiles; use the profile name", query, len(matches))
	}
}

// ResolveAll returns the profiles named by queries, or every profile when queries is empty.
func ResolveAll(cfg *config.Config, queries ...string) ([]config.Profile, error) {
	if len(queries) == 0 {
		return append([]config.Profile(nil), cfg.Profiles...), nil
	}
	out := make([]config.Profile, 0, len(queries))
	for _, q := range queries {
		p, err := Resolve(cfg, q)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func matchesProfile(p *config.Profile, query string) bool {
	q := strings.ToLower(query)
	id := strings.ToLower(p.Configuration.ClientID)

	// Client id match
	if id != "" && id == q {
		return true
	}

	// Client id prefix match (minimum 4 chars)
	if len(q) >= 4 && strings.HasPrefix(id, q) {
		return true
	}

	// Address match
	if addr := address(p); addr != "" && strings.EqualFold(addr, query) {
		return true
	}

	return false
}

// address renders "<street> <house number>" for a finalized profile.
func address(p *config.Profile) string {
	c := p.Configuration
	if c.Street == nil || c.HNr == nil {
		return ""
	}
	return c.Street.Name + " " + c.HNr.Name
}
