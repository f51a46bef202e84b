package resolver

import (
	"testing"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
)

func testProfile(name, clientID, street, hnr string) config.Profile {
	return config.Profile{
		Name: name,
		Configuration: api.Configuration{
			ClientID: clientID,
			Street:   &api.Option{Name: street, Data: "s-" + street},
			HNr:      &api.Option{Name: hnr, Data: "h-" + hnr},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Profiles: []config.Profile{
			testProfile("home", "07cc67f4-1234-11f1-9abc-def012345678", "Hauptstr.", "12"),
			testProfile("office", "08dd78e5-2345-11f1-abcd-ef0123456789", "Bahnhofstr.", "3a"),
			testProfile("garage", "07cc99aa-3456-11f1-abcd-ef0123456789", "Hauptstr.", "14"),
		},
	}
}

func TestResolve_ByName(t *testing.T) {
	p, err := Resolve(testConfig(), "office")
	if err != nil {
		t.Fatalf("Resolve by name: %v", err)
	}
	if p.Configuration.HNr.Name != "3a" {
		t.Errorf("HNr = %q, want 3a", p.Configuration.HNr.Name)
	}
}

func TestResolve_ByNameCaseInsensitive(t *testing.T) {
	p, err := Resolve(testConfig(), "HOME")
	if err != nil {
		t.Fatalf("Resolve by name (case-insensitive): %v", err)
	}
	if p.Name != "home" {
		t.Errorf("Name = %q, want home", p.Name)
	}
}

func TestResolve_ByClientID(t *testing.T) {
	p, err := Resolve(testConfig(), "08dd78e5-2345-11f1-abcd-ef0123456789")
	if err != nil {
		t.Fatalf("Resolve by client id: %v", err)
	}
	if p.Name != "office" {
		t.Errorf("Name = %q, want office", p.Name)
	}
}

func TestResolve_ByClientIDPrefix(t *testing.T) {
	p, err := Resolve(testConfig(), "07cc67")
	if err != nil {
		t.Fatalf("Resolve by client id prefix: %v", err)
	}
	if p.Name != "home" {
		t.Errorf("Name = %q, want home", p.Name)
	}
}

func TestResolve_AmbiguousPrefix(t *testing.T) {
	_, err := Resolve(testConfig(), "07cc")
	if err == nil {
		t.Fatal("expected error for ambiguous prefix")
	}
}

func TestResolve_ByAddress(t *testing.T) {
	p, err := Resolve(testConfig(), "hauptstr. 14")
	if err != nil {
		t.Fatalf("Resolve by address: %v", err)
	}
	if p.Name != "garage" {
		t.Errorf("Name = %q, want garage", p.Name)
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve(testConfig(), "nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent profile")
	}
}

func TestResolve_Empty(t *testing.T) {
	_, err := Resolve(testConfig(), "")
	if err == nil {
		t.Fatal("expected error for empty query with several profiles")
	}

	single := &config.Config{Profiles: []config.Profile{testProfile("home", "x", "A", "1")}}
	p, err := Resolve(single, " ")
	if err != nil {
		t.Fatalf("Resolve single: %v", err)
	}
	if p.Name != "home" {
		t.Errorf("Name = %q, want home", p.Name)
	}

	if _, err := Resolve(&config.Config{}, ""); err == nil {
		t.Fatal("expected error without profiles")
	}
}

func TestResolveAll(t *testing.T) {
	all, err := ResolveAll(testConfig())
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ResolveAll = %d profiles, want 3", len(all))
	}

	some, err := ResolveAll(testConfig(), "garage", "home")
	if err != nil {
		t.Fatalf("ResolveAll subset: %v", err)
	}
	if len(some) != 2 || some[0].Name != "garage" || some[1].Name != "home" {
		t.Errorf("ResolveAll subset = %v", some)
	}

	if _, err := ResolveAll(testConfig(), "home", "nope"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestResolveAll_Empty(t *testing.T) {
	results, err := ResolveAll(&config.Config{})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("ResolveAll on empty config = %d, want 0", len(results))
	}
}
