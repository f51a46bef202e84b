package cmd

import (
	"reflect"
	"testing"
	"time"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func homeProfile() config.Profile {
	return config.Profile{
		Name: "home",
		Configuration: api.Configuration{
			ClientID:    "client-1",
			Cookie:      &api.Session{CapturedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)},
			Street:      &api.Option{Name: "Hauptstr.", Data: "200"},
			HNr:         &api.Option{Name: "12", Data: "300"},
			Abfallarten: []api.Option{{Name: "Restmüll", Data: "7"}, {Name: "Biomüll", Data: "9"}, {Name: "Papier", Data: "12"}},
		},
	}
}

func homeEntry() pickupcache.Entry {
	return pickupcache.Entry{
		Profile:   "home",
		FetchedAt: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		Pickups: api.PickupResult{
			"Restmüll": {day(10, 21), day(11, 4)},
			"Biomüll":  {day(10, 27)},
			"Papier":   {},
		},
	}
}

func TestPickupOutput(t *testing.T) {
	out := pickupOutput(homeProfile(), homeEntry(), time.Time{})

	if out.Profile != "home" || out.Stale {
		t.Errorf("header = %+v", out)
	}
	if len(out.Categories) != 3 {
		t.Fatalf("Categories = %d, want 3", len(out.Categories))
	}

	rest := out.Categories[0]
	want := api.CategoryPickupOut{
		Category:  "Restmüll",
		Next:      "Mi. 21. Okt.",
		Following: "Mi. 4. Nov.",
		Dates:     []string{"2026-10-21", "2026-11-04"},
	}
	if !reflect.DeepEqual(rest, want) {
		t.Errorf("Restmüll = %+v, want %+v", rest, want)
	}
	if out.Categories[1].Following != "" {
		t.Errorf("Biomüll has only one date, got following %q", out.Categories[1].Following)
	}
	if out.Categories[2].Next != "" || len(out.Categories[2].Dates) != 0 {
		t.Errorf("Papier should be empty, got %+v", out.Categories[2])
	}
}

func TestPickupOutput_Until(t *testing.T) {
	out := pickupOutput(homeProfile(), homeEntry(), day(10, 25))

	if len(out.Categories) != 1 || out.Categories[0].Category != "Restmüll" {
		t.Errorf("Categories = %+v, want only Restmüll", out.Categories)
	}
}

func TestPickupOutput_Stale(t *testing.T) {
	entry := homeEntry()
	entry.Failures = 2
	if !pickupOutput(homeProfile(), entry, time.Time{}).Stale {
		t.Error("expected stale output")
	}
}

func TestPickupTable(t *testing.T) {
	out := pickupOutput(homeProfile(), homeEntry(), time.Time{})
	header, rows := pickupTable([]api.PickupOutput{out}, time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC))

	if len(header) != 5 {
		t.Fatalf("header = %v", header)
	}
	want := [][]string{
		{"home", "Restmüll", "Mi. 21. Okt.", "morgen", "Mi. 4. Nov."},
		{"home", "Biomüll", "Di. 27. Okt.", "in 7 Tagen", "-"},
		{"home", "Papier", "-", "-", "-"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestProfileStatus(t *testing.T) {
	now := time.Date(2026, 10, 22, 9, 0, 0, 0, time.UTC)
	st := profileStatus(homeProfile(), homeEntry(), now)

	if !st.HasSession || st.SessionSince == nil {
		t.Errorf("session = %v %v", st.HasSession, st.SessionSince)
	}
	// Restmüll on 21 Oct is past; Biomüll on 27 Oct is next.
	if st.NextCategory != "Biomüll" || st.NextPickup != "Di. 27. Okt." {
		t.Errorf("next = %q %q", st.NextCategory, st.NextPickup)
	}
	if st.DaysUntilNext == nil || *st.DaysUntilNext != 5 {
		t.Errorf("days = %v, want 5", st.DaysUntilNext)
	}
}

func TestProfileStatus_NoCache(t *testing.T) {
	st := profileStatus(homeProfile(), pickupcache.Entry{}, time.Now())
	if st.FetchedAt != nil || st.NextPickup != "" || st.DaysUntilNext != nil {
		t.Errorf("status = %+v, want empty pickup fields", st)
	}
}

func TestSelectionsBefore(t *testing.T) {
	full := homeProfile().Configuration
	full.Community = &api.Option{Name: "Musterstadt", Data: "100"}

	street := selectionsBefore(full, "street")
	if street.Community == nil || street.Street != nil || street.HNr != nil || len(street.Abfallarten) != 0 {
		t.Errorf("street step selections = %+v", street)
	}
	if street.Cookie == nil {
		t.Error("session should be kept")
	}

	cats := selectionsBefore(full, "abfallarten")
	if cats.HNr == nil || len(cats.Abfallarten) != 0 {
		t.Errorf("abfallarten step selections = %+v", cats)
	}
	if len(full.Abfallarten) != 3 {
		t.Error("input configuration was modified")
	}
}

func TestDefaultProfileName(t *testing.T) {
	cfg := homeProfile().Configuration
	cfg.Street = &api.Option{Name: "Am Bach"}
	if got := defaultProfileName(cfg); got != "am-bach-12" {
		t.Errorf("defaultProfileName = %q, want am-bach-12", got)
	}

	cfg.Street = nil
	cfg.ClientID = "b3c1e0a4-1f2e-11f1-9c1a-0242ac120002"
	if got := defaultProfileName(cfg); got != "b3c1e0a4" {
		t.Errorf("defaultProfileName = %q, want b3c1e0a4", got)
	}
}

func TestSuggest(t *testing.T) {
	nf := &api.SelectionNotFoundError{Selection: "haupt", Available: []string{"Hauptstr.", "Bahnhofstr."}}
	if got := suggest(nf); got != ". Did you mean: Hauptstr.?" {
		t.Errorf("suggest = %q", got)
	}
	nf.Selection = "xyz"
	if got := suggest(nf); got != "" {
		t.Errorf("suggest = %q, want empty", got)
	}
}
