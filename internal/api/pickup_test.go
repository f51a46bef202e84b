package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalizedConfig() Configuration {
	return Configuration{
		ClientID:    "client-1",
		App:         zawdw(),
		Community:   &Option{Name: "Musterstadt", Data: "100"},
		Street:      &Option{Name: "Hauptstr.", Data: "200"},
		HNr:         &Option{Name: "12", Data: "300"},
		Abfallarten: []Option{{Name: "Restmüll", Data: "7"}, {Name: "Biomüll", Data: "9"}},
	}
}

func pickupVendor(status int, payload []byte) *fakeVendor {
	vendor := newFakeVendor()
	vendor.withSessionCookie()
	vendor.respond("login", http.StatusOK, "OK")
	vendor.respond("version.xml", http.StatusOK, "<version/>")
	vendor.handle("struktur.xml.zip", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(payload)
	})
	return vendor
}

func TestFetchPickupTimes(t *testing.T) {
	payload := plistDates(
		dateEntry("633-7", "2026-10-21T06:00:00") +
			dateEntry("633-9", "2026-10-22") +
			dateEntry("633-7", "2026-11-04") +
			dateEntry("633-7", "2026-11-18") +
			dateEntry("633-77", "2026-10-20"))
	vendor := pickupVendor(http.StatusOK, payload)
	client := testClient(t, vendor)

	cfg := finalizedConfig()
	got, err := client.FetchPickupTimes(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, PickupResult{
		"Restmüll": {day(2026, 10, 21), day(2026, 11, 4)},
		"Biomüll":  {day(2026, 10, 22)},
	}, got)
	assert.Nil(t, cfg.Cookie, "caller configuration must not be modified")

	assert.Equal(t, []string{"config.xml", "login/", "login", "version.xml", "struktur.xml.zip"}, vendor.paths())
	calls := vendor.calls()
	assert.Equal(t, "renew=1", calls[3].Query)
	assert.Contains(t, calls[2].Cookie, "PHPSESSID=sess-1")
	assert.Contains(t, calls[3].Cookie, "PHPSESSID=sess-1")
	assert.Empty(t, calls[4].Cookie)
	for _, c := range calls[2:] {
		assert.Equal(t, "client=client-1&app_id=de.k4systems.zawdw", c.Body)
	}
}

func TestFetchPickupTimes_ReusesCookie(t *testing.T) {
	vendor := pickupVendor(http.StatusOK, plistDates(dateEntry("633-7", "2026-10-21")))
	client := testClient(t, vendor)

	cfg := finalizedConfig()
	cfg.Cookie = &Session{Cookies: []SessionCookie{{Name: "PHPSESSID", Value: "kept"}}}
	got, err := client.FetchPickupTimes(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, got["Restmüll"], 1)
	assert.Empty(t, got["Biomüll"])

	assert.Equal(t, []string{"login", "version.xml", "struktur.xml.zip"}, vendor.paths())
	assert.Contains(t, vendor.calls()[0].Cookie, "PHPSESSID=kept")
}

func TestFetchPickupTimes_DataUnavailable(t *testing.T) {
	vendor := pickupVendor(http.StatusServiceUnavailable, nil)
	client := testClient(t, vendor)

	got, err := client.FetchPickupTimes(context.Background(), finalizedConfig())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFetchPickupTimes_MalformedPayload(t *testing.T) {
	vendor := pickupVendor(http.StatusOK, []byte("<html>Wartung</html>"))
	client := testClient(t, vendor)

	_, err := client.FetchPickupTimes(context.Background(), finalizedConfig())
	var perr *PayloadError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "struktur.xml.zip", perr.Endpoint)
	assert.Equal(t, http.StatusOK, perr.StatusCode)
}

func TestFetchPickupTimes_RequiresApp(t *testing.T) {
	client := testClient(t, newFakeVendor())
	cfg := finalizedConfig()
	cfg.App = nil

	_, err := client.FetchPickupTimes(context.Background(), cfg)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestExtractPickups(t *testing.T) {
	records := []PickupRecord{
		{CategoryID: "633-7", PickupDate: time.Date(2026, 10, 21, 6, 30, 0, 0, time.UTC)},
		{CategoryID: "633-7", PickupDate: day(2026, 10, 28)},
		{CategoryID: "633-7", PickupDate: day(2026, 11, 4)},
		{CategoryID: "7", PickupDate: day(2026, 10, 1)},
	}
	got := ExtractPickups(records, []Option{{Name: "Restmüll", Data: "7"}, {Name: "Papier", Data: "12"}})

	assert.Equal(t, []time.Time{day(2026, 10, 21), day(2026, 10, 28)}, got["Restmüll"])
	require.Contains(t, got, "Papier")
	assert.Empty(t, got["Papier"])
}

func TestExtractPickups_NoCategories(t *testing.T) {
	got := ExtractPickups([]PickupRecord{{CategoryID: "633-7", PickupDate: day(2026, 10, 21)}}, nil)
	assert.Empty(t, got)
}
