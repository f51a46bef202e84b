package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// recordedRequest is one call the fake vendor received.
type recordedRequest struct {
	Path   string
	Query  string
	Form   url.Values
	Body   string
	Cookie string
	Agent  string
}

// fakeVendor serves canned responses per path and records every request.
type fakeVendor struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeVendor() *fakeVendor {
	return &fakeVendor{routes: map[string]http.HandlerFunc{}}
}

func (f *fakeVendor) handle(path string, h http.HandlerFunc) {
	f.routes[path] = h
}

func (f *fakeVendor) respond(path string, status int, body string) {
	f.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func (f *fakeVendor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Form:   form,
		Body:   string(raw),
		Cookie: r.Header.Get("Cookie"),
		Agent:  r.Header.Get("User-Agent"),
	})
	f.mu.Unlock()

	h, ok := f.routes[strings.TrimPrefix(r.URL.Path, "/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeVendor) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeVendor) paths() []string {
	var out []string
	for _, r := range f.calls() {
		out = append(out, strings.TrimPrefix(r.Path, "/"))
	}
	return out
}

// withSessionCookie answers the config endpoint with a session cookie.
func (f *fakeVendor) withSessionCookie() {
	f.handle("config.xml", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "sess-1", Path: "/"})
		io.WriteString(w, "<config/>")
	})
	f.respond("login/", http.StatusOK, "OK")
}

func testClient(t *testing.T, vendor http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(vendor)
	t.Cleanup(srv.Close)

	return NewClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithGraceDelay(0),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func zawdw() *App {
	return &App{
		Name:         "ZAW-DW",
		AppID:        "de.k4systems.zawdw",
		LandkreisID:  "633|0|AWG Donau-Wald",
		BundeslandID: "247",
	}
}

func mustDocument(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parsing html: %v", err)
	}
	return doc
}
