package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	BaseURL           = "https://app.abfallplus.de"
	requestTimeout    = 30 * time.Second
	defaultGraceDelay = 3 * time.Second
)

// Endpoint is a path relative to the vendor base URL.
type Endpoint string

const (
	EndpointLogin       Endpoint = "login"
	EndpointRenew       Endpoint = "version.xml?renew=1"
	EndpointData        Endpoint = "struktur.xml.zip"
	EndpointConfig      Endpoint = "config.xml"
	EndpointLoginStep   Endpoint = "login/"
	EndpointCommunities Endpoint = "assistent/kommune/"
	EndpointStreets     Endpoint = "assistent/strasse/"
	EndpointHouseNumber Endpoint = "assistent/hnr/"
	EndpointAbfallarten Endpoint = "assistent/abfallarten/"
	EndpointFinish      Endpoint = "assistent/finish/"
)

// finishFields are sent with the finish request. f_datenschutz (consent time) is added per call.
var finishFields = []Field{
	{"f_uhrzeit_tag", "86400|0"},
	{"f_uhrzeit_stunden", "57600"},
	{"f_uhrzeit_minuten", "2100"},
	{"f_anonym", "1"},
	{"f_ausgangspunkt", "start"},
	{"f_ueberspringen", "0"},
}

// Client talks to the Abfallplus app backend. It holds no selection state; every
// call works on the Configuration it is given and opens its own HTTP session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	graceDelay time.Duration
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// NewClient creates a new vendor client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    BaseURL,
		logger:     slog.Default(),
		graceDelay: defaultGraceDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets the client whose transport and timeout every session reuses.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithGraceDelay overrides the pause before the finish request.
func WithGraceDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.graceDelay = d }
}

// WithRateLimit paces every request of every session through l.
func WithRateLimit(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// Options posts the current selections to an assistant endpoint and returns the
// options it offers for the next step.
func (c *Client) Options(ctx context.Context, cfg *Configuration, ep Endpoint) ([]Option, error) {
	return c.request(ctx, cfg, ep)
}

// Finalize commits the selections to the vendor. It waits the grace delay first;
// the vendor rejects a finish that follows the last step too quickly.
func (c *Client) Finalize(ctx context.Context, cfg *Configuration) error {
	if c.graceDelay > 0 {
		t := time.NewTimer(c.graceDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	consent := Field{"f_datenschutz", c.now().Format("20060102150405")}
	extra := append(append([]Field{}, finishFields...), consent)
	_, err := c.request(ctx, cfg, EndpointFinish, extra...)
	return err
}

func (c *Client) request(ctx context.Context, cfg *Configuration, ep Endpoint, extra ...Field) ([]Option, error) {
	if _, err := c.EnsureAuthenticated(ctx, cfg); err != nil {
		return nil, err
	}

	s, err := c.openSession()
	if err != nil {
		return nil, err
	}
	defer s.close()

	c.logger.DebugContext(ctx, "assistant request", "endpoint", string(ep))
	res, err := s.post(ctx, ep, BuildPostData(cfg, extra...), cfg.Cookie.HTTPCookies())
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", ep, err)
	}

	if res.StatusCode() != http.StatusOK {
		c.logger.WarnContext(ctx, "assistant request failed", "endpoint", string(ep), "status", res.StatusCode())
		return nil, &APIError{StatusCode: res.StatusCode(), Endpoint: string(ep)}
	}

	options, err := parseOptions(c.logger, string(res.Body()))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Endpoint = string(ep)
			perr.StatusCode = res.StatusCode()
		}
		c.logger.ErrorContext(ctx, "unexpected assistant response", "endpoint", string(ep), "status", res.StatusCode(), "err", err)
		return nil, err
	}
	return options, nil
}
