package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// session is the HTTP state of one logical operation: a cookie jar and a resty
// client bound to the vendor base URL. Callers close it when the operation ends.
type session struct {
	http *resty.Client
	jar  http.CookieJar
	base *url.URL
	// owned is the transport created for this session only; nil when it is shared.
	owned *http.Transport
}

func (c *Client) openSession() (*session, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport, owned := sessionTransport(c.httpClient.Transport)
	hc := &http.Client{
		Transport: transport,
		Timeout:   c.httpClient.Timeout,
		Jar:       jar,
	}
	rc := resty.NewWithClient(hc)
	rc.SetBaseURL(c.baseURL)
	rc.SetLogger(restyLogger{c.logger})
	rc.SetHeaders(map[string]string{
		"User-Agent":   "Android",
		"Connection":   "Keep-Alive",
		"Content-Type": "application/x-www-form-urlencoded",
	})
	if c.limiter != nil {
		limiter := c.limiter
		rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &session{http: rc, jar: jar, base: base, owned: owned}, nil
}

// sessionTransport gives a session its own copy of rt so closing it leaves other
// sessions' connections alone. Round trippers that are not *http.Transport are shared.
func sessionTransport(rt http.RoundTripper) (http.RoundTripper, *http.Transport) {
	if rt == nil {
		rt = http.DefaultTransport
	}
	t, ok := rt.(*http.Transport)
	if !ok {
		return rt, nil
	}
	clone := t.Clone()
	return clone, clone
}

func (s *session) post(ctx context.Context, ep Endpoint, body Fields, cookies []*http.Cookie) (*resty.Response, error) {
	req := s.http.R().
		SetContext(ctx).
		SetBody(body.Encode())
	if len(cookies) > 0 {
		req.SetCookies(cookies)
	}
	return req.Post(string(ep))
}

// cookies returns what the jar holds for the base URL.
func (s *session) cookies() []SessionCookie {
	out := []SessionCookie{}
	for _, ck := range s.jar.Cookies(s.base) {
		out = append(out, SessionCookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func (s *session) close() {
	if s.owned != nil {
		s.owned.CloseIdleConnections()
	}
}

// EnsureAuthenticated obtains the vendor session cookie for cfg unless it already has one.
// A non-200 from the config endpoint is logged and leaves cfg.Cookie nil; the cookie is only
// committed after it was captured.
func (c *Client) EnsureAuthenticated(ctx context.Context, cfg *Configuration) (*Session, error) {
	if cfg.App == nil || cfg.App.AppID == "" {
		return nil, &ConfigurationError{Reason: "set app first"}
	}
	if cfg.Cookie != nil {
		return cfg.Cookie, nil
	}

	s, err := c.openSession()
	if err != nil {
		return nil, err
	}
	defer s.close()

	c.logger.DebugContext(ctx, "starting login", "app_id", cfg.App.AppID)
	payload := loginFields(cfg)

	res, err := s.post(ctx, EndpointConfig, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching session cookie: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		c.logger.WarnContext(ctx, "cookie fetching failed", "status", res.StatusCode())
		return nil, nil
	}
	cfg.Cookie = &Session{Cookies: s.cookies(), CapturedAt: c.now()}

	res, err = s.post(ctx, EndpointLoginStep, payload, nil)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "login failed", "err", err)
	case res.StatusCode() != http.StatusOK:
		c.logger.WarnContext(ctx, "login failed", "status", res.StatusCode())
	default:
		c.logger.DebugContext(ctx, "login successful")
	}
	return cfg.Cookie, nil
}

// restyLogger routes resty's own messages into slog.
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
