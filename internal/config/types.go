package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nicolasacchi/abfallcli/internal/api"
)

const (
	DefaultRefreshInterval = time.Hour
	DefaultRequestTimeout  = 30 * time.Second
)

// Config represents the top-level configuration stored at ~/.config/abfallcli/config.json.
type Config struct {
	BaseURL         string    `json:"base_url,omitempty"`
	RefreshInterval Duration  `json:"refresh_interval,omitempty"`
	RequestTimeout  Duration  `json:"request_timeout,omitempty"`
	AppsFile        string    `json:"apps_file,omitempty"` // YAML list of extra vendor apps
	Profiles        []Profile `json:"profiles"`
}

// Profile is a finalized registration at one address.
type Profile struct {
	Name          string            `json:"name"`
	CreatedAt     time.Time         `json:"created_at"`
	Configuration api.Configuration `json:"configuration"`
}

// Interval returns the refresh interval, falling back to the default.
func (c *Config) Interval() time.Duration {
	if c.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(c.RefreshInterval)
}

// Timeout returns the per-request timeout, falling back to the default.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeout)
}

// Duration is a time.Duration stored as a Go duration string ("1h30m").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"1h\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
