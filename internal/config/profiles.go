package config

import (
	"fmt"
	"strings"
)

// index returns the position of the profile called name, ignoring case, or -1.
func (cfg *Config) index(name string) int {
	for i, p := range cfg.Profiles {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func notFound(name string) error {
	return fmt.Errorf("profile %q not found", name)
}

// AddProfile appends p. Names are unique regardless of case.
func (cfg *Config) AddProfile(p Profile) error {
	if cfg.index(p.Name) >= 0 {
		return fmt.Errorf("profile %q already exists", p.Name)
	}
	cfg.Profiles = append(cfg.Profiles, p)
	return nil
}

func (cfg *Config) UpdateProfile(p Profile) error {
	i := cfg.index(p.Name)
	if i < 0 {
		return notFound(p.Name)
	}
	cfg.Profiles[i] = p
	return nil
}

func (cfg *Config) RemoveProfile(name string) error {
	i := cfg.index(name)
	if i < 0 {
		return notFound(name)
	}
	cfg.Profiles = append(cfg.Profiles[:i], cfg.Profiles[i+1:]...)
	return nil
}

// FindProfile returns the stored profile, not a copy.
func (cfg *Config) FindProfile(name string) (*Profile, error) {
	i := cfg.index(name)
	if i < 0 {
		return nil, notFound(name)
	}
	return &cfg.Profiles[i], nil
}

// validate rejects profiles the fetcher could never use: unnamed or duplicate
// ones and those without an app.
func (cfg *Config) validate() error {
	seen := make(map[string]bool, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("profile %d has no name", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("profile %q appears twice", p.Name)
		}
		seen[key] = true
		if p.Configuration.App == nil {
			return fmt.Errorf("profile %q has no app", p.Name)
		}
	}
	return nil
}
