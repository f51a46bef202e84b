package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	DefaultConfigDir  = ".config/abfallcli"
	DefaultConfigFile = "config.json"
	FilePermissions   = os.FileMode(0600)
	DirPermissions    = os.FileMode(0700)

	envConfig = "ABFALLCLI_CONFIG"
)

// Location is where the config file lives. Dir also holds the pickup cache.
type Location struct {
	Dir  string
	File string
}

// Locate picks the config file: the --config flag, then ABFALLCLI_CONFIG, then
// ~/.config/abfallcli/config.json.
func Locate(override string) (Location, error) {
	for _, candidate := range []string{override, os.Getenv(envConfig)} {
		if candidate == "" {
			continue
		}
		expanded, err := ExpandTilde(candidate)
		if err != nil {
			return Location{}, err
		}
		return Location{Dir: filepath.Dir(expanded), File: expanded}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Location{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, DefaultConfigDir)
	return Location{Dir: dir, File: filepath.Join(dir, DefaultConfigFile)}, nil
}

// Load reads the config and applies the environment overrides. A missing file
// yields an empty Config.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config as stored, without environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save replaces the config file with cfg.
func Save(path string, cfg *Config) error {
	unlock, err := lock(path)
	if err != nil {
		return err
	}
	defer unlock()
	return write(path, cfg)
}

// Update re-reads the stored config under the file lock, applies fn and writes the
// result back, so two processes editing profiles do not overwrite each other.
// Nothing is written when fn fails.
func Update(path string, fn func(*Config) error) (*Config, error) {
	unlock, err := lock(path)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := fn(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := write(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// lock takes an exclusive flock on path+".lock", creating the directory first.
func lock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
		os.Remove(lockPath)
	}, nil
}

// write stores cfg through a temp file in the same directory and a rename.
func write(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "config-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", step, err)
	}

	if err := tmp.Chmod(FilePermissions); err != nil {
		return fail("setting file permissions", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming config file: %w", err)
	}
	return nil
}

// ExpandTilde replaces a leading "~" in a path with the user's home directory.
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

var durationOverrides = []struct {
	env   string
	field func(*Config) *Duration
}{
	{"ABFALLCLI_REFRESH_INTERVAL", func(c *Config) *Duration { return &c.RefreshInterval }},
	{"ABFALLCLI_REQUEST_TIMEOUT", func(c *Config) *Duration { return &c.RequestTimeout }},
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ABFALLCLI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	for _, o := range durationOverrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", o.env, err)
		}
		*o.field(cfg) = Duration(d)
	}
	return nil
}
