package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as "25m", "1h30m" in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	str := strings.TrimSpace(string(text))
	if str == "" {
		return fmt.Errorf("invalid duration: empty value")
	}
	parsed, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", str, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: negative", str)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Minutes returns the duration in whole minutes.
func (d Duration) Minutes() int {
	return int(time.Duration(d) / time.Minute)
}

// wholeMinutes rejects values Minutes would truncate or round to zero.
func (d Duration) wholeMinutes() error {
	td := time.Duration(d)
	if td < time.Minute {
		return fmt.Errorf("%s is under one minute", td)
	}
	if td%time.Minute != 0 {
		return fmt.Errorf("%s is not a whole number of minutes", td)
	}
	return nil
}

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"

	BusSystem  = "system"
	BusSession = "session"
	BusNone    = "none"
)

type DaemonConfig struct {
	Store          string `toml:"store"`
	StatePath      string `toml:"state_path"`
	DatabasePath   string `toml:"database_path"`
	Bus            string `toml:"bus"`
	HTTPListen     string `toml:"http_listen"`
	HTTPUserHeader string `toml:"http_user_header"`
	PauseOnLock    bool   `toml:"pause_on_lock"`
}

type PomodoroConfig struct {
	DefaultTarget  Duration `toml:"default_target"`
	MinTarget      Duration `toml:"min_target"`
	MaxTarget      Duration `toml:"max_target"`
	ShortBreak     Duration `toml:"short_break"`
	LongBreak      Duration `toml:"long_break"`
	LongBreakEvery int      `toml:"long_break_every"`
}

type FlowtimeConfig struct {
	BreakRatio int `toml:"break_ratio"`
}

type PolicyConfig struct {
	MinDuration Duration `toml:"min_duration"`
}

type Config struct {
	Daemon   DaemonConfig   `toml:"daemon"`
	Pomodoro PomodoroConfig `toml:"pomodoro"`
	Flowtime FlowtimeConfig `toml:"flowtime"`
	Policy   PolicyConfig   `toml:"policy"`
}

// SetDefault fills every zero value with the built-in default.
func (c *Config) SetDefault() {
	if c.Daemon.Store == "" {
		c.Daemon.Store = StoreJSON
	}
	if c.Daemon.StatePath == "" {
		c.Daemon.StatePath = "/var/lib/focuswarden/state.json"
	}
	if c.Daemon.DatabasePath == "" {
		c.Daemon.DatabasePath = "/var/lib/focuswarden/sessions.db"
	}
	if c.Daemon.Bus == "" {
		c.Daemon.Bus = BusSystem
	}
	if c.Daemon.HTTPUserHeader == "" {
		c.Daemon.HTTPUserHeader = "X-Remote-User"
	}

	if c.Pomodoro.DefaultTarget == 0 {
		c.Pomodoro.DefaultTarget = Duration(25 * time.Minute)
	}
	if c.Pomodoro.MinTarget == 0 {
		c.Pomodoro.MinTarget = Duration(time.Minute)
	}
	if c.Pomodoro.MaxTarget == 0 {
		c.Pomodoro.MaxTarget = Duration(120 * time.Minute)
	}
	if c.Pomodoro.ShortBreak == 0 {
		c.Pomodoro.ShortBreak = Duration(5 * time.Minute)
	}
	if c.Pomodoro.LongBreak == 0 {
		c.Pomodoro.LongBreak = Duration(15 * time.Minute)
	}
	if c.Pomodoro.LongBreakEvery <= 0 {
		c.Pomodoro.LongBreakEvery = 4
	}

	if c.Flowtime.BreakRatio <= 0 {
		c.Flowtime.BreakRatio = 5
	}

	if c.Policy.MinDuration == 0 {
		c.Policy.MinDuration = Duration(time.Minute)
	}
}

// Validate rejects combinations SetDefault cannot repair.
func (c *Config) Validate() error {
	switch c.Daemon.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Daemon.Store)
	}
	switch c.Daemon.Bus {
	case BusSystem, BusSession, BusNone:
	default:
		return fmt.Errorf("unknown bus %q", c.Daemon.Bus)
	}
	for _, d := range []struct {
		key   string
		value Duration
	}{
		{"policy min_duration", c.Policy.MinDuration},
		{"pomodoro default_target", c.Pomodoro.DefaultTarget},
		{"pomodoro min_target", c.Pomodoro.MinTarget},
		{"pomodoro max_target", c.Pomodoro.MaxTarget},
		{"pomodoro short_break", c.Pomodoro.ShortBreak},
		{"pomodoro long_break", c.Pomodoro.LongBreak},
	} {
		if err := d.value.wholeMinutes(); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	if c.Pomodoro.MinTarget > c.Pomodoro.MaxTarget {
		return fmt.Errorf("pomodoro min_target %s exceeds max_target %s",
			time.Duration(c.Pomodoro.MinTarget), time.Duration(c.Pomodoro.MaxTarget))
	}
	if c.Pomodoro.DefaultTarget < c.Pomodoro.MinTarget || c.Pomodoro.DefaultTarget > c.Pomodoro.MaxTarget {
		return fmt.Errorf("pomodoro default_target %s outside [%s, %s]",
			time.Duration(c.Pomodoro.DefaultTarget),
			time.Duration(c.Pomodoro.MinTarget), time.Duration(c.Pomodoro.MaxTarget))
	}
	return nil
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefault()
	return c
}

// LoadConfigFromFile reads path. A missing file yields the defaults.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfigFromBytes(data)
}

func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.SetDefault()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
