package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationUnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Duration
		expectError bool
	}{
		{"Minutes", "25m", 25 * time.Minute, false},
		{"Hours and minutes", "1h30m", 90 * time.Minute, false},
		{"Padded", " 5m ", 5 * time.Minute, false},
		{"Negative", "-5m", 0, true},
		{"Garbage", "soon", 0, true},
		{"Empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, time.Duration(d))
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	config := Config{
		Pomodoro: PomodoroConfig{
			DefaultTarget: Duration(50 * time.Minute),
		},
	}

	config.SetDefault()

	assert.Equal(t, StoreJSON, config.Daemon.Store)
	assert.Equal(t, BusSystem, config.Daemon.Bus)
	assert.Equal(t, "X-Remote-User", config.Daemon.HTTPUserHeader)
	assert.Equal(t, 50, config.Pomodoro.DefaultTarget.Minutes())
	assert.Equal(t, 1, config.Pomodoro.MinTarget.Minutes())
	assert.Equal(t, 120, config.Pomodoro.MaxTarget.Minutes())
	assert.Equal(t, 5, config.Pomodoro.ShortBreak.Minutes())
	assert.Equal(t, 15, config.Pomodoro.LongBreak.Minutes())
	assert.Equal(t, 4, config.Pomodoro.LongBreakEvery)
	assert.Equal(t, 5, config.Flowtime.BreakRatio)
	assert.Equal(t, 1, config.Policy.MinDuration.Minutes())
	assert.NoError(t, config.Validate())
}

func TestLoadConfigFromBytes(t *testing.T) {
	tomlData := `
[daemon]
store = "sqlite"
database_path = "/tmp/fw.db"
bus = "session"
http_listen = "127.0.0.1:8420"
pause_on_lock = true

[pomodoro]
default_target = "30m"
long_break = "20m"
long_break_every = 3

[flowtime]
break_ratio = 4
`

	config, err := LoadConfigFromBytes([]byte(tomlData))
	assert.NoError(t, err)

	assert.Equal(t, StoreSQLite, config.Daemon.Store)
	assert.Equal(t, "/tmp/fw.db", config.Daemon.DatabasePath)
	assert.Equal(t, BusSession, config.Daemon.Bus)
	assert.Equal(t, "127.0.0.1:8420", config.Daemon.HTTPListen)
	assert.True(t, config.Daemon.PauseOnLock)
	assert.Equal(t, 30, config.Pomodoro.DefaultTarget.Minutes())
	assert.Equal(t, 20, config.Pomodoro.LongBreak.Minutes())
	assert.Equal(t, 5, config.Pomodoro.ShortBreak.Minutes())
	assert.Equal(t, 3, config.Pomodoro.LongBreakEvery)
	assert.Equal(t, 4, config.Flowtime.BreakRatio)
}

func TestLoadConfigFromBytesRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown store", "[daemon]\nstore = \"redis\"\n"},
		{"unknown bus", "[daemon]\nbus = \"carrier-pigeon\"\n"},
		{"unknown key", "[daemon]\nlisten = \":80\"\n"},
		{"default above max", "[pomodoro]\ndefault_target = \"3h\"\n"},
		{"bad duration", "[policy]\nmin_duration = \"later\"\n"},
		{"sub-minute min_duration", "[policy]\nmin_duration = \"30s\"\n"},
		{"sub-minute min_target", "[pomodoro]\nmin_target = \"30s\"\n"},
		{"fractional short_break", "[pomodoro]\nshort_break = \"90s\"\n"},
		{"fractional default_target", "[pomodoro]\ndefault_target = \"25m30s\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromBytes([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte("[pomodoro]\nshort_break = \"7m\"\n"), 0644)
	assert.NoError(t, err)

	config, err := LoadConfigFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 7, config.Pomodoro.ShortBreak.Minutes())

	missing, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NoError(t, err)
	assert.Equal(t, 25, missing.Pomodoro.DefaultTarget.Minutes())
}

func TestLoadConfigSubMinuteDurationsNeverReachZero(t *testing.T) {
	_, err := LoadConfigFromBytes([]byte("[policy]\nmin_duration = \"30s\"\n[pomodoro]\nmin_target = \"30s\"\n"))
	assert.ErrorContains(t, err, "under one minute")

	config, err := LoadConfigFromBytes([]byte("[policy]\nmin_duration = \"2m\"\n[pomodoro]\nmin_target = \"1m\"\n"))
	assert.NoError(t, err)
	assert.Equal(t, 2, config.Policy.MinDuration.Minutes())
	assert.Equal(t, 1, config.Pomodoro.MinTarget.Minutes())
}
