package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const prefsFileName = "timer.yaml"

// Prefs are the fwctl timer defaults kept per desktop user.
type Prefs struct {
	Strategy      string `yaml:"strategy"`
	TargetMinutes int    `yaml:"target_minutes"`
	BreakRatio    int    `yaml:"break_ratio"`
	Goal          string `yaml:"goal"`
	Bell          bool   `yaml:"bell"`
	DesktopNotify bool   `yaml:"desktop_notify"`
}

func DefaultPrefs() Prefs {
	return Prefs{
		Strategy:      "pomodoro",
		TargetMinutes: 25,
		BreakRatio:    5,
		Bell:          true,
		DesktopNotify: true,
	}
}

// LoadPrefs reads the preferences file. A missing file yields the defaults.
func LoadPrefs(appName string) (Prefs, error) {
	prefs := DefaultPrefs()
	path, err := prefsPath(appName)
	if err != nil {
		return prefs, err
	}
	return loadPrefsFile(path, prefs)
}

// SavePrefs writes the preferences file, creating its directory.
func SavePrefs(appName string, prefs Prefs) error {
	path, err := prefsPath(appName)
	if err != nil {
		return err
	}
	return savePrefsFile(path, prefs)
}

func loadPrefsFile(path string, prefs Prefs) (Prefs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read prefs file: %w", err)
	}

	// keys absent from the file keep their defaults
	fileData := prefs
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return prefs, fmt.Errorf("parse prefs yaml: %w", err)
	}

	if fileData.Strategy != "" {
		prefs.Strategy = fileData.Strategy
	}
	if fileData.TargetMinutes > 0 {
		prefs.TargetMinutes = fileData.TargetMinutes
	}
	if fileData.BreakRatio > 0 {
		prefs.BreakRatio = fileData.BreakRatio
	}
	prefs.Goal = fileData.Goal
	prefs.Bell = fileData.Bell
	prefs.DesktopNotify = fileData.DesktopNotify
	return prefs, nil
}

func savePrefsFile(path string, prefs Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal prefs yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	return nil
}

func prefsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, prefsFileName), nil
}
