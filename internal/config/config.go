// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName       = "rakund"
	ConfigType    = "yaml"
	DefaultConfig = `# rakund sampler engine configuration

# Instruments root: a directory of instrument folders (instrument.json
# + samples). Defaults to rakund/instruments under the platform config
# directory.
instruments_dir: ""

# Output audio device index (-1 for default device). Validated and
# logged only; playback always opens the default output device.
device_index: -1

# Enable debug-level structured logging
debug: false
`
)

// Settings holds all application configuration.
type Settings struct {
	InstrumentsDir string `mapstructure:"instruments_dir"`
	DeviceIndex    int    `mapstructure:"device_index"`
	Debug          bool   `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/rakund/
func Init() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	defaultInstrumentsDir := filepath.Join(configDir, AppName, "instruments")

	viper.SetDefault("instruments_dir", defaultInstrumentsDir)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings, resolving an empty
// instruments_dir to the default under the platform config directory.
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if s.InstrumentsDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			configDir = filepath.Join(os.Getenv("HOME"), ".config")
		}
		s.InstrumentsDir = filepath.Join(configDir, AppName, "instruments")
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges.
func (s *Settings) Validate() error {
	var errs []error

	if s.InstrumentsDir == "" {
		errs = append(errs, errors.New("instruments_dir must not be empty"))
	}
	if s.DeviceIndex < -1 {
		errs = append(errs, fmt.Errorf("device_index must be -1 or a non-negative index, got %d", s.DeviceIndex))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
