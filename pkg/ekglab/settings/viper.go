//go:build !js || !wasm

package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Bind registers every settings key on v with its default value and enables
// EKGLAB_ environment overrides, e.g. EKGLAB_FREQMIN.
func Bind(v *viper.Viper) error {
	raw, err := json.Marshal(Defaults())
	if err != nil {
		return err
	}
	var defaults map[string]any
	if err := json.Unmarshal(raw, &defaults); err != nil {
		return err
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return nil
}

// FromViper unmarshals and validates the settings held by v.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads a YAML or JSON settings file, applies environment overrides and
// validates the result. An empty path yields the defaults plus overrides.
func Load(path string) (Settings, error) {
	v := viper.New()
	if err := Bind(v); err != nil {
		return Settings{}, err
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	return FromViper(v)
}
