// Package config loads and persists dnaevolve's on-disk settings:
// defaults for the reservoir-chunking size, Vitter's Algorithm D
// dispatch thresholds, the worker count, and the reference/run-store
// paths. The evolve command falls back to workers and run_store_path when
// the matching flag is omitted, and to chunk_size when neither the flag
// nor the model file sets one; it does not read reference_path,
// vitter_n2n or vitter_alpha.
//
// Reads and writes ~/.dnaevolve.yaml through viper's global instance
// and (de)serializes it with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name, stored in the user's home
// directory.
const FileName = ".dnaevolve.yaml"

// Defaults holds the settings applied when no config file, and no
// explicit CLI flag, supplies a value.
type Defaults struct {
	ChunkSize     int     `mapstructure:"chunk_size" yaml:"chunk_size"`
	VitterN2N     float64 `mapstructure:"vitter_n2n" yaml:"vitter_n2n"`
	VitterAlpha   float64 `mapstructure:"vitter_alpha" yaml:"vitter_alpha"`
	ReferencePath string  `mapstructure:"reference_path" yaml:"reference_path"`
	RunStorePath  string  `mapstructure:"run_store_path" yaml:"run_store_path"`
	Workers       int     `mapstructure:"workers" yaml:"workers"`
}

// DefaultValues returns the built-in defaults used before any config
// file or flag is applied.
func DefaultValues() Defaults {
	return Defaults{
		ChunkSize:    1000,
		VitterN2N:    50.0,
		VitterAlpha:  0.8,
		RunStorePath: "",
		Workers:      4,
	}
}

// Path returns the config file path, preferring viper's currently-used
// file (if any config has been loaded already) and falling back to
// ~/.dnaevolve.yaml.
func Path() (string, error) {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot determine home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads the config file (if present) into viper's global instance
// and decodes it into Defaults, falling back to DefaultValues for any
// field the file and environment leave unset.
func Load() (Defaults, error) {
	d := DefaultValues()

	viper.SetConfigName(".dnaevolve")
	viper.SetConfigType("yaml")
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetDefault("chunk_size", d.ChunkSize)
	viper.SetDefault("vitter_n2n", d.VitterN2N)
	viper.SetDefault("vitter_alpha", d.VitterAlpha)
	viper.SetDefault("reference_path", d.ReferencePath)
	viper.SetDefault("run_store_path", d.RunStorePath)
	viper.SetDefault("workers", d.Workers)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Defaults{}, fmt.Errorf("config: read config: %w", err)
		}
	}

	var out Defaults
	if err := viper.Unmarshal(&out); err != nil {
		return Defaults{}, fmt.Errorf("config: unmarshal config: %w", err)
	}
	return out, nil
}

// Show renders all currently-set configuration as YAML.
func Show() (string, error) {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("config: marshal config: %w", err)
	}
	return string(out), nil
}

// Set assigns key=value in viper's global instance and persists it to
// the config file, creating the file if it doesn't exist yet.
func Set(key, value string) (string, error) {
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	cfgFile, err := Path()
	if err != nil {
		return "", err
	}
	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return "", fmt.Errorf("config: write config: %w", err)
	}
	return cfgFile, nil
}

// Get returns the currently-set value for key, or an error if unset.
func Get(key string) (any, error) {
	val := viper.Get(key)
	if val == nil {
		return nil, fmt.Errorf("config: key %q is not set", key)
	}
	return val, nil
}
