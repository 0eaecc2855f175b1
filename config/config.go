// Package config loads the typed, YAML-backed description of one
// engine instance for the command-line front-end.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceSelector names how the front-end should locate the device: by
// USB bus/address, or by adopting an already-open file descriptor
// handed in by a supervising process.
type DeviceSelector struct {
	Bus            int `yaml:"bus,omitempty"`
	Address        int `yaml:"address,omitempty"`
	FileDescriptor int `yaml:"file_descriptor,omitempty"`
}

// FromFileDescriptor reports whether the selector names an
// already-open handle rather than a bus/address pair.
func (s DeviceSelector) FromFileDescriptor() bool {
	return s.FileDescriptor != 0
}

// Options mirrors engine.Option as named booleans, the way a human
// edits a YAML document rather than a bitmask.
type Options struct {
	P2OAudio bool `yaml:"p2o_audio"`
	O2PAudio bool `yaml:"o2p_audio"`
	P2OMIDI  bool `yaml:"p2o_midi"`
	O2PMIDI  bool `yaml:"o2p_midi"`
	DLL      bool `yaml:"dll"`
}

// Config is one engine instance's full configuration: which device to
// open, the transfer block size, which directions/features to enable,
// logging verbosity, and realtime priority.
type Config struct {
	Device            DeviceSelector `yaml:"device"`
	BlocksPerTransfer int            `yaml:"blocks_per_transfer"`
	Options           Options        `yaml:"options"`
	LogLevel          string         `yaml:"log_level"`
	Priority          int            `yaml:"priority"`
}

// Default returns the configuration the command-line front-end starts
// from before applying flag overrides.
func Default() Config {
	return Config{
		BlocksPerTransfer: 4,
		Options: Options{
			P2OAudio: true,
			O2PAudio: true,
			P2OMIDI:  true,
			O2PMIDI:  true,
			DLL:      true,
		},
		LogLevel: "info",
		Priority: 10,
	}
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders cfg back to YAML, primarily so round-trip tests and
// `owbridged --dump-config` can show the effective configuration.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
