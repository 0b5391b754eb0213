// Package config loads the immutable installer configuration.
//
// Values are layered: embedded defaults, then an optional TOML file, then
// NIXZFS_* environment variables. The resulting Config is built once at
// startup and passed by value to every stage; nothing here is mutated
// afterwards.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Config holds every tunable of the install pipeline
type Config struct {
	Pool     PoolConfig    `koanf:"pool"`
	Boot     BootConfig    `koanf:"boot"`
	Datasets DatasetConfig `koanf:"datasets"`
	Mount    MountConfig   `koanf:"mount"`
	Paths    PathsConfig   `koanf:"paths"`
	Exec     ExecConfig    `koanf:"exec"`
}

// PoolConfig describes the storage pool created over the data partition
type PoolConfig struct {
	Name        string `koanf:"name"`
	Ashift      int    `koanf:"ashift"`
	Compression string `koanf:"compression"`
}

// BootConfig describes the EFI boot partition window and filesystem label
type BootConfig struct {
	Label string `koanf:"label"`
	Start string `koanf:"start"`
	End   string `koanf:"end"`
}

// DatasetConfig holds the property values applied to the persistent datasets
type DatasetConfig struct {
	Encryption   string `koanf:"encryption"`
	Keyformat    string `koanf:"keyformat"`
	AutoSnapshot bool   `koanf:"autosnapshot"`
}

// MountConfig holds the target mount root
type MountConfig struct {
	Root string `koanf:"root"`
}

// PathsConfig holds host paths consumed or produced by the pipeline.
// StateDir and LiveDir are relative to the mount root.
type PathsConfig struct {
	MachineID string `koanf:"machineid"`
	StateDir  string `koanf:"statedir"`
	LiveDir   string `koanf:"livedir"`
}

// ExecConfig holds command-execution settings
type ExecConfig struct {
	Timeout string `koanf:"timeout"`
}

// Load builds the configuration from embedded defaults, the optional TOML
// file at path, and NIXZFS_* environment variables, in that order.
// An empty path skips the file layer; a non-empty path must exist.
func Load(path string) (Config, error) {
	var cfg Config

	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return cfg, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
		}
	}

	err := k.Load(env.Provider("NIXZFS_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "NIXZFS_")), "_", ".")
	}), nil)
	if err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if _, err := time.ParseDuration(cfg.Exec.Timeout); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigParse, "exec.timeout %q is not a duration", cfg.Exec.Timeout)
	}

	return cfg, nil
}

// CommandTimeout returns the parsed per-command timeout.
// Load has already validated the value; the fallback only guards a
// hand-constructed Config.
func (c Config) CommandTimeout() time.Duration {
	d, err := time.ParseDuration(c.Exec.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// RootDataset returns the ephemeral root dataset name
func (c Config) RootDataset() string {
	return c.Pool.Name + "/ephemeral/root"
}

// NixDataset returns the nix store dataset name
func (c Config) NixDataset() string {
	return c.Pool.Name + "/ephemeral/nix"
}

// HomeDataset returns the persistent home dataset name
func (c Config) HomeDataset() string {
	return c.Pool.Name + "/persistent/home"
}

// StateDataset returns the persistent state dataset name
func (c Config) StateDataset() string {
	return c.Pool.Name + "/persistent/state"
}

// BlankSnapshot returns the snapshot the root dataset is rolled back to on
// every boot
func (c Config) BlankSnapshot() string {
	return c.RootDataset() + "@blank"
}

// StateNixosDir returns the absolute persisted configuration directory,
// e.g. /mnt/state/etc/nixos
func (c Config) StateNixosDir() string {
	return filepath.Join(c.Mount.Root, c.Paths.StateDir)
}

// LiveNixosDir returns the absolute live configuration directory on the
// target, e.g. /mnt/etc/nixos
func (c Config) LiveNixosDir() string {
	return filepath.Join(c.Mount.Root, c.Paths.LiveDir)
}
