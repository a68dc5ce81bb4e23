package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsbay/caretaker/assets"
	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/pkg/filesystem"
	"github.com/opsbay/caretaker/internal/ports"
)

// FileLoader loads YAML configuration from ~/.caretaker/config.yaml
// (overridable via CARETAKER_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. On first run it seeds the config file
// from the embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Path returns the resolved config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("CARETAKER_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".caretaker", "config.yaml")
}

// DefaultConfig returns the built-in configuration, used by `config diff`.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	// The embedded asset is the canonical default shape.
	_ = yaml.Unmarshal(assets.DefaultConfigYAML, &cfg)
	return hydrateDefaults(cfg)
}

// hydrateDefaults backfills zero values and expands ~ in every path so the
// rest of the program never sees an unexpanded or empty setting.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Health.StateDir == "" {
		cfg.Health.StateDir = filepath.Join(filesystem.UserHomeDir(), ".caretaker", "health")
	}
	cfg.Health.StateDir = filesystem.ExpandPath(cfg.Health.StateDir)

	if cfg.Container.Service == "" {
		cfg.Container.Service = cfg.Container.Name
	}
	if cfg.Container.RestartSettleSeconds == 0 {
		cfg.Container.RestartSettleSeconds = int(domain.DefaultContainerSettle.Seconds())
	}
	if cfg.Container.CommandTimeoutSeconds == 0 {
		cfg.Container.CommandTimeoutSeconds = int(domain.DefaultCommandTimeout.Seconds())
	}

	if cfg.Gateway.ProbeTimeoutSeconds == 0 {
		cfg.Gateway.ProbeTimeoutSeconds = int(domain.DefaultProbeTimeout.Seconds())
	}
	if cfg.Gateway.RestartSettleSeconds == 0 {
		cfg.Gateway.RestartSettleSeconds = int(domain.DefaultGatewaySettle.Seconds())
	}
	if cfg.Gateway.KillSettleSeconds == 0 {
		cfg.Gateway.KillSettleSeconds = int(domain.DefaultKillSettle.Seconds())
	}

	if cfg.Disk.TriggerPercent == 0 {
		cfg.Disk.TriggerPercent = domain.DefaultDiskTriggerPercent
	}
	if cfg.Disk.RecoveryPercent == 0 {
		cfg.Disk.RecoveryPercent = domain.DefaultDiskRecoveryPercent
	}
	if cfg.Disk.Root == "" {
		cfg.Disk.Root = "/"
	}
	if cfg.Disk.SessionMaxAgeDays == 0 {
		cfg.Disk.SessionMaxAgeDays = domain.DefaultSessionMaxAgeDays
	}
	cfg.Disk.LogDir = filesystem.ExpandPath(cfg.Disk.LogDir)
	cfg.Disk.SessionDir = filesystem.ExpandPath(cfg.Disk.SessionDir)

	if cfg.Locks.Suffix == "" {
		cfg.Locks.Suffix = domain.DefaultLockSuffix
	}
	if cfg.Locks.MaxAgeMinutes == 0 {
		cfg.Locks.MaxAgeMinutes = int(domain.DefaultLockMaxAge.Minutes())
	}
	cfg.Locks.Root = filesystem.ExpandPath(cfg.Locks.Root)

	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
