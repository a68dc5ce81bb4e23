package config

import (
	"fmt"

	"github.com/opsbay/caretaker/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if cfg.Health.StateDir == "" {
		return fmt.Errorf("health.state_dir must be set")
	}
	if err := validateContainer(cfg.Container); err != nil {
		return err
	}
	if err := validateGateway(cfg.Gateway); err != nil {
		return err
	}
	if err := validateDisk(cfg.Disk); err != nil {
		return err
	}
	return validateLocks(cfg.Locks)
}

func validateContainer(c domain.ContainerSettings) error {
	if c.Name == "" {
		return fmt.Errorf("container.name must be set")
	}
	if c.Service == "" {
		return fmt.Errorf("container.service must be set")
	}
	if c.RestartSettleSeconds <= 0 {
		return fmt.Errorf("container.restart_settle_seconds must be > 0")
	}
	if c.CommandTimeoutSeconds <= 0 {
		return fmt.Errorf("container.command_timeout_seconds must be > 0")
	}
	return nil
}

func validateGateway(g domain.GatewaySettings) error {
	if g.URL == "" {
		return fmt.Errorf("gateway.url must be set")
	}
	if g.Label == "" {
		return fmt.Errorf("gateway.label must be set")
	}
	if g.Port < 1 || g.Port > 65535 {
		return fmt.Errorf("gateway.port must be 1-65535, got %d", g.Port)
	}
	if g.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("gateway.probe_timeout_seconds must be > 0")
	}
	if g.RestartSettleSeconds <= 0 || g.KillSettleSeconds <= 0 {
		return fmt.Errorf("gateway settle periods must be > 0")
	}
	return nil
}

func validateDisk(d domain.DiskSettings) error {
	if d.TriggerPercent < 1 || d.TriggerPercent > 99 {
		return fmt.Errorf("disk.trigger_percent must be 1-99, got %d", d.TriggerPercent)
	}
	if d.RecoveryPercent < 1 || d.RecoveryPercent > 99 {
		return fmt.Errorf("disk.recovery_percent must be 1-99, got %d", d.RecoveryPercent)
	}
	// Recovery must undercut the trigger or every partial fix would flap.
	if d.RecoveryPercent >= d.TriggerPercent {
		return fmt.Errorf("disk.recovery_percent (%d) must be below disk.trigger_percent (%d)",
			d.RecoveryPercent, d.TriggerPercent)
	}
	if d.Root == "" {
		return fmt.Errorf("disk.root must be set")
	}
	if d.SessionMaxAgeDays <= 0 {
		return fmt.Errorf("disk.session_max_age_days must be > 0")
	}
	return nil
}

func validateLocks(l domain.LockSettings) error {
	if l.Root == "" {
		return fmt.Errorf("locks.root must be set")
	}
	if l.Suffix == "" {
		return fmt.Errorf("locks.suffix must be set")
	}
	if l.MaxAgeMinutes <= 0 {
		return fmt.Errorf("locks.max_age_minutes must be > 0")
	}
	return nil
}
