package domain

// Config mirrors ~/.caretaker/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" json:"config_format_version"`
	Health              HealthSettings    `yaml:"health" json:"health"`
	Container           ContainerSettings `yaml:"container" json:"container"`
	Gateway             GatewaySettings   `yaml:"gateway" json:"gateway"`
	Disk                DiskSettings      `yaml:"disk" json:"disk"`
	Locks               LockSettings      `yaml:"locks" json:"locks"`
}

// HealthSettings locates the health-state directory that receives
// heal-log.json, heal-history.log and history.db.
type HealthSettings struct {
	StateDir string `yaml:"state_dir" json:"state_dir"`
}

// ContainerSettings names the graph-database container and its heal timing.
type ContainerSettings struct {
	// Service is the short name used in issue tags (e.g. neo4j -> neo4j_down).
	Service               string `yaml:"service" json:"service"`
	Name                  string `yaml:"name" json:"name"`
	RestartSettleSeconds  int    `yaml:"restart_settle_seconds" json:"restart_settle_seconds"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds" json:"command_timeout_seconds"`
}

// GatewaySettings describes the local HTTP gateway and its supervisor label.
type GatewaySettings struct {
	URL                  string `yaml:"url" json:"url"`
	Port                 int    `yaml:"port" json:"port"`
	Label                string `yaml:"label" json:"label"`
	ProbeTimeoutSeconds  int    `yaml:"probe_timeout_seconds" json:"probe_timeout_seconds"`
	RestartSettleSeconds int    `yaml:"restart_settle_seconds" json:"restart_settle_seconds"`
	KillSettleSeconds    int    `yaml:"kill_settle_seconds" json:"kill_settle_seconds"`
}

// DiskSettings holds the utilization thresholds and cleanup targets.
type DiskSettings struct {
	TriggerPercent    int    `yaml:"trigger_percent" json:"trigger_percent"`
	RecoveryPercent   int    `yaml:"recovery_percent" json:"recovery_percent"`
	Root              string `yaml:"root" json:"root"`
	LogDir            string `yaml:"log_dir" json:"log_dir"`
	SessionDir        string `yaml:"session_dir" json:"session_dir"`
	SessionMaxAgeDays int    `yaml:"session_max_age_days" json:"session_max_age_days"`
}

// LockSettings configures the stale-lock sweep.
type LockSettings struct {
	Root          string `yaml:"root" json:"root"`
	Suffix        string `yaml:"suffix" json:"suffix"`
	MaxAgeMinutes int    `yaml:"max_age_minutes" json:"max_age_minutes"`
}
