package hostsim

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config controls the simulator.
type Config struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
	// Path is the WebSocket channel route.
	Path string `toml:"path"`
	// Version is the host version reported to clients.
	Version string `toml:"version"`

	Auth   AuthConfig   `toml:"auth"`
	Limits LimitsConfig `toml:"limits"`
	Debug  DebugConfig  `toml:"debug"`
}

// AuthConfig controls the authorization policy.
type AuthConfig struct {
	// AutoGrant approves any bundle not on the denied list.
	AutoGrant bool `toml:"auto_grant"`
	// Denied lists bundle ids that are always refused.
	Denied []string `toml:"denied"`
}

// LimitsConfig caps concurrent entities per bundle and kind.
type LimitsConfig struct {
	LiveActivities   int `toml:"live_activities"`
	LockWidgets      int `toml:"lock_widgets"`
	NotchExperiences int `toml:"notch_experiences"`
	// Tombstones bounds the per-kind LRU of recently dismissed ids.
	Tombstones int `toml:"tombstones"`
}

// DebugConfig controls the debug REST group.
type DebugConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerSecond int  `toml:"requests_per_second"`
	Burst             int  `toml:"burst"`
}

// DefaultConfig returns the simulator defaults: loopback listen address,
// auto-granted authorization and the production capacity limits.
func DefaultConfig() Config {
	return Config{
		Addr:    "127.0.0.1:7749",
		Path:    "/v1/channel",
		Version: "1.4.2",
		Auth: AuthConfig{
			AutoGrant: true,
		},
		Limits: LimitsConfig{
			LiveActivities:   3,
			LockWidgets:      5,
			NotchExperiences: 2,
			Tombstones:       256,
		},
		Debug: DebugConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Absent keys keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
