package notchbar

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything a Client needs. BundleID is required; the zero
// value of every other field resolves to a documented default.
type Config struct {
	// BundleID identifies the publishing application to the host.
	BundleID string `envconfig:"BUNDLE_ID"`

	// CallTimeout bounds each host call. Zero means wait forever, which is
	// the default: calls block until reply, teardown, or ctx cancellation.
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT"`

	Host    HostConfig
	Probe   ProbeConfig
	Logging LogConfig
}

// HostConfig holds channel endpoint configuration.
type HostConfig struct {
	// Addr is the host endpoint. An addr containing a path separator is
	// dialed as a unix socket.
	Addr string `envconfig:"HOST_ADDR" default:"127.0.0.1:7749"`
	Path string `envconfig:"HOST_PATH" default:"/v1/channel"`

	HandshakeTimeout time.Duration `envconfig:"HANDSHAKE_TIMEOUT" default:"10s"`
}

// ProbeConfig holds installation probe configuration.
type ProbeConfig struct {
	// AssumeInstalled skips the installation scan. Headless and CI
	// environments set this to reach a simulator.
	AssumeInstalled bool `envconfig:"ASSUME_INSTALLED" default:"false"`
}

// LogConfig holds SDK logging configuration. Logging is off by default; the
// SDK is a guest in the embedding process.
type LogConfig struct {
	Enabled     bool   `envconfig:"LOG_ENABLED" default:"false"`
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads configuration from NOTCHBAR_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("notchbar", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads configuration from the environment, falling back to
// defaults. The bundle id still has to come from somewhere before New.
func LoadOrDefault() Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the documented defaults with no bundle id.
func Default() Config {
	return Config{
		Host: HostConfig{
			Addr:             "127.0.0.1:7749",
			Path:             "/v1/channel",
			HandshakeTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
