package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DaemonConfig holds the daemon-level tuning knobs that sit alongside the
// macro/dictionary files the GUI shell owns. Grounded on
// smazurov-videonode's dependency on pelletier/go-toml/v2 for its own
// config file.
type DaemonConfig struct {
	SocketPath          string        `toml:"socket_path"`
	DefaultPlaybackSpeed float64      `toml:"default_playback_speed"`
	DebounceDuration    time.Duration `toml:"debounce_duration"`
	AuthorizationTimeout time.Duration `toml:"authorization_timeout"`
	HandshakeTimeout    time.Duration `toml:"handshake_timeout"`
}

// DefaultDaemonConfig returns the configuration used when no TOML file is
// present, matching the constants named throughout §4 and §5.
func DefaultDaemonConfig() DaemonConfig {
	return DaemonConfig{
		SocketPath:           PrimarySocketPath,
		DefaultPlaybackSpeed: 1.0,
		DebounceDuration:     20 * time.Millisecond,
		AuthorizationTimeout: 30 * time.Second,
		HandshakeTimeout:     5 * time.Second,
	}
}

// LoadDaemonConfig reads the TOML file at path, overlaying it onto
// DefaultDaemonConfig. A missing file is not an error — the defaults apply.
func LoadDaemonConfig(path string) (DaemonConfig, error) {
	cfg := DefaultDaemonConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read daemon config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse daemon config %s: %w", path, err)
	}
	return cfg, nil
}
