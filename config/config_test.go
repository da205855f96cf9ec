package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDaemonConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadDaemonConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfigOverlaysTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`socket_path = "/tmp/custom.sock"
default_playback_speed = 2.5
`), 0644))

	cfg, err := config.LoadDaemonConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.sock", cfg.SocketPath)
	require.Equal(t, 2.5, cfg.DefaultPlaybackSpeed)
	require.Equal(t, config.DefaultDaemonConfig().DebounceDuration, cfg.DebounceDuration)
}

func TestLoadMacroSequenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macro.json")
	seq := crossmacro.MacroSequence{
		Name: "demo",
		Events: []crossmacro.MacroEvent{
			{Kind: crossmacro.MacroKeyPress, KeyCode: 30, Timestamp: 0, DelayMs: 50},
			{Kind: crossmacro.MacroKeyRelease, KeyCode: 30, Timestamp: 50, DelayMs: 0},
		},
	}
	require.NoError(t, config.SaveMacroSequence(path, seq))

	loaded, err := config.LoadMacroSequence(path)
	require.NoError(t, err)
	require.Equal(t, seq.Name, loaded.Name)
	require.Equal(t, seq.Events, loaded.Events)
}

func TestLoadMacroSequenceEmptyIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, config.SaveMacroSequence(path, crossmacro.MacroSequence{Name: "empty"}))

	_, err := config.LoadMacroSequence(path)
	require.ErrorIs(t, err, crossmacro.ErrEmptySequence)
}
