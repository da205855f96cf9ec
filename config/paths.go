// Package config resolves XDG paths, loads the daemon's TOML tuning file
// and JSON macro/dictionary files (§6), and watches a config file for
// live reload. The daemon owns tuning knobs; persistence of user
// settings/macros/schedules themselves is out of scope (§1 Non-goals) —
// config.LoadMacroSequence exists because crossmacroctl play and the
// scheduler's loader need to read a macro file the GUI shell already
// wrote, not because this module owns writing one.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns $XDG_CONFIG_HOME, falling back to
// $HOME/.config per the XDG base directory spec.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

// DaemonConfigPath returns the default location of the daemon's TOML
// tuning file.
func DaemonConfigPath() string {
	return filepath.Join(XDGConfigHome(), "crossmacro", "config.toml")
}

// PrimarySocketPath and FallbackSocketPath are the two socket locations
// named in §6.
const (
	PrimarySocketPath  = "/run/crossmacro/crossmacro.sock"
	FallbackSocketPath = "/tmp/crossmacro.sock"
)

// SocketGroup is the Unix group permitted to connect to the daemon socket.
const SocketGroup = "crossmacro"

// PolicyAction is the PolicyKit action the daemon authorizes each
// connection against.
const PolicyAction = "org.crossmacro.capture"
