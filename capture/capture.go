// Package capture implements the platform capture providers (C4): X11
// core-protocol global event selection, a thin shim over the IPC client
// talking to the privileged daemon, a root-only direct-evdev fallback,
// and the macOS/Windows low-level hook backends.
//
// Grounded on core/engine_linux.go / engine_darwin.go / engine_bsd.go's
// build-tag split of one platform-neutral contract into per-OS files —
// the same shape simulate uses for its four Provider implementations —
// and on key/dispatcher.go's/mouse/dispatcher.go's single-reader-
// goroutine-fans-out-to-channels idiom.
package capture

import (
	"context"

	"github.com/badu/crossmacro"
)

// Provider is the uniform capture surface of §4.8: two buffered channels
// plus a Death-shaped DyingChan, directly carried over from the
// teacher's dispatcher contracts. Start mounts the provider's reader
// goroutine exactly once; Stop tears it down and closes DyingChan.
type Provider interface {
	crossmacro.Death

	// Start begins reading raw input and must only be called once.
	Start(ctx context.Context, mouse, keyboard bool) error

	// EventStream yields every captured RawEvent in arrival order. The
	// channel is buffered; a slow consumer causes the provider to drop
	// events rather than block the reader goroutine (mirrored from
	// ipcclient's "must not block" listener contract).
	EventStream() <-chan crossmacro.RawEvent

	// ErrorStream carries the single terminal error that ended capture,
	// if any. It is buffered with capacity 1.
	ErrorStream() <-chan error

	// Stop ends capture and releases any OS resources held.
	Stop() error
}

// Kind names the capture backends of §4.8.
type Kind uint8

const (
	KindX11 Kind = iota
	KindIPC
	KindLegacyEvdev
	KindDarwinTap
	KindWindowsHook
)

func (k Kind) String() string {
	switch k {
	case KindX11:
		return "x11"
	case KindIPC:
		return "ipc"
	case KindLegacyEvdev:
		return "legacy-evdev"
	case KindDarwinTap:
		return "cgeventtap"
	case KindWindowsHook:
		return "setwindowshookex"
	default:
		return "unknown"
	}
}

// SelectionParams mirrors simulate.SelectionParams/coordstrategy's
// priority-table selection idiom (§9) applied to capture-provider
// choice.
type SelectionParams struct {
	OS          string // "linux", "darwin", "windows"
	SessionType string // "x11", "wayland", "" for non-Linux
	HasDaemon   bool   // an IPC connection to the daemon is available
	IsRoot      bool   // the calling process has CAP_SYS_ADMIN-equivalent
}

// Select picks the Kind this process should use given the running
// platform, the current session, and privilege. On Linux an available
// daemon connection always outranks direct hardware access — the
// daemon path needs no elevated privilege and works under both X11 and
// Wayland. Direct evdev reads are the last resort, reserved for a
// process that is itself root and has no daemon to talk to.
func Select(p SelectionParams) Kind {
	switch p.OS {
	case "windows":
		return KindWindowsHook
	case "darwin":
		return KindDarwinTap
	default: // linux and any other Unix-like target
		if p.HasDaemon {
			return KindIPC
		}
		if p.SessionType == "x11" {
			return KindX11
		}
		if p.IsRoot {
			return KindLegacyEvdev
		}
		return KindIPC
	}
}

// eventBufferSize is the capacity of every backend's EventStream
// channel (§4.8's "two buffered channels").
const eventBufferSize = 256
