package crossmacro

import "errors"

// Error kinds surfaced by the core, per §7. Each is a sentinel so callers
// can match with errors.Is even after a component wraps it with context
// via fmt.Errorf("...: %w", err).
var (
	ErrAuthorizationDenied = errors.New("crossmacro: authorization denied")
	ErrProtocolMismatch    = errors.New("crossmacro: protocol version mismatch")
	ErrSocketUnavailable   = errors.New("crossmacro: no crossmacro daemon socket available")
	ErrDeviceUnavailable   = errors.New("crossmacro: input device unavailable")
	ErrSimulationFailed    = errors.New("crossmacro: simulated input write failed")
	ErrCoordinateUnresolved = errors.New("crossmacro: cursor position could not be resolved")
	ErrClipboardUnavailable = errors.New("crossmacro: clipboard unavailable")
	ErrExpansionAborted     = errors.New("crossmacro: text expansion aborted")
	ErrPlaybackCancelled    = errors.New("crossmacro: playback cancelled")
	ErrUnsupportedPlatform  = errors.New("crossmacro: not supported on this platform")
)
