//go:build !linux

package position

// On non-Linux platforms this module only targets macOS/Windows through
// their own capture/simulation providers (§4.7, §4.8); §4.9's
// compositor-specific position providers are Linux-only (X11/GNOME/KDE),
// so NewX11/NewGNOME/NewKDE degrade to Fallback here rather than failing
// to build. Select never reaches them in practice off Linux since nothing
// will detect those compositors there.
func NewX11() Provider   { return NewFallback() }
func NewGNOME() Provider { return NewFallback() }
func NewKDE() Provider   { return NewFallback() }
