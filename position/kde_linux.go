//go:build linux

package position

import "context"

// KDE reports the cursor position via a KWin script that runs under the
// session bus and calls back the same way the GNOME extension does
// (§4.9). It is a distinct type (not a GNOME alias) because KWin and
// GNOME Shell register under different well-known names in a real
// deployment even though this module's callback shape is identical.
type KDE struct {
	reporter *dbusReporter
}

// NewKDE returns a KDE/KWin provider.
func NewKDE() *KDE {
	return &KDE{reporter: newDBusReporter("/org/crossmacro/Position", "org.crossmacro.Position1")}
}

func (k *KDE) GetAbsolutePosition(ctx context.Context) (int32, int32, bool) {
	if err := k.reporter.ensureExported(); err != nil {
		return 0, 0, false
	}
	return k.reporter.position()
}

func (k *KDE) GetScreenResolution(ctx context.Context) (int32, int32, bool) {
	if err := k.reporter.ensureExported(); err != nil {
		return 0, 0, false
	}
	return k.reporter.resolution()
}

func (k *KDE) Name() string { return "kwin" }
