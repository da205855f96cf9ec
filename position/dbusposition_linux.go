//go:build linux

package position

import (
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

// dbusReporter is the shared plumbing behind the GNOME and KDE providers:
// both establish a session-bus service and object, and have a compositor
// extension/KWin script call back at 1ms cadence with the cursor position
// (§4.9). godbus/dbus/v5 is the same library the daemon uses for PolicyKit
// authorization (see DESIGN.md), reused here for session-bus export
// instead of a system-bus method call.
type dbusReporter struct {
	objectPath dbus.ObjectPath
	ifaceName  string

	mu        sync.Mutex
	lastX     int32
	lastY     int32
	lastW     int32
	lastH     int32
	lastSeen  time.Time
	conn      *dbus.Conn
	connected bool
}

// freshness bounds how stale a session-bus-reported sample may be before
// GetAbsolutePosition treats it as unavailable — the compositor script is
// expected to call back every 1ms (§4.9's polling cadence), so anything
// older than a few cycles means the script has stopped running.
const freshness = 50 * time.Millisecond

func newDBusReporter(objectPath, ifaceName string) *dbusReporter {
	return &dbusReporter{objectPath: dbus.ObjectPath(objectPath), ifaceName: ifaceName}
}

// ensureExported connects to the session bus and exports this reporter as
// the callback target, idempotently.
func (r *dbusReporter) ensureExported() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connected {
		return nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	if err := conn.Export(r, r.objectPath, r.ifaceName); err != nil {
		conn.Close()
		return err
	}
	r.conn = conn
	r.connected = true
	return nil
}

// ReportPosition is the D-Bus method the compositor script calls back
// into. It is exported under r.ifaceName via conn.Export.
func (r *dbusReporter) ReportPosition(x, y, w, h int32) *dbus.Error {
	r.mu.Lock()
	r.lastX, r.lastY = x, y
	r.lastW, r.lastH = w, h
	r.lastSeen = time.Now()
	r.mu.Unlock()
	return nil
}

func (r *dbusReporter) position() (int32, int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSeen.IsZero() || time.Since(r.lastSeen) > freshness {
		return 0, 0, false
	}
	return r.lastX, r.lastY, true
}

func (r *dbusReporter) resolution() (int32, int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastW == 0 || r.lastH == 0 {
		return 0, 0, false
	}
	return r.lastW, r.lastH, true
}
