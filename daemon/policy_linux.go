//go:build linux

package daemon

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	polkitDest = "org.freedesktop.PolicyKit1"
	polkitPath = "/org/freedesktop/PolicyKit1/Authority"
	polkitIface = "org.freedesktop.PolicyKit1.Authority"
)

// PolkitChecker authorizes a connecting peer against
// org.freedesktop.PolicyKit1.Authority over the system bus (§4.2).
// Grounded on the same godbus/dbus/v5 connection shape position's
// dbusReporter uses for the session bus, here against the system bus
// for a synchronous method call instead of an exported callback object.
type PolkitChecker struct {
	conn *dbus.Conn
}

// NewPolkitChecker connects to the system bus.
func NewPolkitChecker() (*PolkitChecker, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, err
	}
	return &PolkitChecker{conn: conn}, nil
}

// polkitSubject is the PolicyKit "unix-process" subject wire shape: a string
// kind tag plus a details map of variants.
type polkitSubject struct {
	Kind    string
	Details map[string]dbus.Variant
}

// CheckAuthorization asks PolicyKit whether (pid,uid) may perform action,
// blocking for interactive authorization up to ctx's deadline.
func (p *PolkitChecker) CheckAuthorization(ctx context.Context, pid int32, uid uint32, action string) (bool, error) {
	subject := polkitSubject{
		Kind: "unix-process",
		Details: map[string]dbus.Variant{
			"pid":        dbus.MakeVariant(uint32(pid)),
			"start-time": dbus.MakeVariant(uint64(0)),
			"uid":        dbus.MakeVariant(int32(uid)),
		},
	}

	obj := p.conn.Object(polkitDest, dbus.ObjectPath(polkitPath))

	var result struct {
		IsAuthorized bool
		IsChallenge  bool
		Details      map[string]string
	}

	const allowInteraction uint32 = 1
	call := obj.CallWithContext(ctx, polkitIface+".CheckAuthorization", 0,
		subject, action, map[string]string{}, allowInteraction, "")
	if call.Err != nil {
		return false, call.Err
	}
	if err := call.Store(&result.IsAuthorized, &result.IsChallenge, &result.Details); err != nil {
		return false, err
	}
	return result.IsAuthorized, nil
}

// Close releases the system bus connection.
func (p *PolkitChecker) Close() error {
	return p.conn.Close()
}
