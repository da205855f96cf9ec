package daemon

import (
	systemddaemon "github.com/coreos/go-systemd/v22/daemon"
)

// notifySystemdReady signals READY=1 to the service manager, matching
// §4.2's "signal readiness to the service manager." Grounded on
// smazurov-videonode's coreos/go-systemd/v22 dependency; unlike that
// repo's dbus.Manager (unit start/stop/restart over the system bus),
// readiness is the simpler sd_notify protocol, a no-op when NOTIFY_SOCKET
// is unset so this is always safe to call.
func notifySystemdReady() error {
	_, err := systemddaemon.SdNotify(false, systemddaemon.SdNotifyReady)
	return err
}

// notifySystemdStopping signals STOPPING=1 during the ClosingClient to
// shutdown transition.
func notifySystemdStopping() error {
	_, err := systemddaemon.SdNotify(false, systemddaemon.SdNotifyStopping)
	return err
}
