//go:build !linux

package daemon

import "net"

// peerCredentials has no portable equivalent to SO_PEERCRED off Linux;
// the daemon itself is Linux-only (uinput has no cross-platform analog),
// so this stub only exists to keep server.go buildable on other GOOS
// during cross-compilation of the rest of the module.
func peerCredentials(conn net.Conn) (pid int32, uid uint32, err error) {
	return 0, 0, errUnsupportedPeerCreds
}
