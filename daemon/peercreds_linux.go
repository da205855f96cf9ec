//go:build linux

package daemon

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// peerCredentials resolves the connecting peer's pid/uid via SO_PEERCRED,
// the same raw golang.org/x/sys/unix ioctl-adjacent syscall style
// core/engine_linux.go uses for IoctlGetTermios/IoctlSetTermios.
func peerCredentials(conn net.Conn) (pid int32, uid uint32, err error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return 0, 0, fmt.Errorf("daemon: not a unix socket connection")
	}

	raw, err := uc.SyscallConn()
	if err != nil {
		return 0, 0, err
	}

	var cred *unix.Ucred
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		cred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return 0, 0, err
	}
	if sockErr != nil {
		return 0, 0, sockErr
	}
	return cred.Pid, cred.Uid, nil
}
