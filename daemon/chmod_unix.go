//go:build !windows

package daemon

import (
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/badu/crossmacro/config"
)

// chmodGroupOnly restricts the socket to 0660 and, if the crossmacro
// group exists, chowns it to that group, per §6: "only members of the
// crossmacro group can connect."
func chmodGroupOnly(path string) error {
	if err := os.Chmod(path, 0o660); err != nil {
		return err
	}

	grp, err := user.LookupGroup(config.SocketGroup)
	if err != nil {
		return nil // group not provisioned on this host; chmod alone still applies
	}
	gid, err := strconv.Atoi(grp.Gid)
	if err != nil {
		return err
	}
	return syscall.Chown(path, -1, gid)
}
