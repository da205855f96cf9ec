//go:build !linux

package main

import "github.com/badu/crossmacro/daemon"

// newPolicyChecker reports no backend off Linux; PolicyKit has no
// portable equivalent, matching daemon/evdev_stub.go's platform split.
func newPolicyChecker() (daemon.PolicyChecker, error) {
	return nil, nil
}
