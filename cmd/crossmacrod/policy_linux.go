//go:build linux

package main

import "github.com/badu/crossmacro/daemon"

// newPolicyChecker connects to the system bus for PolicyKit authorization.
// A connection failure is not fatal to the daemon — the caller falls back
// to the always-authorized default, matching WithPolicyChecker's own
// zero-value behavior.
func newPolicyChecker() (daemon.PolicyChecker, error) {
	return daemon.NewPolkitChecker()
}
