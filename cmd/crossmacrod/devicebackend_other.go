//go:build !linux

package main

import "github.com/badu/crossmacro/daemon"

func newDeviceBackend() daemon.DeviceBackend {
	return daemon.NewStubDeviceBackend()
}
