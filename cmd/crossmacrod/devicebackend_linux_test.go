//go:build linux

package main

import (
	"testing"

	"github.com/badu/crossmacro/daemon"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceBackendReturnsLinuxImplementation(t *testing.T) {
	var backend daemon.DeviceBackend = newDeviceBackend()
	require.IsType(t, &daemon.LinuxDeviceBackend{}, backend)
}
