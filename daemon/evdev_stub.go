//go:build !linux

package daemon

import "github.com/badu/crossmacro"

// StubDeviceBackend stands in for LinuxDeviceBackend off Linux, exactly
// as core/engine_stub.go stands in for core/engine_linux.go: uinput and
// evdev have no portable equivalent, so §4.2's privileged core only ever
// actually runs on Linux.
type StubDeviceBackend struct{}

func NewStubDeviceBackend() *StubDeviceBackend { return &StubDeviceBackend{} }

func (b *StubDeviceBackend) DiscoverDevices() ([]InputDevice, error) {
	return nil, crossmacro.ErrUnsupportedPlatform
}

func (b *StubDeviceBackend) CreateVirtualDevice(width, height int32) (VirtualDevice, error) {
	return nil, crossmacro.ErrUnsupportedPlatform
}

func (b *StubDeviceBackend) ReleaseAll() {}
