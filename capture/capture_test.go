package capture

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectPrefersDaemonOnLinux(t *testing.T) {
	k := Select(SelectionParams{OS: "linux", SessionType: "x11", HasDaemon: true})
	require.Equal(t, KindIPC, k)
}

func TestSelectFallsBackToX11WithoutDaemon(t *testing.T) {
	k := Select(SelectionParams{OS: "linux", SessionType: "x11", HasDaemon: false})
	require.Equal(t, KindX11, k)
}

func TestSelectFallsBackToLegacyEvdevWhenRootAndNoX11(t *testing.T) {
	k := Select(SelectionParams{OS: "linux", SessionType: "wayland", HasDaemon: false, IsRoot: true})
	require.Equal(t, KindLegacyEvdev, k)
}

func TestSelectDefaultsToIPCWhenNeitherX11NorRoot(t *testing.T) {
	k := Select(SelectionParams{OS: "linux", SessionType: "wayland", HasDaemon: false, IsRoot: false})
	require.Equal(t, KindIPC, k)
}

func TestSelectDarwinAlwaysUsesEventTap(t *testing.T) {
	k := Select(SelectionParams{OS: "darwin"})
	require.Equal(t, KindDarwinTap, k)
}

func TestSelectWindowsAlwaysUsesLowLevelHooks(t *testing.T) {
	k := Select(SelectionParams{OS: "windows"})
	require.Equal(t, KindWindowsHook, k)
}

func TestKindStringCoversEveryKind(t *testing.T) {
	for k := KindX11; k <= KindWindowsHook; k++ {
		require.NotEqual(t, "unknown", k.String())
	}
}
