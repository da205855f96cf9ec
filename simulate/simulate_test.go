package simulate_test

import (
	"context"
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/simulate"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events [][3]int64
}

func (r *recordingSink) SimulateEvent(ctx context.Context, evType, code uint16, value int32) error {
	r.events = append(r.events, [3]int64{int64(evType), int64(code), int64(value)})
	return nil
}

func (r *recordingSink) SimulateBatch(ctx context.Context, events [][3]int64) error {
	r.events = append(r.events, events...)
	return nil
}

func TestDaemonProviderEmitsSyncAfterEveryLogicalAction(t *testing.T) {
	sink := &recordingSink{}
	p := simulate.NewDaemonProvider(sink)
	ctx := context.Background()

	require.NoError(t, p.MoveRelative(ctx, 5, -3))
	require.Len(t, sink.events, 3) // REL_X, REL_Y, SYN
	require.Equal(t, int64(0), sink.events[2][0])
}

func TestDaemonProviderReleaseAllDrainsPressedSet(t *testing.T) {
	sink := &recordingSink{}
	p := simulate.NewDaemonProvider(sink)
	ctx := context.Background()

	require.NoError(t, p.EmitKey(ctx, 30, true))
	require.NoError(t, p.EmitButton(ctx, crossmacro.ButtonLeft, true))

	before := len(sink.events)
	require.NoError(t, p.ReleaseAll(ctx))
	require.Greater(t, len(sink.events), before)

	// A second ReleaseAll should only emit the failsafe releases, not
	// re-release the already-drained key/button.
	afterFirst := len(sink.events)
	require.NoError(t, p.ReleaseAll(ctx))
	require.Greater(t, len(sink.events), afterFirst) // failsafe always fires
}

func TestSelectPicksSendInputOnWindows(t *testing.T) {
	require.Equal(t, simulate.KindSendInput, simulate.Select(simulate.SelectionParams{OS: "windows"}))
}

func TestSelectPrefersDaemonOverXTestOnLinux(t *testing.T) {
	require.Equal(t, simulate.KindDaemon, simulate.Select(simulate.SelectionParams{OS: "linux", SessionType: "x11", HasDaemon: true}))
	require.Equal(t, simulate.KindXTest, simulate.Select(simulate.SelectionParams{OS: "linux", SessionType: "x11", HasDaemon: false}))
}

func TestPressedSetDrainIsIdempotent(t *testing.T) {
	ps := simulate.NewPressedSet()
	ps.TrackKey(30, true)
	ps.TrackButton(crossmacro.ButtonLeft, true)

	keys, buttons := ps.Drain()
	require.ElementsMatch(t, []int32{30}, keys)
	require.ElementsMatch(t, []crossmacro.Button{crossmacro.ButtonLeft}, buttons)

	keys, buttons = ps.Drain()
	require.Empty(t, keys)
	require.Empty(t, buttons)
}
