package coordstrategy_test

import (
	"context"
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/coordstrategy"
	"github.com/stretchr/testify/require"
)

func TestSelectPriorityTable(t *testing.T) {
	require.Equal(t, coordstrategy.KindForceRelative, coordstrategy.Select(coordstrategy.Selection{ForceRelative: true, UseAbsolute: true}))
	require.Equal(t, coordstrategy.KindAbsolute, coordstrategy.Select(coordstrategy.Selection{UseAbsolute: true}))
	require.Equal(t, coordstrategy.KindRelative, coordstrategy.Select(coordstrategy.Selection{}))
}

func TestRelativeAccumulatesUntilSync(t *testing.T) {
	r := coordstrategy.NewRelative()

	s := r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 5})
	require.False(t, s.Flushed)

	s = r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 1, Value: -2})
	require.False(t, s.Flushed)

	s = r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventSync})
	require.True(t, s.Flushed)
	require.Equal(t, int32(5), s.X)
	require.Equal(t, int32(-2), s.Y)

	s = r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventSync})
	require.False(t, s.Flushed)
}

func TestRelativeFlushesOnNonMoveEventWithPending(t *testing.T) {
	r := coordstrategy.NewRelative()
	r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 3})

	s := r.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton, Code: 0x110, Value: 1})
	require.True(t, s.Flushed)
	require.Equal(t, int32(3), s.X)
}

type fakeSource struct {
	x, y int32
	ok   bool
}

func (f *fakeSource) GetAbsolutePosition(ctx context.Context) (int32, int32, bool) {
	return f.x, f.y, f.ok
}

func TestAbsoluteUsesLastSampledPositionAndSentinelOnSync(t *testing.T) {
	src := &fakeSource{x: 100, y: 200, ok: true}
	a := coordstrategy.NewAbsolute(context.Background(), src)

	s := a.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton})
	require.True(t, s.Flushed)
	require.Equal(t, int32(100), s.X)
	require.Equal(t, int32(200), s.Y)

	sentinel := a.Observe(crossmacro.RawEvent{Kind: crossmacro.EventSync})
	require.False(t, sentinel.Flushed)
}

func TestAbsoluteFallsBackToZeroOnInitFailure(t *testing.T) {
	src := &fakeSource{ok: false}
	a := coordstrategy.NewAbsolute(context.Background(), src)

	s := a.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton})
	require.Equal(t, int32(0), s.X)
	require.Equal(t, int32(0), s.Y)
}
