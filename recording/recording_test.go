package recording_test

import (
	"testing"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/coordstrategy"
	"github.com/badu/crossmacro/evcode"
	"github.com/badu/crossmacro/recording"
	"github.com/stretchr/testify/require"
)

func TestPipelineRecordsClickWithDelays(t *testing.T) {
	p := recording.NewPipeline(recording.Options{RecordMouse: true, RecordKeyboard: true}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 10, Timestamp: 0})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 1, Value: 5, Timestamp: 0})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventSync, Timestamp: 10_000})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton, Code: 0x110, Value: 1, Timestamp: 20_000})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton, Code: 0x110, Value: 0, Timestamp: 30_000})

	seq := p.Finish("demo")
	require.Len(t, seq.Events, 3)
	require.Equal(t, crossmacro.MacroMouseMove, seq.Events[0].Kind)
	require.Equal(t, int64(1), seq.Events[0].DelayMs)
	require.Equal(t, crossmacro.MacroButtonPress, seq.Events[1].Kind)
	require.Equal(t, crossmacro.ButtonLeft, seq.Events[1].Button)
	require.Equal(t, crossmacro.MacroButtonRelease, seq.Events[2].Kind)
	require.Equal(t, int64(0), seq.Events[2].DelayMs)
}

func TestPipelineDropsKeyRepeat(t *testing.T) {
	p := recording.NewPipeline(recording.Options{RecordKeyboard: true}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: 30, Value: 1, Timestamp: 0})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: 30, Value: 2, Timestamp: 10_000})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: 30, Value: 0, Timestamp: 20_000})

	seq := p.Finish("keys")
	require.Len(t, seq.Events, 2)
	require.Equal(t, crossmacro.MacroKeyPress, seq.Events[0].Kind)
	require.Equal(t, crossmacro.MacroKeyRelease, seq.Events[1].Kind)
}

func TestPipelineIgnoresConfiguredKeys(t *testing.T) {
	p := recording.NewPipeline(recording.Options{
		RecordKeyboard: true,
		IgnoredKeys:    map[int32]struct{}{42: {}},
	}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: 42, Value: 1, Timestamp: 0})
	seq := p.Finish("ignored")
	require.Empty(t, seq.Events)
}

func TestPipelineFlushesPendingMoveOnButtonWithoutSync(t *testing.T) {
	p := recording.NewPipeline(recording.Options{RecordMouse: true}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 3, Timestamp: 0})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseButton, Code: 0x110, Value: 1, Timestamp: 10_000})

	seq := p.Finish("click-no-sync")
	require.Len(t, seq.Events, 3)
	require.Equal(t, crossmacro.MacroMouseMove, seq.Events[0].Kind)
	require.Equal(t, int32(3), seq.Events[0].X)
	require.Equal(t, int32(0), seq.Events[0].Y)
	require.Equal(t, crossmacro.MacroButtonPress, seq.Events[1].Kind)
	require.Equal(t, crossmacro.ButtonLeft, seq.Events[1].Button)
	require.Equal(t, int32(3), seq.Events[1].X)
}

func TestPipelineRecordsScrollAndFlushesPendingMove(t *testing.T) {
	p := recording.NewPipeline(recording.Options{RecordMouse: true}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseMove, Code: 0, Value: 4, Timestamp: 0})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseScroll, Code: int32(evcode.REL_WHEEL), Value: 1, Timestamp: 10_000})
	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventMouseScroll, Code: int32(evcode.REL_HWHEEL), Value: -1, Timestamp: 20_000})

	seq := p.Finish("scroll")
	require.Len(t, seq.Events, 3)
	require.Equal(t, crossmacro.MacroMouseMove, seq.Events[0].Kind)
	require.Equal(t, int32(4), seq.Events[0].X)
	require.Equal(t, crossmacro.MacroClick, seq.Events[1].Kind)
	require.Equal(t, crossmacro.ButtonScrollUp, seq.Events[1].Button)
	require.Equal(t, crossmacro.MacroClick, seq.Events[2].Kind)
	require.Equal(t, crossmacro.ButtonScrollLeft, seq.Events[2].Button)
}

func TestPipelineSynthesizesReleaseForUnclosedPress(t *testing.T) {
	p := recording.NewPipeline(recording.Options{RecordKeyboard: true}, coordstrategy.NewRelative())

	p.Observe(crossmacro.RawEvent{Kind: crossmacro.EventKey, Code: 30, Value: 1, Timestamp: 0})
	seq := p.Finish("unclosed")

	require.Len(t, seq.Events, 2)
	require.Equal(t, crossmacro.MacroKeyPress, seq.Events[0].Kind)
	require.Equal(t, crossmacro.MacroKeyRelease, seq.Events[1].Kind)
}
