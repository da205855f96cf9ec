package position_test

import (
	"context"
	"testing"
	"time"

	"github.com/badu/crossmacro/position"
	"github.com/stretchr/testify/require"
)

func TestFallbackReportsHardcodedResolutionAndNoPosition(t *testing.T) {
	orig := position.FallbackDelay
	position.FallbackDelay = time.Millisecond
	defer func() { position.FallbackDelay = orig }()

	f := position.NewFallback()
	ctx := context.Background()

	_, _, ok := f.GetAbsolutePosition(ctx)
	require.False(t, ok)

	w, h, ok := f.GetScreenResolution(ctx)
	require.True(t, ok)
	require.Equal(t, position.FallbackWidth, w)
	require.Equal(t, position.FallbackHeight, h)
}

func TestSelectFallsBackForUnknownCompositor(t *testing.T) {
	p := position.Select(position.CompositorUnknown)
	require.Equal(t, "fallback", p.Name())
}
