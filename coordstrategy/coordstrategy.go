// Package coordstrategy implements the per-event coordinate state
// machines (§4.4) that turn per-axis relative deltas and/or asynchronously
// sampled absolute cursor positions into a coherent (x,y) sample per
// synchronization boundary.
//
// Grounded on §9's recommendation to apply the same small-priority-table
// selection idiom used throughout the teacher's own static lookup tables
// (core/keys.go's charset tables) — here keyed on (isWayland, useAbsolute,
// forceRelative) instead of a rune.
package coordstrategy

import "github.com/badu/crossmacro"

// Sample is one coordinate observation returned by Strategy.Observe. Flushed
// reports whether this observation is emit-worthy; a non-flushed Sample is
// the (0,0) "ignore" sentinel described in §4.4.
type Sample struct {
	X, Y    int32
	Flushed bool
}

// Strategy observes every raw event (so every implementation sees every
// Sync boundary) and reports a coordinate sample.
type Strategy interface {
	// Observe processes one raw event and returns the current coordinate
	// sample. Only a subset of event kinds move the needle for a given
	// strategy; for the others Relative returns the non-flushed zero
	// Sample and Absolute returns its current position.
	Observe(ev crossmacro.RawEvent) Sample
}

// Kind names the three strategy variants selectable by priority (§4.4).
type Kind uint8

const (
	KindRelative Kind = iota
	KindAbsolute
	KindForceRelative
)

// Selection captures the inputs to the priority table.
type Selection struct {
	IsWayland     bool
	UseAbsolute   bool
	ForceRelative bool
}

// Select picks a Kind using the priority table from §4.4: Force-Relative
// (100) beats Wayland/X11-Absolute (10) beats plain Relative (10, the
// default).
func Select(s Selection) Kind {
	if s.ForceRelative {
		return KindForceRelative
	}
	if s.UseAbsolute {
		return KindAbsolute
	}
	return KindRelative
}
