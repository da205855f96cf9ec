// Package crossmacro holds the data model and small cross-cutting
// contracts shared by every other package in the module: the wire-level
// event types (§3), the macro/task/dictionary value types, and the
// Death lifecycle contract that the module's long-running components
// (the daemon server, the IPC client, the capture providers, the config
// watcher) implement the same way.
package crossmacro

import "context"

// Death is implemented by anything that runs a background goroutine and
// needs to announce its own termination to a caller waiting for a clean
// shutdown. The IPC client, the capture providers, the daemon server and
// the config watcher expose one; simulation and position providers do not.
type Death interface {
	DyingChan() chan struct{}
}

// RawEventSink receives the raw per-axis input stream produced by a
// capture provider (C4) or daemon session (C2). Sinks must not block for
// long: Deliver is called from the provider's single reader goroutine,
// and a slow sink stalls event delivery order for every other consumer.
type RawEventSink interface {
	Deliver(ev RawEvent)
}

// RawEventSinkFunc adapts a plain function to a RawEventSink.
type RawEventSinkFunc func(ev RawEvent)

func (f RawEventSinkFunc) Deliver(ev RawEvent) { f(ev) }

// Lifecycle is implemented by components whose background goroutines are
// mounted exactly once and torn down when ctx is cancelled (§5).
type Lifecycle interface {
	Death
	Start(ctx context.Context) error
}
