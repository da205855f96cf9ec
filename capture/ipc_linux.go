//go:build linux

package capture

import (
	"context"
	"fmt"

	"github.com/badu/crossmacro"
	"github.com/badu/crossmacro/ipcclient"
)

// IPCProvider is the default unprivileged Linux backend: a thin shim
// over ipcclient.Client that turns StartCapture/subscribe into the
// Provider surface. This is what every ordinary (non-root) process uses
// once a daemon socket is reachable.
type IPCProvider struct {
	client *ipcclient.Client
	events chan crossmacro.RawEvent
	errs   chan error
	sub    chan crossmacro.RawEvent
	died   chan struct{}
}

// NewIPCProvider wraps an already-connected client. Callers typically
// build the client with ipcclient.New and ipcclient.Connect before
// constructing the provider.
func NewIPCProvider(client *ipcclient.Client) *IPCProvider {
	return &IPCProvider{
		client: client,
		events: make(chan crossmacro.RawEvent, eventBufferSize),
		errs:   make(chan error, 1),
		sub:    make(chan crossmacro.RawEvent, eventBufferSize),
		died:   make(chan struct{}),
	}
}

func (p *IPCProvider) Start(ctx context.Context, mouse, keyboard bool) error {
	if err := p.client.StartCapture(mouse, keyboard); err != nil {
		return fmt.Errorf("capture: ipc StartCapture: %w", err)
	}
	p.client.Subscribe(p.sub)
	go p.pump()
	return nil
}

// pump fans decoded events from the client's subscription channel into
// this provider's own EventStream, and closes died when the underlying
// connection does — mirroring ipcclient.Client.lifeCycle's
// reader-owns-the-channel shape one layer up.
func (p *IPCProvider) pump() {
	defer close(p.died)
	for {
		select {
		case ev, ok := <-p.sub:
			if !ok {
				return
			}
			select {
			case p.events <- ev:
			default:
			}
		case <-p.client.DyingChan():
			if err := p.client.Err(); err != nil {
				select {
				case p.errs <- err:
				default:
				}
			}
			return
		}
	}
}

func (p *IPCProvider) EventStream() <-chan crossmacro.RawEvent { return p.events }

func (p *IPCProvider) ErrorStream() <-chan error { return p.errs }

func (p *IPCProvider) DyingChan() chan struct{} { return p.died }

// Stop unsubscribes from the client and sends StopCapture. It does not
// close DyingChan: that closes only when the client's connection ends.
func (p *IPCProvider) Stop() error {
	p.client.Unsubscribe(p.sub)
	return p.client.StopCapture()
}
