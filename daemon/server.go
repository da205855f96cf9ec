// Package daemon is the privileged core (C2): it binds the well-known
// Unix socket, authorizes and handshakes exactly one client at a time,
// discovers evdev input devices, creates the uinput virtual device, and
// bridges kernel input events to and from that client over the codec
// wire protocol.
//
// Grounded on core/engine.go's composition shape — a struct built via
// functional options, guarded by a sync.Mutex, exposing Start(ctx) and a
// Death-style channel — and on core/engine_linux.go's raw
// golang.org/x/sys/unix ioctl style, carried over from termios handling
// to uinput/evdev handling in daemon/uinput_linux.go and
// daemon/evdev_linux.go.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/badu/crossmacro/codec"
	"github.com/badu/crossmacro/config"
	"github.com/rs/zerolog"
)

// State names the daemon's per-listener state, per §4.2.
type State uint8

const (
	StateListening State = iota
	StateAcceptingClient
	StateAuthorizing
	StateHandshaking
	StateReady
	StateCapturing
	StateIdle
	StateClosingClient
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "Listening"
	case StateAcceptingClient:
		return "AcceptingClient"
	case StateAuthorizing:
		return "Authorizing"
	case StateHandshaking:
		return "Handshaking"
	case StateReady:
		return "Ready"
	case StateCapturing:
		return "Capturing"
	case StateIdle:
		return "Idle"
	case StateClosingClient:
		return "ClosingClient"
	default:
		return "Unknown"
	}
}

// PolicyChecker authorizes a connecting peer for action, given its
// credentials. Declared here (not in a sub-package) so Server can accept
// any implementation via WithPolicyChecker, including a D-Bus/PolicyKit
// one (daemon/policy_linux.go) or an always-allow stub for tests.
type PolicyChecker interface {
	CheckAuthorization(ctx context.Context, pid int32, uid uint32, action string) (bool, error)
}

// DeviceBackend discovers and owns evdev/uinput devices. Declared here so
// Server stays platform-agnostic; daemon/evdev_linux.go and
// daemon/uinput_linux.go provide the real Linux implementation, and
// daemon/evdev_stub.go returns ErrUnsupportedPlatform everywhere else,
// exactly as core/engine_stub.go stands in for core/engine_linux.go.
type DeviceBackend interface {
	// DiscoverDevices opens every matched evdev device non-blockingly and
	// returns handles the capture loop polls.
	DiscoverDevices() ([]InputDevice, error)
	// CreateVirtualDevice creates (or recreates) the uinput device. width
	// and height of 0 request a relative-only device.
	CreateVirtualDevice(width, height int32) (VirtualDevice, error)
	// ReleaseAll releases any resources the backend itself holds, called
	// on ClosingClient after Server has closed the InputDevices that
	// DiscoverDevices returned.
	ReleaseAll()
}

// InputDevice is one opened evdev source, polled by the capture loop.
type InputDevice interface {
	Name() string
	IsKeyboard() bool
	IsMouse() bool
	// ReadEvent blocks until one kernel input event arrives or ctx is
	// cancelled.
	ReadEvent(ctx context.Context) (kind uint8, code int32, value int32, ts int64, err error)
	Close() error
}

// VirtualDevice is the uinput device simulated input is written to.
type VirtualDevice interface {
	WriteEvent(evType, code uint16, value int32) error
	Destroy() error
}

// Option configures a Server before Start.
type Option func(*Server)

// WithSocketPaths overrides the primary/fallback socket paths (§6).
func WithSocketPaths(primary, fallback string) Option {
	return func(s *Server) {
		s.primarySocket = primary
		s.fallbackSocket = fallback
	}
}

// WithPolicyChecker sets the authorization backend. Without one, every
// peer is authorized — intended for tests and for platforms without a
// PolicyKit-equivalent.
func WithPolicyChecker(p PolicyChecker) Option {
	return func(s *Server) { s.policy = p }
}

// WithDeviceBackend sets the evdev/uinput backend. Without one,
// ConfigureResolution and StartCapture are answered with an Error frame.
func WithDeviceBackend(b DeviceBackend) Option {
	return func(s *Server) { s.devices = b }
}

// WithLogger attaches a zerolog.Logger, matching log/main.go's
// component-scoped logger convention.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithConfig overrides the daemon's tuning knobs.
func WithConfig(cfg config.DaemonConfig) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithReadyNotifier overrides how the daemon signals readiness to the
// service manager; the default is systemd's SdNotify (daemon/systemd.go).
func WithReadyNotifier(n func() error) Option {
	return func(s *Server) { s.notifyReady = n }
}

// Server is the daemon's privileged core, the core-equivalent of §4.2.
// It serves exactly one authorized client connection at a time; a second
// peer is queued by the listener's accept backlog and authorized only
// after the first disconnects.
type Server struct {
	mu    sync.Mutex
	once  sync.Once
	state State

	primarySocket  string
	fallbackSocket string
	cfg            config.DaemonConfig
	policy         PolicyChecker
	devices        DeviceBackend
	log            zerolog.Logger
	notifyReady    func() error

	listener net.Listener
	virtual  VirtualDevice
	inputs   []InputDevice

	died chan struct{}
}

// New builds a Server. Call Start to bind and begin serving.
func New(opts ...Option) *Server {
	s := &Server{
		primarySocket:  config.PrimarySocketPath,
		fallbackSocket: config.FallbackSocketPath,
		cfg:            config.DefaultDaemonConfig(),
		notifyReady:    notifySystemdReady,
		died:           make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DyingChan implements crossmacro.Death.
func (s *Server) DyingChan() chan struct{} {
	return s.died
}

// Start binds the socket (falling back per §6 on failure), signals
// readiness, and serves connections sequentially until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	var startErr error
	s.once.Do(func() {
		startErr = s.start(ctx)
	})
	return startErr
}

func (s *Server) start(ctx context.Context) error {
	defer close(s.died)

	ln, path, err := bindSocket(s.primarySocket, s.fallbackSocket)
	if err != nil {
		return fmt.Errorf("daemon: bind socket: %w", err)
	}
	s.listener = ln
	s.log.Info().Str("socket", path).Msg("daemon listening")

	if err := chmodGroupOnly(path); err != nil {
		s.log.Warn().Err(err).Msg("could not restrict socket permissions")
	}

	if s.notifyReady != nil {
		if err := s.notifyReady(); err != nil {
			s.log.Warn().Err(err).Msg("readiness notification failed")
		}
	}

	s.setState(StateListening)

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("daemon: accept: %w", err)
		}
		s.serveOneClient(ctx, conn)
	}
}

func (s *Server) shutdown() {
	if s.notifyReady != nil {
		_ = notifySystemdStopping()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

func (s *Server) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State reports the daemon's current state, for diagnostics and tests.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdateConfig swaps the daemon's tuning knobs in place, taking effect on
// the next connection's authorize/handshake timeouts. Intended as the
// reload handler for a config.Watcher[config.DaemonConfig] started
// alongside Start; an in-flight connection keeps running under the
// config it started with.
func (s *Server) UpdateConfig(cfg config.DaemonConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.log.Info().Msg("daemon config reloaded")
}

func (s *Server) config() config.DaemonConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// serveOneClient runs the full per-connection state machine (§4.2):
// AcceptingClient → Authorizing → Handshaking → Ready → (Capturing|Idle)
// → ClosingClient. It never returns an error to the accept loop — every
// failure is reported to the peer as an Error frame and the connection
// is closed, returning the daemon to Listening.
func (s *Server) serveOneClient(ctx context.Context, conn net.Conn) {
	defer func() {
		s.setState(StateClosingClient)
		for _, in := range s.inputs {
			in.Close()
		}
		s.inputs = nil
		if s.devices != nil {
			s.devices.ReleaseAll()
		}
		if s.virtual != nil {
			s.virtual.Destroy()
			s.virtual = nil
		}
		conn.Close()
		s.setState(StateListening)
	}()

	s.setState(StateAcceptingClient)

	if !s.authorize(ctx, conn) {
		return
	}

	reader := codec.NewReader(conn)
	writer := codec.NewWriter(conn)

	if !s.handshake(reader, writer) {
		return
	}

	sess := &session{
		server: s,
		conn:   conn,
		reader: reader,
		writer: writer,
		log:    s.log,
	}
	s.setState(StateReady)
	sess.run(ctx)
}

func (s *Server) authorize(ctx context.Context, conn net.Conn) bool {
	s.setState(StateAuthorizing)
	if s.policy == nil {
		return true
	}

	pid, uid, err := peerCredentials(conn)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not resolve peer credentials")
		writeError(conn, "peer credentials unavailable")
		return false
	}

	authCtx, cancel := context.WithTimeout(ctx, s.config().AuthorizationTimeout)
	defer cancel()

	ok, err := s.policy.CheckAuthorization(authCtx, pid, uid, config.PolicyAction)
	if err != nil || !ok {
		s.log.Warn().Err(err).Int32("pid", pid).Uint32("uid", uid).Msg("authorization denied")
		writeError(conn, "authorization denied")
		return false
	}
	return true
}

func (s *Server) handshake(reader *codec.Reader, writer *codec.Writer) bool {
	s.setState(StateHandshaking)

	type result struct {
		frame codec.Frame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		f, err := reader.Decode()
		done <- result{f, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, codec.ErrUnknownOpcode) {
				writer.WriteFrame(codec.ErrorFrame("unknown opcode"))
			}
			s.log.Warn().Err(r.err).Msg("handshake read failed")
			return false
		}
		if r.frame.Op != codec.OpHandshake {
			writer.WriteFrame(codec.ErrorFrame("expected Handshake frame"))
			return false
		}
		if r.frame.Handshake.ProtocolVersion != codec.ProtocolVersion {
			writer.WriteFrame(codec.ErrorFrame("protocol version mismatch"))
			return false
		}
		if err := writer.WriteFrame(codec.HandshakeFrame()); err != nil {
			s.log.Warn().Err(err).Msg("handshake reply failed")
			return false
		}
		return true
	case <-time.After(s.config().HandshakeTimeout):
		writer.WriteFrame(codec.ErrorFrame("handshake timed out"))
		return false
	}
}

func writeError(conn net.Conn, message string) {
	_ = codec.NewWriter(conn).WriteFrame(codec.ErrorFrame(message))
}

func bindSocket(primary, fallback string) (net.Listener, string, error) {
	os.Remove(primary)
	ln, err := net.Listen("unix", primary)
	if err == nil {
		return ln, primary, nil
	}

	os.Remove(fallback)
	ln, fallbackErr := net.Listen("unix", fallback)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("primary %q: %v; fallback %q: %w", primary, err, fallback, fallbackErr)
	}
	return ln, fallback, nil
}
