//go:build linux

package position

import (
	"context"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// X11 queries the X server directly via XQueryPointer (§4.9), connecting
// lazily on first use and reusing the connection thereafter. Grounded on
// core/engine_linux.go's lazy-open-then-reuse pattern for /dev/tty.
type X11 struct {
	mu   sync.Mutex
	conn *xgb.Conn
	root xproto.Window
}

// NewX11 returns an X11 provider. The connection is established on first
// call, not here, so constructing one off the display server never fails.
func NewX11() *X11 {
	return &X11{}
}

func (x *X11) connect() (*xgb.Conn, xproto.Window, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.conn != nil {
		return x.conn, x.root, nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, 0, err
	}
	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root
	x.conn = conn
	x.root = root
	return conn, root, nil
}

func (x *X11) GetAbsolutePosition(ctx context.Context) (int32, int32, bool) {
	conn, root, err := x.connect()
	if err != nil {
		return 0, 0, false
	}
	reply, err := xproto.QueryPointer(conn, root).Reply()
	if err != nil || reply == nil {
		return 0, 0, false
	}
	return int32(reply.RootX), int32(reply.RootY), true
}

func (x *X11) GetScreenResolution(ctx context.Context) (int32, int32, bool) {
	conn, _, err := x.connect()
	if err != nil {
		return 0, 0, false
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	return int32(screen.WidthInPixels), int32(screen.HeightInPixels), true
}

func (x *X11) Name() string { return "x11" }
