package daemon

import "errors"

var errUnsupportedPeerCreds = errors.New("daemon: peer credential resolution not supported on this platform")
