package transport

import (
	"go.uber.org/zap"
)

type Options struct {
	// Identity is set on the socket before it connects. It's optional and
	// only meaningful for the reply socket.
	Identity string

	// Trace will dump every message to the debug log. This is only useful in
	// local debugging
	Trace bool

	Log *zap.Logger
}
