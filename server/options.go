package server

import (
	"go.uber.org/zap"

	"github.com/luma/m2handler/client"
)

type Options struct {
	// Client configures the connection each worker opens to the front end
	Client client.Options

	// NumWorkers is the number of connections, and goroutines, serving
	// requests. Defaults to the number of CPUs
	NumWorkers int

	Handler Handler

	// RateLimit caps the number of requests per second dispatched across all
	// workers. Zero means unlimited
	RateLimit float64

	// Burst is the number of requests that may exceed RateLimit at once.
	// Defaults to 1
	Burst int

	Log *zap.Logger
}
