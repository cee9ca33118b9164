package server

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/luma/m2handler/client"
	"github.com/luma/m2handler/protocol"
	"github.com/luma/m2handler/transport"
)

// Server serves requests from a front end with a fixed number of workers.
// Every worker owns its own connection.
type Server struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	client     client.Options
	numWorkers int
	handler    Handler
	limiter    *rate.Limiter

	mu      sync.Mutex
	workers []*Worker

	log *zap.Logger
}

func New(options Options) *Server {
	numWorkers := options.NumWorkers

	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		burst := options.Burst
		if burst < 1 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), burst)
	}

	RegisterMetrics()

	return &Server{
		client:     options.Client,
		numWorkers: numWorkers,
		handler:    options.Handler,
		limiter:    limiter,
		workers:    make([]*Worker, 0, numWorkers),
		log:        log,
	}
}

// Start connects every worker and starts serving. If any worker fails to
// connect, the ones that did are closed and the error is returned.
func (s *Server) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	s.log.Info("Starting workers", zap.Int("count", s.numWorkers))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < s.numWorkers; i++ {
		options := s.client
		options.Log = s.log.Named("conn").With(zap.Int("worker", i))

		conn, err := client.Connect(ctx, options)
		if err != nil {
			cancel()
			return multierr.Append(err, s.closeWorkers())
		}

		s.workers = append(s.workers, &Worker{
			id:      i,
			conn:    conn,
			handler: s.handler,
			limiter: s.limiter,
			log:     s.log.Named("worker").With(zap.Int("worker", i)),
		})
	}

	for _, w := range s.workers {
		s.startWorker(ctx, w)
	}

	return nil
}

func (s *Server) startWorker(ctx context.Context, w *Worker) {
	s.stopWaiter.Add(1)
	activeWorkers.Inc()

	go func() {
		defer s.stopWaiter.Done()
		defer activeWorkers.Dec()

		w.Serve(ctx)
	}()
}

// Close stops every worker and closes their connections. Requests being
// handled are allowed to finish.
func (s *Server) Close() error {
	s.log.Info("Stopping server")

	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	err := s.closeWorkers()
	s.mu.Unlock()

	s.stopWaiter.Wait()
	s.log.Info("Workers stopped")

	return err
}

func (s *Server) closeWorkers() (err error) {
	for _, w := range s.workers {
		err = multierr.Append(err, w.conn.Close())
	}

	s.workers = s.workers[:0]
	return err
}

// Worker pulls requests off a single connection and hands them to the
// handler one at a time.
type Worker struct {
	id      int
	conn    *client.Conn
	handler Handler
	limiter *rate.Limiter
	log     *zap.Logger
}

// Serve runs until ctx is cancelled or the connection breaks. Malformed
// requests are logged and dropped.
func (w *Worker) Serve(ctx context.Context) {
	log := w.log

	defer log.Info("Worker exited")

	for {
		req, err := w.conn.Recv()
		if err != nil {
			if errors.Is(err, protocol.ErrFormat) {
				malformedRequests.Inc()
				log.Warn("Dropping malformed request", zap.Error(err))
				continue
			}

			if ctx.Err() != nil {
				log.Info("Context cancelled, exiting...")
				return
			}

			log.Error("Failed to receive request", zap.Error(err))
			return
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				log.Info("Context cancelled while throttled, exiting...")
				return
			}
		}

		if err := w.dispatch(ctx, req); err != nil {
			log.Error("Connection failed while handling request", zap.Error(err))
			return
		}
	}
}

// dispatch returns an error only when the connection can no longer be used.
func (w *Worker) dispatch(ctx context.Context, req *protocol.Request) error {
	start := time.Now()
	outcome := OutcomeOK

	if req.IsDisconnect() {
		outcome = OutcomeDisconnect
	}

	err := w.handler.Handle(ctx, w.conn, req)
	if err != nil {
		outcome = OutcomeError
		w.log.Warn("Handler failed",
			zap.String("uuid", req.UUID),
			zap.String("id", req.ID),
			zap.String("path", req.Path),
			zap.Error(err))
	}

	recordRequest(outcome, time.Since(start))

	if errors.Is(err, transport.ErrTransport) || errors.Is(err, client.ErrConnBroken) {
		return err
	}

	return nil
}
