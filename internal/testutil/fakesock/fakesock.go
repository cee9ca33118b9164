// Package fakesock provides in-memory sockets for testing code that talks to
// the front end without opening real ZeroMQ sockets.
package fakesock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luma/m2handler/transport"
)

var ErrClosed = errors.New("socket closed")

// Socket records everything sent through it and hands out messages queued
// with Push.
type Socket struct {
	Kind     transport.Kind
	Identity string

	// DialErr, SendErr and CloseErr are returned from the matching calls
	// when set.
	DialErr  error
	SendErr  error
	CloseErr error

	mu     sync.Mutex
	addrs  []string
	sent   [][]byte
	closed bool

	ctx     context.Context
	inbox   chan []byte
	closing chan struct{}
}

func newSocket(ctx context.Context, kind transport.Kind, identity string) *Socket {
	return &Socket{
		Kind:     kind,
		Identity: identity,
		ctx:      ctx,
		inbox:    make(chan []byte, 64),
		closing:  make(chan struct{}),
	}
}

func (s *Socket) Dial(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DialErr != nil {
		return fmt.Errorf("%w: %w", transport.ErrTransport, s.DialErr)
	}

	s.addrs = append(s.addrs, addr)
	return nil
}

func (s *Socket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: %w", transport.ErrTransport, ErrClosed)
	}

	if s.SendErr != nil {
		return fmt.Errorf("%w: %w", transport.ErrTransport, s.SendErr)
	}

	s.sent = append(s.sent, append([]byte(nil), data...))
	return nil
}

func (s *Socket) Recv() ([]byte, error) {
	select {
	case data := <-s.inbox:
		return data, nil

	case <-s.closing:
		return nil, fmt.Errorf("%w: %w", transport.ErrTransport, ErrClosed)

	case <-s.ctx.Done():
		return nil, fmt.Errorf("%w: %w", transport.ErrTransport, s.ctx.Err())
	}
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.closing)
	}

	if s.CloseErr != nil {
		return fmt.Errorf("%w: %w", transport.ErrTransport, s.CloseErr)
	}

	return nil
}

// Push queues a message for Recv.
func (s *Socket) Push(data []byte) {
	s.inbox <- data
}

func (s *Socket) Addrs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.addrs...)
}

// Sent returns a copy of every message sent so far.
func (s *Socket) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]byte(nil), s.sent...)
}

func (s *Socket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Network opens fake sockets and remembers them.
type Network struct {
	// OpenErr fails every Open of the given kind
	OpenErr map[transport.Kind]error

	// Prepare, when set, is called on every socket before Open returns it
	Prepare func(*Socket)

	mu      sync.Mutex
	sockets []*Socket
}

func (n *Network) Open(ctx context.Context, kind transport.Kind, options transport.Options) (transport.Socket, error) {
	if err := n.OpenErr[kind]; err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrTransport, err)
	}

	s := newSocket(ctx, kind, options.Identity)
	if n.Prepare != nil {
		n.Prepare(s)
	}

	n.mu.Lock()
	n.sockets = append(n.sockets, s)
	n.mu.Unlock()

	return s, nil
}

// Sockets returns every socket of the given kind in the order they were
// opened.
func (n *Network) Sockets(kind transport.Kind) []*Socket {
	n.mu.Lock()
	defer n.mu.Unlock()

	var sockets []*Socket
	for _, s := range n.sockets {
		if s.Kind == kind {
			sockets = append(sockets, s)
		}
	}

	return sockets
}

var _ transport.Opener = (&Network{}).Open
