package transport

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"go.uber.org/zap"
)

type zmqSocket struct {
	sock  zmq4.Socket
	kind  Kind
	trace bool
	log   *zap.Logger
}

// Open opens a ZeroMQ socket.
func Open(ctx context.Context, kind Kind, options Options) (Socket, error) {
	if err := ValidateIdentity(options.Identity); err != nil {
		return nil, err
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	var opts []zmq4.Option
	if options.Identity != "" {
		opts = append(opts, zmq4.WithID(zmq4.SocketIdentity(options.Identity)))
	}

	var sock zmq4.Socket

	switch kind {
	case Pull:
		sock = zmq4.NewPull(ctx, opts...)
	case Pub:
		sock = zmq4.NewPub(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: cannot open a %s socket", ErrTransport, kind)
	}

	return &zmqSocket{
		sock:  sock,
		kind:  kind,
		trace: options.Trace,
		log:   log.With(zap.Stringer("kind", kind)),
	}, nil
}

func (s *zmqSocket) Dial(addr string) error {
	if err := s.sock.Dial(addr); err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %w", ErrTransport, addr, err)
	}

	s.log.Info("Connected", zap.String("addr", addr))
	return nil
}

func (s *zmqSocket) Send(data []byte) error {
	if s.trace {
		s.log.Debug("SEND", zap.ByteString("data", data))
	}

	if err := s.sock.Send(zmq4.NewMsg(data)); err != nil {
		return fmt.Errorf("%w: failed to send: %w", ErrTransport, err)
	}

	return nil
}

func (s *zmqSocket) Recv() ([]byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to receive: %w", ErrTransport, err)
	}

	data := bytes.Join(msg.Frames, nil)

	if s.trace {
		s.log.Debug("RECV", zap.ByteString("data", data))
	}

	return data, nil
}

func (s *zmqSocket) Close() error {
	if err := s.sock.Close(); err != nil {
		return fmt.Errorf("%w: failed to close: %w", ErrTransport, err)
	}

	return nil
}
