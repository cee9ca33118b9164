package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/m2handler/protocol"
	"github.com/luma/m2handler/transport"
)

var (
	// ErrConfiguration is returned by Connect when the options are unusable.
	ErrConfiguration = errors.New("Invalid connection configuration")

	// ErrConnBroken is returned by every call made after the connection saw
	// a transport failure.
	ErrConnBroken = errors.New("Connection is broken")
)

type Options struct {
	// SenderID is the identity of the reply socket. It's optional.
	SenderID string

	// ReqAddrs are the front end endpoints we pull requests from
	ReqAddrs []string

	// RepAddrs are the front end endpoints we publish replies to
	RepAddrs []string

	// Trace will dump every message to the debug log
	Trace bool

	// Open opens the sockets. Defaults to transport.Open
	Open transport.Opener

	Log *zap.Logger
}

// Conn is a handler's connection to a front end. It owns one socket to
// receive requests on and one to publish replies on.
type Conn struct {
	senderID string
	reqAddrs []string
	repAddrs []string

	req transport.Socket
	rep transport.Socket

	mu     sync.Mutex
	broken error

	log *zap.Logger
}

// Connect validates options, then opens and connects both sockets. The
// sockets are closed when ctx is cancelled.
func Connect(ctx context.Context, options Options) (*Conn, error) {
	if err := validate(options); err != nil {
		return nil, err
	}

	open := options.Open
	if open == nil {
		open = transport.Open
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	req, err := open(ctx, transport.Pull, transport.Options{Trace: options.Trace, Log: log.Named("req")})
	if err != nil {
		return nil, err
	}

	if err := dialAll(req, options.ReqAddrs); err != nil {
		return nil, multierr.Append(err, req.Close())
	}

	rep, err := open(ctx, transport.Pub, transport.Options{
		Identity: options.SenderID,
		Trace:    options.Trace,
		Log:      log.Named("rep"),
	})
	if err != nil {
		return nil, multierr.Append(err, req.Close())
	}

	if err := dialAll(rep, options.RepAddrs); err != nil {
		return nil, multierr.Combine(err, rep.Close(), req.Close())
	}

	return &Conn{
		senderID: options.SenderID,
		reqAddrs: append([]string(nil), options.ReqAddrs...),
		repAddrs: append([]string(nil), options.RepAddrs...),
		req:      req,
		rep:      rep,
		log:      log,
	}, nil
}

func validate(options Options) error {
	if len(options.ReqAddrs) == 0 {
		return fmt.Errorf("%w: at least one request address is required", ErrConfiguration)
	}

	if len(options.RepAddrs) == 0 {
		return fmt.Errorf("%w: at least one reply address is required", ErrConfiguration)
	}

	for _, addr := range append(append([]string(nil), options.ReqAddrs...), options.RepAddrs...) {
		if err := transport.ValidateAddr(addr); err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	if err := transport.ValidateIdentity(options.SenderID); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return nil
}

func dialAll(sock transport.Socket, addrs []string) error {
	for _, addr := range addrs {
		if err := sock.Dial(addr); err != nil {
			return err
		}
	}

	return nil
}

func (c *Conn) SenderID() string {
	return c.senderID
}

func (c *Conn) ReqAddrs() []string {
	return append([]string(nil), c.reqAddrs...)
}

func (c *Conn) RepAddrs() []string {
	return append([]string(nil), c.repAddrs...)
}

// Recv blocks until the next request arrives.
//
// Errors wrapping protocol.ErrFormat mean that a single message was
// malformed, the connection is still usable. Any other error means the
// connection is broken.
func (c *Conn) Recv() (*protocol.Request, error) {
	if err := c.brokenErr(); err != nil {
		return nil, err
	}

	msg, err := c.req.Recv()
	if err != nil {
		return nil, c.markBroken(err)
	}

	return protocol.ParseRequest(msg)
}

// Send sends body to the connections ids on the front end uuid.
func (c *Conn) Send(uuid string, ids []string, body []byte) error {
	if err := c.brokenErr(); err != nil {
		return err
	}

	msg, err := protocol.EncodeReply(uuid, ids, body)
	if err != nil {
		return err
	}

	if err := c.rep.Send(msg); err != nil {
		return c.markBroken(err)
	}

	return nil
}

// Reply sends body to the connection that sent req.
func (c *Conn) Reply(req *protocol.Request, body []byte) error {
	return c.Send(req.UUID, []string{req.ID}, body)
}

// ReplyJSON replies to a JSON socket request. body should be a JSON document,
// it is sent as is.
func (c *Conn) ReplyJSON(req *protocol.Request, body []byte) error {
	return c.Reply(req, body)
}

// ReplyHTTP replies to req with a complete HTTP response.
func (c *Conn) ReplyHTTP(req *protocol.Request, code int, status string, headers *protocol.Headers, body []byte) error {
	return c.Reply(req, protocol.HTTPResponse(code, status, headers, body))
}

// Hangup asks the front end to close the connection that sent req.
func (c *Conn) Hangup(req *protocol.Request) error {
	return c.Reply(req, nil)
}

// Close closes both sockets.
func (c *Conn) Close() error {
	c.log.Debug("Closing connection")

	return multierr.Combine(c.req.Close(), c.rep.Close())
}

func (c *Conn) brokenErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return fmt.Errorf("%w: %w", ErrConnBroken, c.broken)
	}

	return nil
}

func (c *Conn) markBroken(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken == nil {
		c.broken = err
		c.log.Warn("Connection broken", zap.Error(err))
	}

	return err
}
