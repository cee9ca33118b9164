package server

import (
	"context"

	"github.com/luma/m2handler/client"
	"github.com/luma/m2handler/protocol"
)

// Replier sends replies back through the connection a request arrived on.
type Replier interface {
	Send(uuid string, ids []string, body []byte) error
	Reply(req *protocol.Request, body []byte) error
	ReplyJSON(req *protocol.Request, body []byte) error
	ReplyHTTP(req *protocol.Request, code int, status string, headers *protocol.Headers, body []byte) error
	Hangup(req *protocol.Request) error
}

var _ Replier = (*client.Conn)(nil)

// Handler handles a single request. Returning an error that wraps
// transport.ErrTransport stops the worker that called it.
type Handler interface {
	Handle(ctx context.Context, rep Replier, req *protocol.Request) error
}

type HandlerFunc func(ctx context.Context, rep Replier, req *protocol.Request) error

func (f HandlerFunc) Handle(ctx context.Context, rep Replier, req *protocol.Request) error {
	return f(ctx, rep, req)
}
