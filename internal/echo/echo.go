// Package echo is a demo handler. It answers HTTP requests with a JSON
// description of the request, echoes JSON socket messages back, and counts
// requests per client connection.
package echo

import (
	"context"
	"strings"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/luma/m2handler/protocol"
	"github.com/luma/m2handler/server"
	"github.com/luma/m2handler/session"
)

const requestsField = "requests"

type Handler struct {
	sessions session.Store
	log      *zap.Logger
}

func New(sessions session.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return &Handler{sessions: sessions, log: log}
}

func (h *Handler) Handle(ctx context.Context, rep server.Replier, req *protocol.Request) error {
	key := session.KeyOf(req)

	if req.IsDisconnect() {
		h.log.Debug("Client disconnected", zap.Stringer("conn", key))
		return h.sessions.Delete(ctx, key)
	}

	count, err := h.sessions.Incr(ctx, key, requestsField, 1)
	if err != nil {
		return err
	}

	if req.IsJSON() {
		return h.handleJSON(rep, req, count)
	}

	return h.handleHTTP(ctx, rep, req, count)
}

func (h *Handler) handleJSON(rep server.Replier, req *protocol.Request, count int64) error {
	body, err := sjson.SetBytes([]byte(`{"type":"echo"}`), requestsField, count)
	if err != nil {
		return err
	}

	if body, err = sjson.SetRawBytes(body, "msg", []byte(req.JSONBody.Raw)); err != nil {
		return err
	}

	return rep.ReplyJSON(req, body)
}

func (h *Handler) handleHTTP(ctx context.Context, rep server.Replier, req *protocol.Request, count int64) error {
	body := []byte(`{}`)

	fields := []struct {
		path  string
		value interface{}
	}{
		{"path", req.Path},
		{"method", strings.Join(req.Headers.Values(protocol.HeaderMethod), ",")},
		{requestsField, count},
		{"body", string(req.Body)},
	}

	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return err
		}
	}

	headers := protocol.NewHeaders()
	headers.Add("Content-Type", "application/json")

	closing := req.ShouldClose()
	if closing {
		headers.Add("Connection", "close")
	}

	if err := rep.ReplyHTTP(req, 200, "OK", headers, body); err != nil {
		return err
	}

	if !closing {
		return nil
	}

	if err := h.sessions.Delete(ctx, session.KeyOf(req)); err != nil {
		return err
	}

	return rep.Hangup(req)
}
