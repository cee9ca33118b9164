package session

import (
	"context"
	"errors"

	"github.com/luma/m2handler/protocol"
)

var ErrClosed = errors.New("Session store is closed")

// Key identifies one client connection on one front end.
type Key struct {
	Sender string
	ID     string
}

// KeyOf returns the key of the connection that sent req.
func KeyOf(req *protocol.Request) Key {
	return Key{Sender: req.UUID, ID: req.ID}
}

func (k Key) String() string {
	return k.Sender + " " + k.ID
}

// Store keeps a JSON document per client connection. Fields are gjson/sjson
// paths into that document.
type Store interface {
	Set(ctx context.Context, key Key, field string, value interface{}) error
	Get(ctx context.Context, key Key, field string) ([]byte, error)
	Incr(ctx context.Context, key Key, field string, delta int64) (int64, error)

	// Delete forgets everything about the connection
	Delete(ctx context.Context, key Key) error

	Backup(key Key) ([]byte, error)
	Len() int

	Close() error
}
