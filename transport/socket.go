package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrTransport is wrapped by every failure of the underlying sockets. A
	// socket that returned it should be considered unusable.
	ErrTransport = errors.New("Transport failure")

	ErrInvalidAddr     = errors.New("Invalid socket address")
	ErrInvalidIdentity = errors.New("Invalid socket identity")
)

// Kind selects the messaging pattern of a socket
type Kind int

const (
	// Pull receives requests pushed by the front end
	Pull Kind = iota

	// Pub publishes replies to the front end
	Pub
)

func (k Kind) String() string {
	switch k {
	case Pull:
		return "PULL"
	case Pub:
		return "PUB"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Socket is a single messaging endpoint. Each message is delivered whole.
type Socket interface {
	// Dial connects the socket to addr. A socket may be connected to several
	// addresses.
	Dial(addr string) error

	Send(data []byte) error

	// Recv blocks until a message arrives, the socket is closed, or the
	// context the socket was opened with is cancelled.
	Recv() ([]byte, error)

	Close() error
}

// Opener opens a socket of the given kind. The socket lives until it is
// closed or ctx is cancelled.
type Opener func(ctx context.Context, kind Kind, options Options) (Socket, error)

var _ Opener = Open

// ValidateAddr checks that addr is an endpoint we know how to dial, e.g.
// tcp://127.0.0.1:9997, ipc:///tmp/handler or inproc://handler.
func ValidateAddr(addr string) error {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok || rest == "" {
		return fmt.Errorf("'%s': %w", addr, ErrInvalidAddr)
	}

	switch scheme {
	case "tcp":
		host, port, err := net.SplitHostPort(rest)
		if err != nil || host == "" || port == "" || port == "*" {
			return fmt.Errorf("'%s': %w", addr, ErrInvalidAddr)
		}

		return nil

	case "ipc", "inproc":
		return nil

	default:
		return fmt.Errorf("'%s' has unsupported scheme '%s': %w", addr, scheme, ErrInvalidAddr)
	}
}

// ValidateIdentity checks an optional socket identity. An empty identity
// means none is set.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return nil
	}

	// Identities starting with a zero byte are reserved
	if len(identity) > 255 || identity[0] == 0 {
		return fmt.Errorf("'%s': %w", identity, ErrInvalidIdentity)
	}

	return nil
}
