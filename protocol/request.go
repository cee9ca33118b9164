package protocol

import (
	"github.com/tidwall/gjson"
)

// Header names the front end uses to describe a request
const (
	HeaderMethod     = "METHOD"
	HeaderVersion    = "VERSION"
	HeaderConnection = "connection"

	// MethodJSON is the METHOD of JSON socket messages and front end notices
	MethodJSON = "JSON"
)

// Request is a single decoded message from the front end.
type Request struct {
	// UUID identifies the front end that sent the request
	UUID string

	// ID identifies the client connection on the front end
	ID string

	Path    string
	Headers *Headers
	Body    []byte

	// JSONBody is set only when the METHOD header is exactly "JSON"
	JSONBody *gjson.Result
}

// IsDisconnect reports whether this is the front end's notice that the
// client connection went away.
func (r *Request) IsDisconnect() bool {
	if r.JSONBody == nil {
		return false
	}

	typ := r.JSONBody.Get("type")
	return typ.Type == gjson.String && typ.Str == "disconnect"
}

// ShouldClose reports whether the client connection should be closed once
// the reply has been sent.
func (r *Request) ShouldClose() bool {
	if r.Headers.Is(HeaderConnection, "close") {
		return true
	}

	return r.Headers.Is(HeaderVersion, "HTTP/1.0")
}

// IsJSON reports whether the request carries a JSON body.
func (r *Request) IsJSON() bool {
	return r.JSONBody != nil
}
