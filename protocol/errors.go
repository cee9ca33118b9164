package protocol

import (
	"fmt"

	"github.com/luma/m2handler/tnetstring"
)

// ErrFormat is wrapped by every error caused by a malformed message.
var ErrFormat = tnetstring.ErrFormat

var (
	ErrMissingUUID        = fmt.Errorf("Request is malformed, missing sender uuid: %w", ErrFormat)
	ErrMissingID          = fmt.Errorf("Request is malformed, missing connection id: %w", ErrFormat)
	ErrMissingPath        = fmt.Errorf("Request is malformed, missing path: %w", ErrFormat)
	ErrMissingHeaders     = fmt.Errorf("Request is malformed, missing headers: %w", ErrFormat)
	ErrMissingBody        = fmt.Errorf("Request is malformed, missing body: %w", ErrFormat)
	ErrInvalidBody        = fmt.Errorf("Request is malformed, body is not a string: %w", ErrFormat)
	ErrTrailingData       = fmt.Errorf("Request is malformed, unexpected data after the body: %w", ErrFormat)
	ErrInvalidHeaders     = fmt.Errorf("Request is malformed, headers are neither a dictionary nor JSON: %w", ErrFormat)
	ErrHeadersNotObject   = fmt.Errorf("Request is malformed, JSON headers are not an object: %w", ErrFormat)
	ErrInvalidHeaderValue = fmt.Errorf("Request is malformed, header value is not a string or a list of strings: %w", ErrFormat)
	ErrInvalidJSON        = fmt.Errorf("Request is malformed, invalid JSON: %w", ErrFormat)
	ErrJSONBodyNotObject  = fmt.Errorf("Request is malformed, JSON body is not an object: %w", ErrFormat)

	ErrInvalidSenderUUID   = fmt.Errorf("Reply is malformed, sender uuid must be a non-empty token without spaces: %w", ErrFormat)
	ErrInvalidConnectionID = fmt.Errorf("Reply is malformed, connection ids must be non-empty tokens without spaces: %w", ErrFormat)
	ErrNoConnectionIDs     = fmt.Errorf("Reply is malformed, at least one connection id is required: %w", ErrFormat)
)
