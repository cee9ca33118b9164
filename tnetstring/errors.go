package tnetstring

import (
	"errors"
	"fmt"
)

// ErrFormat is wrapped by every decoding error in this package. Callers that
// only care whether a frame was malformed should check errors.Is(err, ErrFormat).
var ErrFormat = errors.New("Malformed tnetstring")

var (
	ErrInvalidLength = fmt.Errorf("%w: length prefix is not a valid non-negative decimal", ErrFormat)
	ErrMissingColon  = fmt.Errorf("%w: length prefix is not followed by ':'", ErrFormat)
	ErrTruncated     = fmt.Errorf("%w: declared length exceeds the remaining data", ErrFormat)
	ErrUnknownTag    = fmt.Errorf("%w: unknown type tag", ErrFormat)
	ErrInvalidKey    = fmt.Errorf("%w: dictionary key is not a string", ErrFormat)
	ErrMissingValue  = fmt.Errorf("%w: dictionary key has no value", ErrFormat)
	ErrInvalidInt    = fmt.Errorf("%w: invalid integer", ErrFormat)
	ErrInvalidFloat  = fmt.Errorf("%w: invalid float", ErrFormat)
	ErrInvalidBool   = fmt.Errorf("%w: invalid boolean", ErrFormat)
	ErrInvalidNull   = fmt.Errorf("%w: null must have an empty payload", ErrFormat)
)
