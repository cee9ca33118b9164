package tnetstring

import (
	"bytes"
	"fmt"
	"strconv"
)

// maxLengthDigits bounds the length prefix to 999999999 bytes.
const maxLengthDigits = 9

// Decode reads a single value from the front of data and returns it along
// with the bytes that follow it.
//
// An empty data yields a nil Value and no error. Decode never reads past the
// end of data: a length prefix that claims more bytes than are available is
// reported as ErrTruncated.
func Decode(data []byte) (Value, []byte, error) {
	if len(data) == 0 {
		return nil, data, nil
	}

	payload, tag, rest, err := split(data)
	if err != nil {
		return nil, nil, err
	}

	value, err := decodePayload(payload, tag)
	if err != nil {
		return nil, nil, err
	}

	return value, rest, nil
}

// split separates the first encoded value in data into its payload and tag.
func split(data []byte) (payload []byte, tag byte, rest []byte, err error) {
	limit := len(data)
	if limit > maxLengthDigits+1 {
		limit = maxLengthDigits + 1
	}

	colon := bytes.IndexByte(data[:limit], ':')
	if colon < 0 {
		if isDigits(data[:limit]) && len(data) <= maxLengthDigits {
			// Only digits, the data simply ends before the separator
			return nil, 0, nil, ErrMissingColon
		}

		return nil, 0, nil, ErrInvalidLength
	}

	if colon == 0 || !isDigits(data[:colon]) {
		return nil, 0, nil, fmt.Errorf("%q: %w", data[:colon], ErrInvalidLength)
	}

	// At most nine digits, this cannot overflow an int
	length, err := strconv.Atoi(string(data[:colon]))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%q: %w", data[:colon], ErrInvalidLength)
	}

	remaining := data[colon+1:]
	if length >= len(remaining) {
		// We need the payload plus one byte for the tag
		return nil, 0, nil, fmt.Errorf("need %d bytes, have %d: %w",
			length+1, len(remaining), ErrTruncated)
	}

	return remaining[:length], remaining[length], remaining[length+1:], nil
}

func decodePayload(payload []byte, tag byte) (Value, error) {
	switch tag {
	case TagString:
		return String(payload), nil

	case TagInt:
		i, err := strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", payload, ErrInvalidInt)
		}

		return Int(i), nil

	case TagFloat:
		f, err := strconv.ParseFloat(string(payload), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", payload, ErrInvalidFloat)
		}

		return Float(f), nil

	case TagBool:
		switch string(payload) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		default:
			return nil, fmt.Errorf("%q: %w", payload, ErrInvalidBool)
		}

	case TagNull:
		if len(payload) != 0 {
			return nil, ErrInvalidNull
		}

		return Null{}, nil

	case TagList:
		return decodeList(payload)

	case TagDict:
		return decodeDict(payload)

	default:
		return nil, fmt.Errorf("%q: %w", tag, ErrUnknownTag)
	}
}

func decodeList(payload []byte) (List, error) {
	list := List{}

	for len(payload) > 0 {
		var (
			item Value
			err  error
		)

		item, payload, err = Decode(payload)
		if err != nil {
			return nil, err
		}

		list = append(list, item)
	}

	return list, nil
}

func decodeDict(payload []byte) (Dict, error) {
	dict := Dict{}

	for len(payload) > 0 {
		var (
			key, value Value
			err        error
		)

		key, payload, err = Decode(payload)
		if err != nil {
			return nil, err
		}

		k, ok := key.(String)
		if !ok {
			return nil, fmt.Errorf("got tag %q: %w", key.Tag(), ErrInvalidKey)
		}

		if len(payload) == 0 {
			return nil, fmt.Errorf("key %q: %w", string(k), ErrMissingValue)
		}

		value, payload, err = Decode(payload)
		if err != nil {
			return nil, err
		}

		dict = append(dict, Pair{Key: k, Value: value})
	}

	return dict, nil
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
