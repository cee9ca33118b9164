package protocol

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/luma/m2handler/tnetstring"
)

// ParseRequest parses a single message received from the front end.
//
// It either returns a complete Request or an error wrapping ErrFormat, the
// message is never partially decoded.
func ParseRequest(msg []byte) (*Request, error) {
	uuid, rest, ok := nextToken(msg)
	if !ok || len(uuid) == 0 {
		return nil, ErrMissingUUID
	}

	id, rest, ok := nextToken(rest)
	if !ok || len(id) == 0 {
		return nil, ErrMissingID
	}

	path, rest, ok := nextToken(rest)
	if !ok {
		return nil, ErrMissingPath
	}

	rawHeaders, rest, err := tnetstring.Decode(rest)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse headers: %w", err)
	}

	if rawHeaders == nil {
		return nil, ErrMissingHeaders
	}

	headers, err := DecodeHeaders(rawHeaders)
	if err != nil {
		return nil, err
	}

	rawBody, rest, err := tnetstring.Decode(rest)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse body: %w", err)
	}

	if rawBody == nil {
		return nil, ErrMissingBody
	}

	body, ok := rawBody.(tnetstring.String)
	if !ok {
		return nil, fmt.Errorf("Got tag %q: %w", rawBody.Tag(), ErrInvalidBody)
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%d bytes left over: %w", len(rest), ErrTrailingData)
	}

	req := &Request{
		UUID:    string(uuid),
		ID:      string(id),
		Path:    string(path),
		Headers: headers,
		Body:    body,
	}

	if headers.Is(HeaderMethod, MethodJSON) {
		if req.JSONBody, err = parseJSONBody(body); err != nil {
			return nil, err
		}
	}

	return req, nil
}

func parseJSONBody(body []byte) (*gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Failed to parse body: %w", ErrInvalidJSON)
	}

	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil, ErrJSONBodyNotObject
	}

	return &result, nil
}

// nextToken splits data at the first space. The space itself is dropped.
func nextToken(data []byte) (token, rest []byte, ok bool) {
	i := bytes.IndexByte(data, ' ')
	if i < 0 {
		return nil, nil, false
	}

	return data[:i], data[i+1:], true
}
