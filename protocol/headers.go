package protocol

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/luma/m2handler/tnetstring"
)

// Headers maps header names to their ordered values. Names are kept in the
// order they were first added. A name that was never added is absent, it is
// never present with an empty list.
type Headers struct {
	keys   []string
	values map[string][]string
}

func NewHeaders() *Headers {
	return &Headers{values: make(map[string][]string)}
}

// Add appends values to key. Adding no values is a no-op.
func (h *Headers) Add(key string, values ...string) {
	if len(values) == 0 {
		return
	}

	if h.values == nil {
		h.values = make(map[string][]string)
	}

	existing, ok := h.values[key]
	if !ok {
		h.keys = append(h.keys, key)
	}

	h.values[key] = append(existing, values...)
}

// Get returns the values of key, and whether it was present.
func (h *Headers) Get(key string) ([]string, bool) {
	if h == nil {
		return nil, false
	}

	values, ok := h.values[key]
	return values, ok
}

// Values returns the values of key, or nil if it is absent.
func (h *Headers) Values(key string) []string {
	values, _ := h.Get(key)
	return values
}

// Is reports whether key is present with exactly the given values.
func (h *Headers) Is(key string, values ...string) bool {
	got, ok := h.Get(key)
	if !ok || len(got) != len(values) {
		return false
	}

	for i := range got {
		if got[i] != values[i] {
			return false
		}
	}

	return true
}

func (h *Headers) Keys() []string {
	if h == nil {
		return nil
	}

	return append([]string(nil), h.keys...)
}

func (h *Headers) Len() int {
	if h == nil {
		return 0
	}

	return len(h.keys)
}

// Each calls fn for every key in insertion order.
func (h *Headers) Each(fn func(key string, values []string)) {
	if h == nil {
		return
	}

	for _, key := range h.keys {
		fn(key, h.values[key])
	}
}

// DecodeHeaders normalises a decoded headers tnetstring.
//
// Headers arrive either as a tnetstring dictionary or, from older front ends,
// as a tnetstring string holding a JSON object.
func DecodeHeaders(value tnetstring.Value) (*Headers, error) {
	switch v := value.(type) {
	case tnetstring.Dict:
		return headersFromDict(v)

	case tnetstring.String:
		return headersFromJSON(v)

	case nil:
		return nil, ErrMissingHeaders

	default:
		return nil, fmt.Errorf("Got tag %q: %w", v.Tag(), ErrInvalidHeaders)
	}
}

func headersFromDict(dict tnetstring.Dict) (*Headers, error) {
	headers := NewHeaders()

	for _, pair := range dict {
		key := string(pair.Key)

		switch v := pair.Value.(type) {
		case tnetstring.String:
			headers.Add(key, string(v))

		case tnetstring.List:
			values := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(tnetstring.String)
				if !ok {
					return nil, fmt.Errorf("Failed to parse header '%s': %w", key, ErrInvalidHeaderValue)
				}

				values = append(values, string(s))
			}

			headers.Add(key, values...)

		default:
			return nil, fmt.Errorf("Failed to parse header '%s': %w", key, ErrInvalidHeaderValue)
		}
	}

	return headers, nil
}

func headersFromJSON(raw []byte) (*Headers, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("Failed to parse headers: %w", ErrInvalidJSON)
	}

	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return nil, ErrHeadersNotObject
	}

	var (
		headers = NewHeaders()
		err     error
	)

	// ForEach visits duplicate keys too, they are merged like dictionary entries
	result.ForEach(func(key, value gjson.Result) bool {
		name := key.String()

		switch {
		case value.Type == gjson.String:
			headers.Add(name, value.Str)

		case value.IsArray():
			items := value.Array()
			values := make([]string, 0, len(items))

			for _, item := range items {
				if item.Type != gjson.String {
					err = fmt.Errorf("Failed to parse header '%s': %w", name, ErrInvalidHeaderValue)
					return false
				}

				values = append(values, item.Str)
			}

			headers.Add(name, values...)

		default:
			err = fmt.Errorf("Failed to parse header '%s': %w", name, ErrInvalidHeaderValue)
			return false
		}

		return true
	})

	if err != nil {
		return nil, err
	}

	return headers, nil
}
