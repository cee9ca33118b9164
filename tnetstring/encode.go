package tnetstring

import (
	"strconv"
)

// Encode returns the tnetstring encoding of v. A nil v is encoded as Null.
func Encode(v Value) []byte {
	return Append(nil, v)
}

// Append appends the tnetstring encoding of v to dst and returns the
// extended buffer.
func Append(dst []byte, v Value) []byte {
	if v == nil {
		v = Null{}
	}

	payload := v.appendPayload(nil)

	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, ':')
	dst = append(dst, payload...)
	return append(dst, v.Tag())
}

func (s String) appendPayload(dst []byte) []byte {
	return append(dst, s...)
}

func (i Int) appendPayload(dst []byte) []byte {
	return strconv.AppendInt(dst, int64(i), 10)
}

func (f Float) appendPayload(dst []byte) []byte {
	return strconv.AppendFloat(dst, float64(f), 'g', -1, 64)
}

func (b Bool) appendPayload(dst []byte) []byte {
	return strconv.AppendBool(dst, bool(b))
}

func (Null) appendPayload(dst []byte) []byte {
	return dst
}

func (l List) appendPayload(dst []byte) []byte {
	for _, item := range l {
		dst = Append(dst, item)
	}

	return dst
}

func (d Dict) appendPayload(dst []byte) []byte {
	for _, pair := range d {
		dst = Append(dst, pair.Key)
		dst = Append(dst, pair.Value)
	}

	return dst
}

// Strings is a convenience for building a List of String values.
func Strings(ss ...string) List {
	list := make(List, 0, len(ss))
	for _, s := range ss {
		list = append(list, String(s))
	}

	return list
}
