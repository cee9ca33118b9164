package protocol

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/luma/m2handler/tnetstring"
)

var (
	Terminal    = []byte("\r\n")
	HTTPVersion = []byte("HTTP/1.1")
)

// EncodeReply builds a reply to the connections ids on the front end uuid.
//
// The body is written raw, an empty body asks the front end to close the
// connections.
func EncodeReply(uuid string, ids []string, body []byte) ([]byte, error) {
	if !isToken(uuid) {
		return nil, ErrInvalidSenderUUID
	}

	if len(ids) == 0 {
		return nil, ErrNoConnectionIDs
	}

	for _, id := range ids {
		if !isToken(id) {
			return nil, ErrInvalidConnectionID
		}
	}

	encodedIDs := tnetstring.Encode(tnetstring.String(strings.Join(ids, " ")))

	msg := make([]byte, 0, len(uuid)+len(encodedIDs)+len(body)+2)
	msg = append(msg, uuid...)
	msg = append(msg, ' ')
	msg = append(msg, encodedIDs...)
	msg = append(msg, ' ')
	msg = append(msg, body...)

	return msg, nil
}

// HTTPResponse builds a complete HTTP/1.1 response. Content-Length is always
// written, followed by headers in order. No other headers are added.
func HTTPResponse(code int, status string, headers *Headers, body []byte) []byte {
	var buf bytes.Buffer

	buf.Write(HTTPVersion)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(code))
	buf.WriteByte(' ')
	buf.WriteString(status)
	buf.Write(Terminal)

	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.Write(Terminal)

	headers.Each(func(key string, values []string) {
		for _, value := range values {
			buf.WriteString(key)
			buf.WriteString(": ")
			buf.WriteString(value)
			buf.Write(Terminal)
		}
	})

	buf.Write(Terminal)
	buf.Write(body)

	return buf.Bytes()
}

func isToken(s string) bool {
	return s != "" && !strings.ContainsRune(s, ' ')
}
