package protocol

// This package implements parsing requests from, and serialising replies to,
// a Mongrel2 style front end. The front end and its handlers talk over a pair
// of sockets: the front end PUSHes requests and the handlers PUBlish replies.
//
// === Requests
//
// A request is a single message laid out as
//
//   ```
//   <uuid> <id> <path> <headers><body>
//   ```
//
// - `uuid`    - identifies the front end instance that sent the request
// - `id`      - identifies the client connection on that front end
// - `path`    - the request path
// - `headers` - a tnetstring, usually a dictionary of header name to value
// - `body`    - a tnetstring string
//
// The three leading tokens are each terminated by exactly one space. The two
// trailing tnetstrings follow each other with no delimiter.
//
// For example
//
//   ```
//   abCD-123 56 / 13:{"foo":"bar"},11:hello world,
//   ```
//
// Older front ends send the headers as a tnetstring string holding a JSON
// object rather than as a tnetstring dictionary. Both shapes are accepted.
//
// Header values are either strings or lists of strings. They are normalised
// into Headers, which maps each name to an ordered list of values.
//
// === JSON requests
//
// When the METHOD header is exactly "JSON" the body must be a JSON object.
// These are sent for JSON socket clients, and by the front end itself to
// announce that a client went away:
//
//   ```
//   {"type":"disconnect"}
//   ```
//
// === Replies
//
// A reply addresses one or more connections on one front end
//
//   ```
//   <uuid> <len>:<id> <id> ...,<SPACE><body>
//   ```
//
// The connection ids are joined with spaces and written as a single
// tnetstring string. Unlike requests, the body is written raw.
//
// Sending an empty body asks the front end to close the listed connections.
//
// === Errors
//
// Every malformed message is reported with an error that wraps ErrFormat.
// Nothing is partially decoded: a request is either returned whole or not at
// all.
