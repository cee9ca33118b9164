// Package tnetstring implements the length-prefixed, tag-terminated
// serialization used to frame headers and bodies on the handler protocol.
//
// Every value is written as
//
//   <length>:<payload><tag>
//
// where <length> is the ASCII decimal byte count of <payload> and <tag> is a
// single byte selecting the type of the value:
//
//   ,  String  raw bytes
//   #  Int     ASCII decimal integer
//   ^  Float   ASCII decimal float
//   !  Bool    "true" or "false"
//   ~  Null    empty payload
//   ]  List    concatenated values
//   }  Dict    concatenated key/value pairs, keys are always Strings
//
// For example `11:hello world,` is the string "hello world" and
// `13:3:foo,3:bar,}` is a dictionary mapping "foo" to "bar".
package tnetstring
