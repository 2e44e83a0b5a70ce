package jsonpatch

import (
	"strconv"
	"strings"
)

// EscapeSegment escapes a single reference token per RFC 6901.
// "~" must be escaped before "/", otherwise the "~1" produced for a slash
// would itself be rewritten to "~01".
func EscapeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}

// AppendPath appends an escaped segment to an existing JSON Pointer. The root
// pointer is the empty string, so AppendPath("", "a") is "/a".
func AppendPath(base, segment string) string {
	if base == "" {
		return "/" + EscapeSegment(segment)
	}
	return base + "/" + EscapeSegment(segment)
}

// AppendIndex appends an array index to an existing JSON Pointer.
func AppendIndex(base string, index int) string {
	return base + "/" + strconv.Itoa(index)
}

// JoinPath builds a JSON Pointer from unescaped segments. No segments yields
// the root pointer "".
func JoinPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(EscapeSegment(s))
	}
	return b.String()
}
