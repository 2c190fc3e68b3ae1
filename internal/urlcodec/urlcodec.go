// Package urlcodec implements percent-encoding and canonical query
// construction for S3 path-style requests, streaming into the pooled
// CharBuffer rather than allocating intermediate strings the way
// net/url.QueryEscape does.
package urlcodec

import (
	"strings"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
)

// IsUnreserved reports whether b is in the RFC 3986 unreserved set plus '/'
// (A-Z a-z 0-9 - _ . ~ /), the valid-without-encoding set for object keys.
func IsUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '~' || b == '/':
		return true
	}
	return false
}

const hexUpper = "0123456789ABCDEF"

// AppendEncodedName UTF-8 encodes name and appends its percent-encoded form
// to buf: unreserved bytes pass through, everything else becomes %XX with
// uppercase hex digits.
func AppendEncodedName(buf *bufpool.CharBuffer, name string) {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if IsUnreserved(c) {
			buf.AppendByte(c)
			continue
		}
		buf.AppendByte('%')
		buf.AppendByte(hexUpper[c>>4])
		buf.AppendByte(hexUpper[c&0x0f])
	}
}

// EncodeName returns name unchanged when every byte is already unreserved
// (the common case for most object keys), avoiding any allocation; it
// otherwise builds the percent-encoded copy.
func EncodeName(name string) string {
	needsEncoding := false
	for i := 0; i < len(name); i++ {
		if !IsUnreserved(name[i]) {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return name
	}
	buf := bufpool.NewCharBuffer(nil)
	AppendEncodedName(buf, name)
	return buf.Flush()
}

// AppendCanonicalQuery implements the spec's canonicalization algorithm:
// strip a leading '?', split on '&', locate '=' per pair (empty value if
// absent), trim leading whitespace off the name, unescape both sides
// treating '+' as space, then re-encode both with AppendEncodedName. Pairs
// are emitted in input order and the trailing '&' is trimmed.
func AppendCanonicalQuery(buf *bufpool.CharBuffer, rawQuery string) {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return
	}
	start := buf.Len()
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, hasValue := strings.Cut(pair, "=")
		name = strings.TrimLeft(name, " \t\r\n")
		name = unescapePlus(name)
		if hasValue {
			value = unescapePlus(value)
		} else {
			value = ""
		}
		AppendEncodedName(buf, name)
		buf.AppendByte('=')
		AppendEncodedName(buf, value)
		buf.AppendByte('&')
	}
	if buf.Len() > start {
		buf.RemoveLast()
	}
}

func unescapePlus(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '+':
			out.WriteByte(' ')
		case '%':
			if i+2 < len(s) {
				if hi, lo, ok := decodeHexPair(s[i+1], s[i+2]); ok {
					out.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
			out.WriteByte('%')
		default:
			out.WriteByte(s[i])
		}
	}
	return out.String()
}

func decodeHexPair(a, b byte) (byte, byte, bool) {
	hi, ok1 := hexVal(a)
	lo, ok2 := hexVal(b)
	return hi, lo, ok1 && ok2
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// BuildFileURL concatenates prefix with an optional '/' + encoded name.
func BuildFileURL(prefix, name string) string {
	if name == "" {
		return prefix
	}
	buf := bufpool.NewCharBuffer(nil)
	buf.AppendString(prefix)
	buf.AppendByte('/')
	AppendEncodedName(buf, name)
	return buf.Flush()
}
