// Package xmlscan implements a byte-at-a-time scanner that extracts the
// text content of the first <name>...</name> element from a stream,
// without a general XML parser. S3's InitiateMultipartUploadResult and
// ListBucketResult responses are well-formed enough that matching a
// literal opening/closing tag is sufficient, and it keeps this client's
// hot path free of encoding/xml's reflection-driven allocations.
package xmlscan

import (
	"io"
)

// ReadScalar scans br for the first <name>value</name> element and writes
// value's bytes into dst, growing dst via append as needed. It returns the
// slice of dst holding the value (len may be less than len(dst) if dst was
// oversized) and any read error other than io.EOF. If the stream ends
// without a match, it returns a zero-length slice and a nil error.
//
// br must already be a io.ByteReader; callers reading from an
// *http.Response.Body (which isn't one) should wrap it with a pooled
// *bufio.Reader rather than let this package allocate one per call.
func ReadScalar(br io.ByteReader, name string, dst []byte) ([]byte, error) {
	openTag := make([]byte, 0, len(name)+2)
	openTag = append(openTag, '<')
	openTag = append(openTag, name...)
	openTag = append(openTag, '>')

	closeTag := make([]byte, 0, len(name)+3)
	closeTag = append(closeTag, '<', '/')
	closeTag = append(closeTag, name...)
	closeTag = append(closeTag, '>')

	found, err := scanToTag(br, openTag)
	if err != nil {
		return dst[:0], err
	}
	if !found {
		return dst[:0], nil
	}
	return scanValue(br, closeTag, dst)
}

// scanToTag advances br byte-by-byte until it has consumed a full match of
// tag (inclusive of the trailing '>'), returning false on EOF and any other
// read error as is.
func scanToTag(br io.ByteReader, tag []byte) (bool, error) {
	matched := 0
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if c == tag[matched] {
			matched++
			if matched == len(tag) {
				return true, nil
			}
			continue
		}
		// Mismatch: the scanner only needs to resync on '<', since every
		// tag of interest starts there; a byte equal to tag[0] restarts
		// the match at length 1 instead of 0.
		if c == tag[0] {
			matched = 1
		} else {
			matched = 0
		}
	}
}

// scanValue reads bytes into dst until it sees the literal closeTag,
// returning the value without the tag. Bytes that only partially match
// closeTag are held back (not yet appended) until either the match
// completes (and they're discarded as the tag itself) or breaks (and
// they're flushed to dst as ordinary content, since they're known to equal
// closeTag's matched prefix).
func scanValue(br io.ByteReader, closeTag []byte, dst []byte) ([]byte, error) {
	dst = dst[:0]
	matched := 0
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				// Truncated stream mid-element: the held-back prefix was
				// real content after all, since no close tag ever arrived.
				return append(dst, closeTag[:matched]...), nil
			}
			return dst, err
		}
		if c == closeTag[matched] {
			matched++
			if matched == len(closeTag) {
				return dst, nil
			}
			continue
		}
		if matched > 0 {
			dst = append(dst, closeTag[:matched]...)
			matched = 0
		}
		if c == closeTag[0] {
			matched = 1
			continue
		}
		dst = append(dst, c)
	}
}
