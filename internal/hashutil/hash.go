// Package hashutil provides the SHA-256 and hex-encoding helpers the signer
// and transport wrapper need, kept free of third-party hash libraries since
// nothing in the reference corpus reaches for one over crypto/sha256.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
)

const hexDigits = "0123456789abcdef"

// SHA256Hex returns the lowercase hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SHA256HexString returns the lowercase hex SHA-256 digest of s's UTF-8
// bytes. Non-ASCII input is copied into a pooled buffer, hashed, and the
// buffer is returned to the pool once the digest is computed.
func SHA256HexString(s string) string {
	if isASCII(s) {
		// []byte(s) on an ASCII string is the UTF-8 encoding already;
		// avoid the pooled round trip.
		return SHA256Hex([]byte(s))
	}
	buf := bufpool.BigBytes.Get(0)
	buf = append(buf, s...)
	digest := SHA256Hex(buf)
	bufpool.BigBytes.Put(buf)
	return digest
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// EmptyPayloadHash is SHA256Hex(""), used as x-amz-content-sha256 for
// GET/HEAD/DELETE requests whose body is always empty.
var EmptyPayloadHash = SHA256Hex(nil)

// Hex returns the portable lowercase hex encoding of b, two characters per
// byte, no separators, without going through encoding/hex's allocation when
// the caller already holds a destination buffer via AppendHex.
func Hex(b []byte) string {
	dst := make([]byte, len(b)*2)
	AppendHex(dst[:0], b)
	return string(dst)
}

// AppendHex appends the lowercase hex encoding of b to dst and returns the
// extended slice, allocating nothing when dst has spare capacity.
func AppendHex(dst []byte, b []byte) []byte {
	for _, c := range b {
		dst = append(dst, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return dst
}
