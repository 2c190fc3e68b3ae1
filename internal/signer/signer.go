// Package signer computes AWS Signature Version 4 over the fixed
// three-header request shape this client ever sends (host,
// x-amz-content-sha256, x-amz-date), and over presigned-GET query strings.
// Grounded on the canonical-request/string-to-sign layout used by the
// vendored minio-go v4 signer (fwessels-mc__...signature-v4.go) but
// reworked to avoid any heap allocation in the signing-key derivation and
// to drop the general dynamic header sort the spec's THE CORE doesn't need.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"strconv"
	"strings"
	"time"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
	"github.com/teoadal/Storage-sub000/internal/hashutil"
)

const (
	// ISO8601Date is the date-only layout used in the credential scope.
	ISO8601Date = "20060102"
	// ISO8601DateTime is the full-precision layout used in x-amz-date.
	ISO8601DateTime = "20060102T150405Z"

	algorithm = "AWS4-HMAC-SHA256"
)

// Signer derives signing keys and signatures for one set of credentials,
// region, and service. A Signer is safe for concurrent use: Sign and
// PresignSignature allocate their small scratch on the stack of each call rather
// than sharing any mutable state.
type Signer struct {
	accessKey string
	region    string
	service   string

	// seed is "AWS4" + secretKey, precomputed once per spec so DeriveKey
	// never has to re-encode the secret (or risk truncating a long one
	// into a fixed-size stack array) on every call.
	seed []byte

	// scopeTail is "/{region}/{service}/aws4_request\n", precomputed once.
	scopeTail string
}

// New builds a Signer for the given credentials, region, and service.
func New(accessKey, secretKey, region, service string) *Signer {
	return &Signer{
		accessKey: accessKey,
		region:    region,
		service:   service,
		seed:      []byte("AWS4" + secretKey),
		scopeTail: "/" + region + "/" + service + "/aws4_request\n",
	}
}

func hmacSHA256(dst *[32]byte, key, data []byte) {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	mac.Sum(dst[:0])
}

// DeriveKey writes the SigV4 signing key for now into scratch, following
// the four-step HMAC chain: date -> region -> service -> aws4_request.
func (s *Signer) DeriveKey(now time.Time, scratch *[32]byte) {
	var k1, k2, k3 [32]byte

	var dateBuf [8]byte
	now.UTC().AppendFormat(dateBuf[:0], ISO8601Date)

	hmacSHA256(&k1, s.seed, dateBuf[:])
	hmacSHA256(&k2, k1[:], []byte(s.region))
	hmacSHA256(&k3, k2[:], []byte(s.service))
	hmacSHA256(scratch, k3[:], []byte("aws4_request"))
}

// Scope returns "{date}/{region}/{service}/aws4_request" for now.
func (s *Signer) Scope(now time.Time) string {
	return now.UTC().Format(ISO8601Date) + s.scopeTail[:len(s.scopeTail)-1]
}

// Credential returns "{accessKey}/{scope}".
func (s *Signer) Credential(now time.Time) string {
	return s.accessKey + "/" + s.Scope(now)
}

// SignedRequest holds the minimal fields the canonical request needs. Path
// must already be the absolute-path component (no scheme/host), and Query
// must already be canonicalized (see urlcodec.AppendCanonicalQuery).
type SignedRequest struct {
	Method      string
	Path        string
	Query       string
	Host        string
	PayloadHash string
}

// signedHeaderNames is the fixed, already-sorted signed-header list THE
// CORE ever emits.
const signedHeaderNames = "host;x-amz-content-sha256;x-amz-date"

// canonicalRequest builds the canonical request string for req, using
// amzDate (already formatted) as the x-amz-date header value.
func (s *Signer) canonicalRequest(req SignedRequest, amzDate string) string {
	buf := bufpool.NewCharBuffer(nil)
	buf.AppendString(req.Method)
	buf.AppendByte('\n')
	buf.AppendString(req.Path)
	buf.AppendByte('\n')
	buf.AppendString(req.Query)
	buf.AppendByte('\n')

	buf.AppendString("host:")
	buf.AppendString(req.Host)
	buf.AppendByte('\n')
	buf.AppendString("x-amz-content-sha256:")
	buf.AppendString(req.PayloadHash)
	buf.AppendByte('\n')
	buf.AppendString("x-amz-date:")
	buf.AppendString(amzDate)
	buf.AppendByte('\n')
	buf.AppendByte('\n')

	buf.AppendString(signedHeaderNames)
	buf.AppendByte('\n')
	buf.AppendString(req.PayloadHash)

	return buf.Flush()
}

func (s *Signer) stringToSign(canonicalRequest string, now time.Time) string {
	buf := bufpool.NewCharBuffer(nil)
	buf.AppendString(algorithm)
	buf.AppendByte('\n')
	buf.AppendTime(now, ISO8601DateTime)
	buf.AppendByte('\n')
	buf.AppendString(s.Scope(now))
	buf.AppendByte('\n')
	buf.AppendString(hashutil.SHA256HexString(canonicalRequest))
	return buf.Flush()
}

// Sign computes the signature hex for req at time now and returns the
// SignedHeaders list name alongside it (always signedHeaderNames for this
// client, returned for callers that assemble the Authorization header).
func (s *Signer) Sign(req SignedRequest, now time.Time) (signedHeaders, signature string) {
	amzDate := now.UTC().Format(ISO8601DateTime)
	canonical := s.canonicalRequest(req, amzDate)
	toSign := s.stringToSign(canonical, now)

	var key [32]byte
	s.DeriveKey(now, &key)

	var sig [32]byte
	hmacSHA256(&sig, key[:], []byte(toSign))

	return signedHeaderNames, hashutil.Hex(sig[:])
}

// Authorization builds the full Authorization header value for req at time
// now.
func (s *Signer) Authorization(req SignedRequest, now time.Time) string {
	signedHeaders, signature := s.Sign(req, now)
	buf := bufpool.NewCharBuffer(nil)
	buf.AppendString(algorithm)
	buf.AppendByte(' ')
	buf.AppendString("Credential=")
	buf.AppendString(s.Credential(now))
	buf.AppendString(", SignedHeaders=")
	buf.AppendString(signedHeaders)
	buf.AppendString(", Signature=")
	buf.AppendString(signature)
	return buf.Flush()
}

// presignedCanonicalRequest builds the canonical request for a presigned URL:
// only "host" is signed, payload is UNSIGNED-PAYLOAD, and the query string is
// the raw (already-built, unsorted-but-correct-by-construction) query without
// its leading '?'. method must match the HTTP verb the caller will actually
// issue against the resulting URL, or the server's own signature
// recomputation (which uses the real request method) will never match.
func (s *Signer) presignedCanonicalRequest(method, path, host, rawQuery string) string {
	buf := bufpool.NewCharBuffer(nil)
	buf.AppendString(method)
	buf.AppendByte('\n')
	buf.AppendString(path)
	buf.AppendByte('\n')
	buf.AppendString(rawQuery)
	buf.AppendString("\nhost:")
	buf.AppendString(host)
	buf.AppendString("\n\nhost\nUNSIGNED-PAYLOAD")
	return buf.Flush()
}

// PresignSignature computes the X-Amz-Signature value for a presigned URL
// for method (e.g. "GET", "PUT") whose query string (rawQuery, without
// leading '?') already carries every other X-Amz-* parameter in the order
// required by §4.6.
func (s *Signer) PresignSignature(method, path, host, rawQuery string, now time.Time) string {
	canonical := s.presignedCanonicalRequest(method, path, host, rawQuery)
	toSign := s.stringToSign(canonical, now)

	var key [32]byte
	s.DeriveKey(now, &key)

	var sig [32]byte
	hmacSHA256(&sig, key[:], []byte(toSign))
	return hashutil.Hex(sig[:])
}

// ExpiresSeconds formats a TTL as the integer-seconds string X-Amz-Expires
// expects.
func ExpiresSeconds(ttl time.Duration) string {
	return strconv.FormatInt(int64(ttl/time.Second), 10)
}

// EncodedCredentialScope returns the credential string with '/' replaced by
// its percent-encoded form, as required inside an already-encoded query
// value (X-Amz-Credential).
func EncodedCredentialScope(credential string) string {
	return strings.ReplaceAll(credential, "/", "%2F")
}
