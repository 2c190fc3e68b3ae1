package storage

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teoadal/Storage-sub000/internal/signer"
)

// unexpectedStatus drains a bounded slice of the response body (for
// diagnostics only) and wraps it into UnexpectedStatusError.
func unexpectedStatus(resp *http.Response, method, path string) error {
	const maxBody = 4096
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	return &UnexpectedStatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// requestSpec describes one request for the transport wrapper to build,
// sign, and send. path must already be percent-encoded; query must already
// be canonical (see urlcodec.AppendCanonicalQuery) when non-empty.
type requestSpec struct {
	method      string
	path        string // e.g. "/" or "/" + encoded object key
	rawQuery    string // encoded query string, no leading '?', unsorted-safe
	body        io.Reader
	bodyLength  int64 // -1 means unknown length (chunked transfer)
	payloadHash string // hashutil.EmptyPayloadHash for empty bodies
	contentType string
	extraHeader http.Header
}

// do builds, signs, and sends one request, returning the raw *http.Response
// for the caller to dispatch on status code. The caller owns the response
// and must close its body on every path (StorageFile does this).
func (bc *BucketClient) do(ctx context.Context, spec requestSpec) (*http.Response, error) {
	if bc.isClosed() {
		return nil, ErrClosed
	}

	fullPath := "/" + bc.settings.lowerBucket() + spec.path
	targetURL := bc.urlPrefix + spec.path
	if spec.rawQuery != "" {
		targetURL += "?" + spec.rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, targetURL, spec.body)
	if err != nil {
		return nil, errors.Wrap(err, "storage: building request")
	}
	if spec.bodyLength >= 0 {
		req.ContentLength = spec.bodyLength
	} else {
		req.TransferEncoding = []string{"chunked"}
	}
	if spec.contentType != "" {
		req.Header.Set("Content-Type", spec.contentType)
	}
	for k, vs := range spec.extraHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	when := now()
	req.Host = bc.hostHeader
	req.Header.Set("X-Amz-Content-Sha256", spec.payloadHash)
	req.Header.Set("X-Amz-Date", when.Format(signer.ISO8601DateTime))

	signed := signer.SignedRequest{
		Method:      spec.method,
		Path:        fullPath,
		Query:       spec.rawQuery,
		Host:        bc.hostHeader,
		PayloadHash: spec.payloadHash,
	}
	req.Header.Set("Authorization", bc.signer.Authorization(signed, when))

	start := time.Now()
	resp, err := bc.httpClient.Do(req)
	if bc.logger != nil {
		fields := logrus.Fields{
			"method":   spec.method,
			"path":     fullPath,
			"duration": time.Since(start),
		}
		if resp != nil {
			fields["status"] = resp.StatusCode
		}
		if err != nil {
			bc.logger.WithFields(fields).WithError(err).Debug("storage: request failed")
		} else {
			bc.logger.WithFields(fields).Debug("storage: request completed")
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "storage: request cancelled")
		}
		return nil, errors.Wrap(err, "storage: transport error")
	}
	return resp, nil
}

func (s Settings) lowerBucket() string {
	return toLower(s.Bucket)
}

func toLower(s string) string {
	// Bucket names are DNS-safe (lowercase already, by S3 convention) in
	// the overwhelming common case; this only touches the byte path when
	// a caller passes mixed case.
	out := []byte(s)
	changed := false
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(out)
}

// presignGetURL renders the absolute, signed URL for a GET presign,
// following the §4.6 parameter order exactly.
func (bc *BucketClient) presignGetURL(path string, ttl time.Duration) string {
	when := now()
	credential := bc.signer.Credential(when)
	encodedCredential := signer.EncodedCredentialScope(credential)

	query := "X-Amz-Algorithm=AWS4-HMAC-SHA256" +
		"&X-Amz-Credential=" + encodedCredential +
		"&X-Amz-Date=" + when.Format(signer.ISO8601DateTime) +
		"&X-Amz-Expires=" + signer.ExpiresSeconds(ttl) +
		"&X-Amz-SignedHeaders=host"

	fullPath := "/" + bc.settings.lowerBucket() + path
	signature := bc.signer.PresignSignature("GET", fullPath, bc.hostHeader, query, when)

	return bc.urlPrefix + path + "?" + query + "&X-Amz-Signature=" + signature
}
