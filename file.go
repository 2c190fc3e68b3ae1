package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
	"github.com/teoadal/Storage-sub000/internal/hashutil"
	"github.com/teoadal/Storage-sub000/internal/urlcodec"
	"github.com/teoadal/Storage-sub000/internal/xmlscan"
)

// singlePutThreshold is the largest body UploadFile will send as one PUT;
// anything larger, of zero, or of unknown length goes through the
// multipart engine instead, per the verb table.
const singlePutThreshold = 5 * 1024 * 1024

// DeleteFile issues DELETE /{name}.
func (bc *BucketClient) DeleteFile(ctx context.Context, name string) (bool, error) {
	encoded := urlcodec.EncodeName(name)
	resp, err := bc.do(ctx, requestSpec{
		method:      "DELETE",
		path:        "/" + encoded,
		bodyLength:  0,
		payloadHash: hashutil.EmptyPayloadHash,
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 204:
		return true, nil
	default:
		return false, unexpectedStatus(resp, "DELETE", encoded)
	}
}

// FileExists issues HEAD /{name}.
func (bc *BucketClient) FileExists(ctx context.Context, name string) (bool, error) {
	encoded := urlcodec.EncodeName(name)
	resp, err := bc.do(ctx, requestSpec{
		method:      "HEAD",
		path:        "/" + encoded,
		bodyLength:  0,
		payloadHash: hashutil.EmptyPayloadHash,
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, unexpectedStatus(resp, "HEAD", encoded)
	}
}

// GetFile issues GET /{name}. The returned StorageFile is always non-nil
// on a nil error; check StorageFile.Exists before reading its Body.
func (bc *BucketClient) GetFile(ctx context.Context, name string) (*StorageFile, error) {
	encoded := urlcodec.EncodeName(name)
	resp, err := bc.do(ctx, requestSpec{
		method:      "GET",
		path:        "/" + encoded,
		bodyLength:  0,
		payloadHash: hashutil.EmptyPayloadHash,
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case 200:
		return newStorageFile(resp, true), nil
	case 404:
		resp.Body.Close()
		return newStorageFile(nil, false), nil
	default:
		defer resp.Body.Close()
		return nil, unexpectedStatus(resp, "GET", encoded)
	}
}

// PutFile issues PUT /{name} with body of the given length and content
// type, reading exactly length bytes from body.
func (bc *BucketClient) PutFile(ctx context.Context, name, contentType string, body io.Reader, length int64) (bool, error) {
	encoded := urlcodec.EncodeName(name)

	hash, err := hashBody(body, length)
	if err != nil {
		return false, err
	}
	if hash.buf != nil {
		defer bufpool.BigBytes.Put(hash.buf)
	}

	resp, err := bc.do(ctx, requestSpec{
		method:      "PUT",
		path:        "/" + encoded,
		body:        hash.reader,
		bodyLength:  length,
		payloadHash: hash.hex,
		contentType: contentType,
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	default:
		return false, unexpectedStatus(resp, "PUT", encoded)
	}
}

// UploadFile dispatches to a single PUT when length is known, non-zero,
// and at most singlePutThreshold; otherwise it drives the multipart
// engine. It returns a single success boolean per the convenience
// contract.
func (bc *BucketClient) UploadFile(ctx context.Context, name, contentType string, body io.Reader, length int64) (bool, error) {
	if length > 0 && length <= singlePutThreshold {
		return bc.PutFile(ctx, name, contentType, body, length)
	}

	handle, err := bc.BeginUpload(ctx, name, contentType)
	if err != nil {
		return false, err
	}

	ok, err := handle.AddParts(ctx, body)
	if err != nil || !ok {
		_, abortErr := handle.Abort(context.Background())
		_ = abortErr
		return false, err
	}

	return handle.Complete(ctx)
}

// List lazily yields object keys under prefix (pass "" for none). Iteration
// stops at the first error or once the response body is exhausted.
func (bc *BucketClient) List(ctx context.Context, prefix string) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		query := "list-type=2"
		if prefix != "" {
			query += "&prefix=" + urlcodec.EncodeName(prefix)
		}

		resp, err := bc.do(ctx, requestSpec{
			method:      "GET",
			path:        "/",
			rawQuery:    query,
			bodyLength:  0,
			payloadHash: hashutil.EmptyPayloadHash,
		})
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			yield("", unexpectedStatus(resp, "GET", "/"))
			return
		}

		br := bufpool.GetByteReader(resp.Body)
		defer bufpool.PutByteReader(br)

		scratch := bufpool.BigBytes.Get(0)
		defer bufpool.BigBytes.Put(scratch)

		for {
			value, err := xmlscan.ReadScalar(br, "Key", scratch)
			if err != nil {
				yield("", err)
				return
			}
			if len(value) == 0 {
				return
			}
			if !yield(string(value), nil) {
				return
			}
		}
	}
}

// BuildFileURL composes a presigned GET URL for name, valid for ttl. This
// never touches the network.
func (bc *BucketClient) BuildFileURL(name string, ttl time.Duration) string {
	return bc.presignGetURL("/"+urlcodec.EncodeName(name), ttl)
}

// GetFileURL is build_file_url guarded by a HEAD check: it returns ("", nil)
// when the object doesn't exist instead of handing back a URL that will
// 404.
func (bc *BucketClient) GetFileURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	exists, err := bc.FileExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}
	return bc.BuildFileURL(name, ttl), nil
}

type hashedBody struct {
	reader io.Reader
	hex    string
	// buf is the BigBytes-pooled backing array for reader, non-nil whenever
	// one was rented. The caller must Put it back once the request body has
	// been fully sent.
	buf []byte
}

// hashBody computes the payload hash for a PUT body. S3 requires the
// SHA-256 of the exact bytes sent, so the body is buffered once into a
// pooled array sized to length (bounded by singlePutThreshold for any
// caller that routes through PutFile via UploadFile's dispatch).
func hashBody(body io.Reader, length int64) (hashedBody, error) {
	if length == 0 || body == nil {
		return hashedBody{reader: http.NoBody, hex: hashutil.EmptyPayloadHash}, nil
	}

	buf := bufpool.BigBytes.Get(int(length))
	if _, err := io.ReadFull(body, buf); err != nil {
		bufpool.BigBytes.Put(buf)
		return hashedBody{}, err
	}

	hex := hashutil.SHA256Hex(buf)
	return hashedBody{reader: bytes.NewReader(buf), hex: hex, buf: buf}, nil
}
