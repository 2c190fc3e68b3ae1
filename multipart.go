package storage

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
	"github.com/teoadal/Storage-sub000/internal/hashutil"
	"github.com/teoadal/Storage-sub000/internal/urlcodec"
	"github.com/teoadal/Storage-sub000/internal/xmlscan"
)

// DefaultPartSize is the minimum and default part size for a multipart
// upload: 5 MiB, matching S3's own minimum for any part but the last.
const DefaultPartSize = 5 * 1024 * 1024

const maxPartCount = 10000

const (
	handleOpen int32 = iota
	handleCompleted
	handleAborted
)

// UploadHandle drives one multipart upload session. It is not safe for
// concurrent method calls: AddPart is ordering-sensitive, writing a
// specific part number and appending to the ETag slice in the order
// callers invoke it.
type UploadHandle struct {
	client      *BucketClient
	encodedName string
	uploadID    string

	etags   []string
	written int64

	state int32
}

// BeginUpload starts a multipart session: POST /{name}?uploads.
func (bc *BucketClient) BeginUpload(ctx context.Context, name, contentType string) (*UploadHandle, error) {
	encoded := urlcodec.EncodeName(name)

	resp, err := bc.do(ctx, requestSpec{
		method:      "POST",
		path:        "/" + encoded,
		rawQuery:    "uploads=",
		bodyLength:  0,
		payloadHash: hashutil.EmptyPayloadHash,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, unexpectedStatus(resp, "POST", encoded)
	}

	br := bufpool.GetByteReader(resp.Body)
	defer bufpool.PutByteReader(br)

	scratch := bufpool.Bytes.Get(0)
	defer bufpool.Bytes.Put(scratch)

	uploadID, err := xmlscan.ReadScalar(br, "UploadId", scratch)
	if err != nil {
		return nil, errors.Wrap(err, "storage: reading UploadId")
	}

	return &UploadHandle{
		client:      bc,
		encodedName: encoded,
		uploadID:    string(uploadID),
		etags:       bufpool.PartStrings.Get(16),
	}, nil
}

func (h *UploadHandle) partCount() int {
	return len(h.etags)
}

// Written reports the cumulative byte count of every part recorded so far.
func (h *UploadHandle) Written() int64 {
	return h.written
}

// UploadID is the server-assigned session identifier.
func (h *UploadHandle) UploadID() string {
	return h.uploadID
}

func (h *UploadHandle) isOpen() bool {
	return atomic.LoadInt32(&h.state) == handleOpen
}

// AddPart uploads data[:length] as the next part number (dense, 1-based).
// On success it records the ETag and returns true; on any other outcome it
// returns false without recording, leaving the handle open for the caller
// to retry add_part or call Abort.
func (h *UploadHandle) AddPart(ctx context.Context, data []byte, length int) (bool, error) {
	if !h.isOpen() {
		return false, ErrClosed
	}
	if h.partCount() >= maxPartCount {
		return false, errors.New("storage: multipart part count exceeds 10000")
	}

	partNumber := h.partCount() + 1
	etag, ok, err := h.client.putPart(ctx, h.encodedName, h.uploadID, partNumber, data[:length])
	if err != nil || !ok {
		return false, err
	}

	h.etags = appendETag(h.etags, etag)
	h.written += int64(length)
	return true, nil
}

// putPart issues one PUT /{name}?partNumber={n}&uploadId={id} for a single
// multipart part and reports its ETag. It carries no UploadHandle state, so
// unlike AddPart it is safe to call concurrently across goroutines driving
// distinct part numbers under the same uploadID (the sharded upload engine
// relies on this).
func (bc *BucketClient) putPart(ctx context.Context, encodedName, uploadID string, partNumber int, body []byte) (etag string, ok bool, err error) {
	query := "partNumber=" + strconv.Itoa(partNumber) + "&uploadId=" + uploadID
	hex := hashutil.SHA256Hex(body)

	resp, err := bc.do(ctx, requestSpec{
		method:      "PUT",
		path:        "/" + encodedName,
		rawQuery:    query,
		body:        bytes.NewReader(body),
		bodyLength:  int64(len(body)),
		payloadHash: hex,
	})
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", false, nil
	}
	etag = resp.Header.Get("ETag")
	if etag == "" {
		return "", false, nil
	}
	return etag, true, nil
}

func appendETag(etags []string, etag string) []string {
	if len(etags) == cap(etags) {
		grown := bufpool.PartStrings.Get(cap(etags) * 2)
		grown = append(grown, etags...)
		bufpool.PartStrings.Put(etags)
		etags = grown
	}
	return append(etags, etag)
}

// AddParts reads r to completion (via readUntilFull against a pooled
// DefaultPartSize scratch buffer) feeding each filled slice to AddPart. It
// returns true on clean EOF, false at the first failed part.
func (h *UploadHandle) AddParts(ctx context.Context, r io.Reader) (bool, error) {
	scratch := bufpool.BigBytes.Get(DefaultPartSize)
	defer bufpool.BigBytes.Put(scratch)

	for {
		n, readErr := readUntilFull(r, scratch)
		if n > 0 {
			ok, err := h.AddPart(ctx, scratch, n)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		if readErr == io.EOF {
			return true, nil
		}
		if readErr != nil {
			return false, readErr
		}
		if n == 0 {
			return true, nil
		}
	}
}

// readUntilFull reads from r until buf is full or r returns EOF, returning
// the number of bytes read and io.EOF only once the stream is exhausted
// (a short final read that isn't EOF keeps looping, matching io.ReadFull's
// semantics but tolerating a clean EOF on the first read of an empty
// remainder).
func readUntilFull(r io.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				return total, io.EOF
			}
			return total, err
		}
		if n == 0 {
			return total, io.EOF
		}
	}
	return total, nil
}

// Complete commits the multipart session: POST /{name}?uploadId={id} with
// the CompleteMultipartUpload XML body. If no parts were added, it returns
// false without issuing a request.
func (h *UploadHandle) Complete(ctx context.Context) (bool, error) {
	if !h.isOpen() {
		return false, ErrClosed
	}
	if h.partCount() == 0 {
		return false, nil
	}

	body := buildCompleteBody(h.etags)
	hex := hashutil.SHA256Hex([]byte(body))

	resp, err := h.client.do(ctx, requestSpec{
		method:      "POST",
		path:        "/" + h.encodedName,
		rawQuery:    "uploadId=" + h.uploadID,
		body:        bytes.NewReader([]byte(body)),
		bodyLength:  int64(len(body)),
		payloadHash: hex,
		contentType: "application/xml",
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return false, nil
	}

	atomic.StoreInt32(&h.state, handleCompleted)
	h.release()
	return true, nil
}

// Abort issues DELETE /{name}?uploadId={id}, a best-effort cleanup: network
// errors are swallowed rather than surfaced, per spec. ctx is independent
// of whatever context drove the failed upload, since cleanup should still
// run after the caller's own cancellation.
func (h *UploadHandle) Abort(ctx context.Context) (bool, error) {
	if !h.isOpen() {
		return false, ErrClosed
	}

	resp, err := h.client.do(ctx, requestSpec{
		method:      "DELETE",
		path:        "/" + h.encodedName,
		rawQuery:    "uploadId=" + h.uploadID,
		bodyLength:  0,
		payloadHash: hashutil.EmptyPayloadHash,
	})

	atomic.StoreInt32(&h.state, handleAborted)
	h.release()

	if err != nil {
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode == 204, nil
}

func (h *UploadHandle) release() {
	if h.etags != nil {
		bufpool.PartStrings.Put(h.etags)
		h.etags = nil
	}
}

// buildCompleteBody renders the CompleteMultipartUpload XML, parts in
// ascending PartNumber matching insertion order, through a pooled
// CharBuffer rather than strings.Builder/fmt.
func buildCompleteBody(etags []string) string {
	buf := bufpool.NewCharBuffer(bufpool.BigBytes)
	buf.AppendString("<CompleteMultipartUpload>")
	for i, etag := range etags {
		buf.AppendString("<Part><PartNumber>")
		buf.AppendInt(int64(i + 1))
		buf.AppendString("</PartNumber><ETag>")
		buf.AppendString(etag)
		buf.AppendString("</ETag></Part>")
	}
	buf.AppendString("</CompleteMultipartUpload>")
	return buf.Flush()
}
