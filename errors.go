package storage

import (
	"fmt"

	stderrors "errors"
)

// Sentinel errors per the spec's error taxonomy. Soft outcomes (bucket
// exists, file exists, a failed AddPart) are never represented this way
// — only states that cannot be expressed as a normal bool/struct return are
// raised as errors.
var (
	// ErrInvalidSettings is returned by NewBucketClient when a required
	// Settings field is missing or malformed.
	ErrInvalidSettings = stderrors.New("storage: invalid settings")

	// ErrClosed is returned by any operation issued after the
	// BucketClient or UploadHandle has been disposed.
	ErrClosed = stderrors.New("storage: client closed")

	// ErrPartUploadFailed is returned by UploadFileSharded when one of its
	// worker shards fails to upload a part.
	ErrPartUploadFailed = stderrors.New("storage: part upload failed")

	errInvalidShardedLength = stderrors.New("storage: UploadFileSharded requires a known positive length")
	errInvalidPartNumber    = stderrors.New("storage: partNumber must be between 1 and 10000")
)

// UnexpectedStatusError is returned when the server responds with a status
// code not enumerated as a soft outcome for the verb in question.
type UnexpectedStatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("storage: unexpected status %d for %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf("storage: unexpected status %d for %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}
