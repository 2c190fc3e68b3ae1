package storage

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/teoadal/Storage-sub000/internal/bufpool"
)

// UploadFileSharded uploads one object as a single multipart session (one
// BeginUpload, one uploadID) whose parts are fetched and PUT concurrently by
// shardCount goroutines, each driving its own contiguous, non-overlapping
// range of part numbers over an independent io.SectionReader into source.
// Every part belongs to the same server-side session, so Complete sees one
// dense 1..N PartNumber sequence regardless of which goroutine uploaded
// which part. source must support ReadAt (e.g. an *os.File or
// bytes.Reader); length must be known and positive.
//
// This is an enrichment over the core single-handle engine: a caller who
// just wants correctness should use UploadFile instead.
func (bc *BucketClient) UploadFileSharded(ctx context.Context, name, contentType string, source io.ReaderAt, length int64, shardCount int) (bool, error) {
	if shardCount < 1 {
		shardCount = 1
	}
	if length <= 0 {
		return false, errInvalidShardedLength
	}

	totalParts := int((length + DefaultPartSize - 1) / DefaultPartSize)
	if totalParts < 1 {
		totalParts = 1
	}
	if shardCount > totalParts {
		shardCount = totalParts
	}

	handle, err := bc.BeginUpload(ctx, name, contentType)
	if err != nil {
		return false, err
	}

	etags := bufpool.PartStrings.Get(totalParts)[:totalParts]

	partsPerShard := (totalParts + shardCount - 1) / shardCount

	group, gctx := errgroup.WithContext(ctx)
	for firstPart := 1; firstPart <= totalParts; firstPart += partsPerShard {
		lastPart := firstPart + partsPerShard - 1
		if lastPart > totalParts {
			lastPart = totalParts
		}

		offset := int64(firstPart-1) * DefaultPartSize
		size := int64(lastPart-firstPart+1) * DefaultPartSize
		if lastPart == totalParts {
			size = length - offset
		}

		firstPart, lastPart, offset, size := firstPart, lastPart, offset, size
		group.Go(func() error {
			section := io.NewSectionReader(source, offset, size)
			return uploadPartRange(gctx, handle, firstPart, lastPart, section, etags)
		})
	}

	if err := group.Wait(); err != nil {
		bufpool.PartStrings.Put(etags)
		_, _ = handle.Abort(context.Background())
		return false, err
	}

	bufpool.PartStrings.Put(handle.etags)
	handle.etags = etags
	handle.written = length

	return handle.Complete(ctx)
}

// uploadPartRange uploads the parts [firstPart, lastPart] (1-based,
// inclusive) of one multipart session by reading r in DefaultPartSize
// chunks, writing each resulting ETag into etags at its own index. Distinct
// goroutines write distinct indices of the same etags slice, which is safe
// without synchronization since no two goroutines ever touch the same
// element.
func uploadPartRange(ctx context.Context, handle *UploadHandle, firstPart, lastPart int, r io.Reader, etags []string) error {
	scratch := bufpool.BigBytes.Get(DefaultPartSize)
	defer bufpool.BigBytes.Put(scratch)

	for partNumber := firstPart; partNumber <= lastPart; partNumber++ {
		n, readErr := readUntilFull(r, scratch)
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if n == 0 {
			return ErrPartUploadFailed
		}

		etag, ok, err := handle.client.putPart(ctx, handle.encodedName, handle.uploadID, partNumber, scratch[:n])
		if err != nil {
			return err
		}
		if !ok {
			return ErrPartUploadFailed
		}
		etags[partNumber-1] = etag
	}
	return nil
}
