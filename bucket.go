package storage

import (
	"context"

	"github.com/teoadal/Storage-sub000/internal/hashutil"
)

// CreateBucket issues PUT / against the session's bucket. It reports false
// (not an error) when the bucket already exists.
func (bc *BucketClient) CreateBucket(ctx context.Context) (bool, error) {
	resp, err := bc.do(ctx, requestSpec{
		method:      "PUT",
		path:        "/",
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
	case 409:
		return false, nil
	default:
		return false, unexpectedStatus(resp, "PUT", "/")
	}
}

// BucketExists issues HEAD / against the session's bucket.
func (bc *BucketClient) BucketExists(ctx context.Context) (bool, error) {
	resp, err := bc.do(ctx, requestSpec{
		method:      "HEAD",
		path:        "/",
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
		return false, unexpectedStatus(resp, "HEAD", "/")
	}
}

// DeleteBucket issues DELETE / against the session's bucket. It reports
// false (not an error) when the bucket was already gone.
func (bc *BucketClient) DeleteBucket(ctx context.Context) (bool, error) {
	resp, err := bc.do(ctx, requestSpec{
		method:      "DELETE",
		path:        "/",
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
	case 404:
		return false, nil
	default:
		return false, unexpectedStatus(resp, "DELETE", "/")
	}
}
