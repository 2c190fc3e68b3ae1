package storage

import (
	"io"
	"net/http"
	"strconv"
)

// StorageFile wraps one HTTP response from GetFile. Disposing it (Close)
// releases the connection back to the transport's pool. The body stream,
// once obtained via Body, takes co-ownership of the response: closing the
// stream also disposes the response, so callers only ever need to close
// one of the two.
type StorageFile struct {
	resp   *http.Response
	Exists bool
}

func newStorageFile(resp *http.Response, exists bool) *StorageFile {
	return &StorageFile{resp: resp, Exists: exists}
}

// ContentType is the response's Content-Type header, empty if absent.
func (f *StorageFile) ContentType() string {
	if f.resp == nil {
		return ""
	}
	return f.resp.Header.Get("Content-Type")
}

// Length is the response's Content-Length, or -1 if the server didn't send
// one.
func (f *StorageFile) Length() int64 {
	if f.resp == nil {
		return -1
	}
	if f.resp.ContentLength >= 0 {
		return f.resp.ContentLength
	}
	if v := f.resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return -1
}

// StatusCode is the raw HTTP status of the underlying response.
func (f *StorageFile) StatusCode() int {
	if f.resp == nil {
		return 0
	}
	return f.resp.StatusCode
}

// Body returns the lazy response body stream. Closing it disposes the
// underlying response as well; callers must not call StorageFile.Close
// afterwards on a separate goroutine expecting the body to still be valid.
func (f *StorageFile) Body() io.ReadCloser {
	if f.resp == nil {
		return http.NoBody
	}
	return f.resp.Body
}

// Close releases the connection back to the pool without reading the body
// to completion. Safe to call on a file that was never read.
func (f *StorageFile) Close() error {
	if f.resp == nil || f.resp.Body == nil {
		return nil
	}
	return f.resp.Body.Close()
}
