package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeMultipartServer struct {
	parts       map[string][]byte
	completed   bool
	aborted     bool
	failPart    int
	partsServed int
}

func (s *fakeMultipartServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case r.Method == http.MethodPost && query.Has("uploads"):
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, `<InitiateMultipartUploadResult><UploadId>test-upload-id</UploadId></InitiateMultipartUploadResult>`)

		case r.Method == http.MethodPut && query.Get("uploadId") != "":
			s.partsServed++
			if s.partsServed == s.failPart {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			body, _ := io.ReadAll(r.Body)
			partNumber := query.Get("partNumber")
			s.parts[partNumber] = body
			w.Header().Set("ETag", fmt.Sprintf("%q", "etag-"+partNumber))
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodPost && query.Get("uploadId") != "":
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "<CompleteMultipartUpload>") {
				t.Fatalf("unexpected complete body: %s", body)
			}
			s.completed = true
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodDelete && query.Get("uploadId") != "":
			s.aborted = true
			w.WriteHeader(http.StatusNoContent)

		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.String())
		}
	}
}

func TestMultipartUploadHappyPath(t *testing.T) {
	fake := &fakeMultipartServer{parts: map[string][]byte{}}
	bc, _ := newTestClient(t, fake.handler(t))

	handle, err := bc.BeginUpload(context.Background(), "big.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}
	if handle.UploadID() != "test-upload-id" {
		t.Fatalf("got upload id %q", handle.UploadID())
	}

	part1 := bytes.Repeat([]byte{0xAA}, DefaultPartSize)
	part2 := bytes.Repeat([]byte{0xBB}, 1024)

	ok, err := handle.AddPart(context.Background(), part1, len(part1))
	if err != nil || !ok {
		t.Fatalf("AddPart 1: ok=%v err=%v", ok, err)
	}
	ok, err = handle.AddPart(context.Background(), part2, len(part2))
	if err != nil || !ok {
		t.Fatalf("AddPart 2: ok=%v err=%v", ok, err)
	}

	if handle.Written() != int64(len(part1)+len(part2)) {
		t.Fatalf("got written %d, want %d", handle.Written(), len(part1)+len(part2))
	}

	ok, err = handle.Complete(context.Background())
	if err != nil || !ok {
		t.Fatalf("Complete: ok=%v err=%v", ok, err)
	}
	if !fake.completed {
		t.Fatal("expected server to observe a complete request")
	}

	if _, err := handle.AddPart(context.Background(), part2, len(part2)); err != ErrClosed {
		t.Fatalf("expected ErrClosed after Complete, got %v", err)
	}
}

func TestMultipartAddPartsDrivesExactPartSplit(t *testing.T) {
	fake := &fakeMultipartServer{parts: map[string][]byte{}}
	bc, _ := newTestClient(t, fake.handler(t))

	handle, err := bc.BeginUpload(context.Background(), "twelve.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}

	const total = 12 * 1024 * 1024
	data := bytes.Repeat([]byte{0x01}, total)

	ok, err := handle.AddParts(context.Background(), bytes.NewReader(data))
	if err != nil || !ok {
		t.Fatalf("AddParts: ok=%v err=%v", ok, err)
	}

	if handle.partCount() != 3 {
		t.Fatalf("got %d parts, want 3", handle.partCount())
	}
	if len(fake.parts["1"]) != DefaultPartSize || len(fake.parts["2"]) != DefaultPartSize {
		t.Fatalf("expected first two parts of %d bytes", DefaultPartSize)
	}
	if len(fake.parts["3"]) != total-2*DefaultPartSize {
		t.Fatalf("got final part size %d, want %d", len(fake.parts["3"]), total-2*DefaultPartSize)
	}

	ok, err = handle.Complete(context.Background())
	if err != nil || !ok {
		t.Fatalf("Complete: ok=%v err=%v", ok, err)
	}
}

func TestMultipartAbortOnPartFailure(t *testing.T) {
	fake := &fakeMultipartServer{parts: map[string][]byte{}, failPart: 2}
	bc, _ := newTestClient(t, fake.handler(t))

	handle, err := bc.BeginUpload(context.Background(), "fails.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}

	part := bytes.Repeat([]byte{0x02}, 1024)
	ok, err := handle.AddPart(context.Background(), part, len(part))
	if err != nil || !ok {
		t.Fatalf("AddPart 1: ok=%v err=%v", ok, err)
	}

	ok, err = handle.AddPart(context.Background(), part, len(part))
	if err != nil {
		t.Fatalf("AddPart 2 returned error instead of false: %v", err)
	}
	if ok {
		t.Fatal("expected AddPart 2 to fail")
	}

	aborted, err := handle.Abort(context.Background())
	if err != nil || !aborted {
		t.Fatalf("Abort: aborted=%v err=%v", aborted, err)
	}
	if !fake.aborted {
		t.Fatal("expected server to observe an abort request")
	}

	if _, err := handle.AddPart(context.Background(), part, len(part)); err != ErrClosed {
		t.Fatalf("expected ErrClosed after Abort, got %v", err)
	}
}

func TestCompleteWithNoPartsReturnsFalse(t *testing.T) {
	fake := &fakeMultipartServer{parts: map[string][]byte{}}
	bc, _ := newTestClient(t, fake.handler(t))

	handle, err := bc.BeginUpload(context.Background(), "empty.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}

	ok, err := handle.Complete(context.Background())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if ok {
		t.Fatal("expected Complete to return false with zero parts")
	}
	if fake.completed {
		t.Fatal("expected no request to be sent for an empty complete")
	}
}

func TestBuildCompleteBodyOrdersPartsByInsertion(t *testing.T) {
	body := buildCompleteBody([]string{`"etag-1"`, `"etag-2"`, `"etag-3"`})

	wantOrder := []string{"<PartNumber>1</PartNumber><ETag>\"etag-1\"", "<PartNumber>2</PartNumber><ETag>\"etag-2\"", "<PartNumber>3</PartNumber><ETag>\"etag-3\""}
	lastIdx := -1
	for _, frag := range wantOrder {
		idx := strings.Index(body, frag)
		if idx < 0 {
			t.Fatalf("expected %q in body %q", frag, body)
		}
		if idx < lastIdx {
			t.Fatalf("fragments out of order in body %q", body)
		}
		lastIdx = idx
	}
}
