package storage

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/teoadal/Storage-sub000/internal/signer"
)

func TestGenUploadPartSignedURL(t *testing.T) {
	fixedNow(t)
	bc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("GenUploadPartSignedURL must not issue a network request")
	})

	url, err := bc.GenUploadPartSignedURL("big.bin", 3, "upload-id-123", DefaultPartSize, 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"partNumber=3", "uploadId=upload-id-123", "X-Amz-Signature=", "X-Amz-Expires=900"} {
		if !strings.Contains(url, want) {
			t.Fatalf("expected %q in URL %q", want, url)
		}
	}
}

// TestGenUploadPartSignedURLSignsPUTNotGET guards against regressing to a
// hardcoded GET signature: the signature for a part URL must depend on the
// PUT method a caller will actually send, or S3's own recomputation (using
// the real request method) rejects the upload with SignatureDoesNotMatch.
func TestGenUploadPartSignedURLSignsPUTNotGET(t *testing.T) {
	fixedNow(t)
	bc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("GenUploadPartSignedURL must not issue a network request")
	})

	putURL, err := bc.GenUploadPartSignedURL("big.bin", 1, "upload-id-123", DefaultPartSize, 15*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	when := now()
	credential := bc.signer.Credential(when)
	fullPath := "/" + bc.settings.lowerBucket() + "/big.bin"
	query := "X-Amz-Algorithm=AWS4-HMAC-SHA256" +
		"&X-Amz-Credential=" + signer.EncodedCredentialScope(credential) +
		"&X-Amz-Date=" + when.Format(signer.ISO8601DateTime) +
		"&X-Amz-Expires=900" +
		"&X-Amz-SignedHeaders=host" +
		"&partNumber=1" +
		"&uploadId=upload-id-123"
	getSignature := bc.signer.PresignSignature("GET", fullPath, bc.hostHeader, query, when)

	if strings.Contains(putURL, "X-Amz-Signature="+getSignature) {
		t.Fatal("expected the part URL to be signed for PUT, not GET")
	}
}

func TestGenUploadPartSignedURLRejectsInvalidPartNumber(t *testing.T) {
	bc, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not issue a network request")
	})

	if _, err := bc.GenUploadPartSignedURL("big.bin", 0, "id", 0, time.Minute); err == nil {
		t.Fatal("expected error for partNumber 0")
	}
	if _, err := bc.GenUploadPartSignedURL("big.bin", 10001, "id", 0, time.Minute); err == nil {
		t.Fatal("expected error for partNumber over 10000")
	}
}
