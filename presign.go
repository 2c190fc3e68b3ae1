package storage

import (
	"strconv"
	"time"

	"github.com/teoadal/Storage-sub000/internal/signer"
	"github.com/teoadal/Storage-sub000/internal/urlcodec"
)

// GenUploadPartSignedURL returns a presigned PUT URL for one multipart
// part, letting a caller upload the part directly (e.g. from a browser or
// a worker without server credentials) against an upload session already
// begun via BeginUpload. size is advisory only: it is not part of the URL
// or the signature, which signs the host header alone with an
// UNSIGNED-PAYLOAD body hash.
func (bc *BucketClient) GenUploadPartSignedURL(name string, partNumber int, uploadID string, size int64, ttl time.Duration) (string, error) {
	if partNumber < 1 || partNumber > maxPartCount {
		return "", errInvalidPartNumber
	}
	encoded := urlcodec.EncodeName(name)
	path := "/" + bc.settings.lowerBucket() + "/" + encoded

	when := now()
	credential := bc.signer.Credential(when)
	encodedCredential := signer.EncodedCredentialScope(credential)

	query := "X-Amz-Algorithm=AWS4-HMAC-SHA256" +
		"&X-Amz-Credential=" + encodedCredential +
		"&X-Amz-Date=" + when.Format(signer.ISO8601DateTime) +
		"&X-Amz-Expires=" + signer.ExpiresSeconds(ttl) +
		"&X-Amz-SignedHeaders=host" +
		"&partNumber=" + strconv.Itoa(partNumber) +
		"&uploadId=" + uploadID

	signature := bc.signer.PresignSignature("PUT", path, bc.hostHeader, query, when)

	url := bc.urlPrefix + "/" + encoded + "?" + query + "&X-Amz-Signature=" + signature
	return url, nil
}
