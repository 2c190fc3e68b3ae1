package storage

import (
	"crypto/tls"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teoadal/Storage-sub000/internal/signer"
)

// BucketClient is a session bound to one bucket. It owns exactly one HTTP
// transport handle unless the caller injected one via WithHTTPClient, in
// which case the transport is shared and left open on Close. Close may be
// called any number of times; operations after disposal fail with ErrClosed.
type BucketClient struct {
	settings Settings
	signer   *signer.Signer
	logger   *logrus.Logger

	httpClient    *http.Client
	ownsTransport bool

	// urlPrefix is "{scheme}://{host}[:{port}]/{bucket-lowercased}",
	// precomputed once so every request assembles its path by simple
	// string concatenation.
	urlPrefix string
	// hostHeader is "{host}[:{port}]", the literal Host/canonical-header
	// value — always the real TCP target, never the bucket vhost.
	hostHeader string

	closed int32
}

// Option configures a BucketClient at construction time.
type Option func(*BucketClient)

// WithHTTPClient injects a shared *http.Client. The client is not closed by
// BucketClient.Close.
func WithHTTPClient(c *http.Client) Option {
	return func(bc *BucketClient) {
		bc.httpClient = c
		bc.ownsTransport = false
	}
}

// NewBucketClient validates settings and constructs a client bound to
// settings.Bucket. Settings are copied; the caller's struct may be reused
// or discarded afterwards.
func NewBucketClient(settings Settings, opts ...Option) (*BucketClient, error) {
	normalized, err := settings.normalized()
	if err != nil {
		return nil, err
	}

	bc := &BucketClient{
		settings:   normalized,
		signer:     signer.New(normalized.AccessKey, normalized.SecretKey, normalized.Region, normalized.Service),
		logger:     normalized.Logger,
		hostHeader: normalized.hostHeader(),
		urlPrefix:  normalized.scheme() + "://" + normalized.hostHeader() + "/" + strings.ToLower(normalized.Bucket),
	}

	for _, opt := range opts {
		opt(bc)
	}

	if bc.httpClient == nil {
		bc.httpClient = defaultHTTPClient(normalized.UseHTTP2)
		bc.ownsTransport = true
	}

	return bc, nil
}

func defaultHTTPClient(useHTTP2 bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ForceAttemptHTTP2 = useHTTP2
	if !useHTTP2 {
		// An empty (non-nil) TLSNextProto map disables Go's opportunistic
		// ALPN upgrade to h2, making HTTP/2 negotiation an explicit opt-in
		// per Settings.UseHTTP2 rather than whatever the server offers.
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	}
	return &http.Client{Transport: transport}
}

// Close disposes the client. If it owns the HTTP transport, idle
// connections are closed. Safe to call multiple times.
func (bc *BucketClient) Close() error {
	if !atomic.CompareAndSwapInt32(&bc.closed, 0, 1) {
		return nil
	}
	if bc.ownsTransport {
		if t, ok := bc.httpClient.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
	}
	return nil
}

func (bc *BucketClient) isClosed() bool {
	return atomic.LoadInt32(&bc.closed) != 0
}

// now is overridable only in tests via a package-level var, matching the
// spec's "pure given (request, payload-hash, timestamp, ...)" determinism
// requirement for the signer while letting the client itself just ask for
// wall-clock time.
var now = func() time.Time { return time.Now().UTC() }
