package storage

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Settings is an immutable description of one S3-compatible endpoint and
// bucket. Construct it once; it is safe to share across any number of
// BucketClients for the process lifetime.
type Settings struct {
	AccessKey string
	SecretKey string
	Bucket    string

	// Host is the DNS name or IP of the endpoint, without scheme or port.
	Host string
	// Port is optional; zero means "use the scheme default".
	Port int

	// Region defaults to "us-east-1" when empty.
	Region string
	// Service defaults to "s3" when empty.
	Service string

	UseTLS   bool
	UseHTTP2 bool

	// Logger, if non-nil, receives structured request tracing from the
	// transport wrapper. A nil Logger keeps the client silent.
	Logger *logrus.Logger
}

const (
	defaultRegion  = "us-east-1"
	defaultService = "s3"
)

// normalized returns a copy of s with defaults applied, or an error if a
// required field is missing.
func (s Settings) normalized() (Settings, error) {
	if s.AccessKey == "" {
		return s, errors.Wrap(ErrInvalidSettings, "access key is required")
	}
	if s.SecretKey == "" {
		return s, errors.Wrap(ErrInvalidSettings, "secret key is required")
	}
	if s.Bucket == "" {
		return s, errors.Wrap(ErrInvalidSettings, "bucket is required")
	}
	if s.Host == "" {
		return s, errors.Wrap(ErrInvalidSettings, "endpoint host is required")
	}
	if s.Region == "" {
		s.Region = defaultRegion
	}
	if s.Service == "" {
		s.Service = defaultService
	}
	return s, nil
}

func (s Settings) scheme() string {
	if s.UseTLS {
		return "https"
	}
	return "http"
}

// hostHeader renders "{host}[:{port}]", the literal value of the Host
// header and the signed "host" canonical header — it must always match the
// actual TCP target for path-style S3 compatibility.
func (s Settings) hostHeader() string {
	if s.Port == 0 {
		return s.Host
	}
	return s.Host + ":" + strconv.Itoa(s.Port)
}
