package fileserver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MirrorConfig describes an optional S3-compatible bucket that stored files
// are replicated into after each successful upload.
type MirrorConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
}

// Enabled reports whether the configuration is complete enough to build a
// mirror.
func (c MirrorConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Mirror replicates uploaded files into an S3-compatible bucket.
type Mirror struct {
	client *minio.Client
	bucket string
}

// normalizeEndpoint accepts either "host:port" or a full "http(s)://host:port"
// URL and returns the host plus whether TLS should be used.
func normalizeEndpoint(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint: %s", raw)
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// NewMirror builds a Mirror from its configuration.
func NewMirror(cfg MirrorConfig) (*Mirror, error) {
	endpoint, secure, err := normalizeEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("mirror endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create mirror client: %w", err)
	}

	return &Mirror{client: client, bucket: cfg.Bucket}, nil
}

// Store writes one object into the mirror bucket. Callers treat failures as
// advisory; the local filesystem copy remains the source of truth.
func (m *Mirror) Store(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := m.client.PutObject(ctx, m.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return fmt.Errorf("mirror put %s: %w", name, err)
	}

	return nil
}
