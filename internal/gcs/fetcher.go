// Package gcs fetches point-of-sale exports stored in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrTooLarge is returned when an object exceeds the fetcher's size limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// Fetcher is the Cloud Storage implementation of ObjectFetcher.
type Fetcher struct {
	maxBytes int64
	opts     []option.ClientOption
}

// NewFetcher creates a fetcher that refuses objects larger than maxBytes.
// A maxBytes of zero disables the limit.
func NewFetcher(maxBytes int64, opts ...option.ClientOption) *Fetcher {
	return &Fetcher{maxBytes: maxBytes, opts: opts}
}

// ClientOptions builds storage client options. An endpoint, such as a local
// emulator, is used without authentication; otherwise the credentials file,
// when set, replaces Application Default Credentials.
func ClientOptions(endpoint, credentialsFile string) []option.ClientOption {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
		return opts
	}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return opts
}

// Fetch downloads the object bytes at the given gs:// URI.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucketName, objectPath, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, f.opts...)
	if err != nil {
		return nil, fmt.Errorf("fetch: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	if f.maxBytes > 0 && rc.Attrs.Size > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: %d bytes: %w", uri, rc.Attrs.Size, ErrTooLarge)
	}

	return readLimited(rc, f.maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("fetch: reading bytes: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: reading bytes: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}

// IsURI reports whether s looks like a gs:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// ExtractFilename extracts the object's base name from a GCS URI.
// e.g., "gs://bucket/2024/03/ventas.xlsx" → "ventas.xlsx"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

var _ ObjectFetcher = (*Fetcher)(nil)
