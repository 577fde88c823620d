package gcs

import (
	"context"
)

// ObjectFetcher downloads exports from cloud storage.
// This interface enables mocking of storage in pipeline and handler tests.
type ObjectFetcher interface {
	// Fetch downloads the object bytes at the given gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
