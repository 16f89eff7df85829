package model

import (
	"context"
	"io"
	"strings"
)

// LocatorPrefix is the URL path prefix under which stored blobs are served.
const LocatorPrefix = "/uploads/"

// BlobStore persists uploaded content under a generated unique name.
type BlobStore interface {
	// Store writes data and returns a locator that resolves back to it.
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	// Open returns the content stored under name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// BlobNameFromLocator extracts the storage name from a locator.
func BlobNameFromLocator(locator string) (string, bool) {
	name, ok := strings.CutPrefix(locator, LocatorPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}
