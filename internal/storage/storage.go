// Package storage persists uploaded audio payloads. Records in the
// database hold a storage key; the bytes live behind this interface,
// either on local disk under the media root or in an S3-compatible
// bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the namespace under which uploaded payloads are stored.
const Prefix = "audio_files"

type Storage interface {
	// Save writes the payload under key.
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	// Size returns the payload size in bytes. Callers treat an error as
	// "size unknown" rather than a failure.
	Size(ctx context.Context, key string) (int64, error)
	// Delete removes the payload. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL resolves the key to a fetchable URL: absolute for backends
	// with a public endpoint, host-relative otherwise.
	URL(key string) string
}

// NewKey builds a collision-free storage key for an uploaded file name,
// keeping the original name (and so its extension) as the suffix.
func NewKey(filename string) string {
	return fmt.Sprintf("%s/%s_%s", Prefix, uuid.New().String(), path.Base(filename))
}

func cleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}
