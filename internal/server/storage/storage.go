// Package storage holds uploaded profile images. Two backends exist: a
// local directory served by the web server, and an S3-compatible bucket.
package storage

import (
	"context"
	"io"
)

// ImageStore saves, deletes and locates stored images by name. Names are
// generated by the upload service and never contain path separators.
type ImageStore interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	// Delete removes a stored image. Deleting a missing image is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns a browser-usable link to the image.
	URL(ctx context.Context, name string) (string, error)
}
