// Package blob is the attach-a-file-get-a-durable-URL collaborator.
package blob

import (
	"context"
	"io"
)

// Uploader stores a blob and returns its publicly resolvable URL
type Uploader interface {
	Upload(ctx context.Context, path string, data io.Reader, size int64, contentType string) (string, error)
}
