package blob

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
)

// MemoryUploader keeps blobs in a map; tests use it
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte

	// Fail makes the next uploads error out, for failure-path tests
	Fail error
}

// NewMemoryUploader creates an empty uploader
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

// Upload stores the bytes and returns a mem:// URL
func (u *MemoryUploader) Upload(ctx context.Context, path string, data io.Reader, size int64, contentType string) (string, error) {
	if u.Fail != nil {
		return "", u.Fail
	}
	content, err := ioutil.ReadAll(data)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.objects[path] = content
	u.mu.Unlock()
	return "mem://" + path, nil
}

// Object returns a stored blob
func (u *MemoryUploader) Object(path string) []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.objects[path]
}
