package objectstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medvault/internal/common"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps blobs in process memory. It backs tests and the offline
// demo mode of the CLI.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memObject
}

// NewMemoryStore creates an empty store whose locators are mem://bucket/path.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string]memObject)}
}

func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[path] = memObject{data: append([]byte(nil), data...), contentType: contentType}
	s.mu.Unlock()
	return fmt.Sprintf("mem://%s/%s", s.bucket, path), nil
}

func (s *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	o, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, common.ErrNotFound)
	}
	return append([]byte(nil), o.data...), nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, path)
	s.mu.Unlock()
	return nil
}

// ContentType reports the content type a blob was stored with.
func (s *MemoryStore) ContentType(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[path]
	return o.contentType, ok
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
