package objectstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// Memory is an in-process Storage for tests and local development.
type Memory struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func NewMemory(bucket string) *Memory {
	return &Memory{bucket: bucket, objects: make(map[string][]byte)}
}

func (s *Memory) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[name] = data
	s.mu.Unlock()
	return s.PublicURL(name), nil
}

func (s *Memory) PublicURL(name string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucket, url.PathEscape(name))
}

// Object returns a stored blob, for test assertions.
func (s *Memory) Object(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	return data, ok
}
