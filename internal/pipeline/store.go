package pipeline

import (
	"os"
	"sync"

	"github.com/nao1215/linkguard/internal/model"
)

// DocumentStore serves the text of collected documents from memory, so
// that anchors are built from the same bytes the extractor scanned. Paths
// that were not collected are read from disk.
type DocumentStore struct {
	mu   sync.RWMutex
	text map[string]string
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{text: make(map[string]string)}
}

// Put adds documents, keyed by canonical path.
func (s *DocumentStore) Put(docs ...*model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.text[d.Path] = d.Text
	}
}

// Load returns the text at path. It has the signature of anchor.Loader.
func (s *DocumentStore) Load(path string) (string, error) {
	s.mu.RLock()
	text, ok := s.text[path]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // paths come from resolved link targets
	if err != nil {
		return "", err
	}
	return string(data), nil
}
