package domain

import (
	"maps"
	"sync"
)

// ResultStore maps each URL of a job to its recorded label.
// All methods are safe for concurrent use.
type ResultStore struct {
	mu      sync.Mutex
	labels  map[string]string
	interim map[string]struct{}
}

// NewResultStore creates an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{
		labels:  make(map[string]string),
		interim: make(map[string]struct{}),
	}
}

// Record stores the terminal label for url, replacing any previous label.
func (s *ResultStore) Record(url, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[url] = label
	delete(s.interim, url)
}

// RecordInterim stores the downloaded file name for url until the rename
// replaces it. It only writes when url has no label yet and reports whether
// the name was written.
func (s *ResultStore) RecordInterim(url, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.labels[url]; ok {
		return false
	}
	s.labels[url] = name
	s.interim[url] = struct{}{}
	return true
}

// RecordCancelled stores the cancelled label unless url already holds a
// terminal label. An interim file name is replaced.
// It reports whether the label was written.
func (s *ResultStore) RecordCancelled(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, pending := s.interim[url]
	if _, ok := s.labels[url]; ok && !pending {
		return false
	}
	s.labels[url] = LabelCancelled
	delete(s.interim, url)
	return true
}

// Len returns the number of recorded URLs.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.labels)
}

// Snapshot returns a copy of the recorded labels.
func (s *ResultStore) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.labels)
}
