package testsupport

import (
	"context"
	"strings"
	"sync"
)

// FakeSource is an in-memory station.Source backed by a map of documents
// keyed by reference path. It counts fetches per reference so tests can
// assert cache behavior and enrichment idempotence.
type FakeSource struct {
	base string

	mu      sync.Mutex
	docs    map[string][]byte
	fetches map[string]int
}

// NewFakeSource creates a fixture source rooted at base
// (e.g. "https://example.org").
func NewFakeSource(base string) *FakeSource {
	return &FakeSource{
		base:    strings.TrimRight(base, "/"),
		docs:    make(map[string][]byte),
		fetches: make(map[string]int),
	}
}

// Add registers a document under a reference path such as "robots.txt" or
// "music/shows/jazz-theater".
func (s *FakeSource) Add(ref, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[strings.Trim(ref, "/")] = []byte(body)
}

// Remove deletes a document, simulating upstream disappearance.
func (s *FakeSource) Remove(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, strings.Trim(ref, "/"))
}

// GetReference returns the stored document, recording the fetch.
func (s *FakeSource) GetReference(_ context.Context, ref string) ([]byte, bool, error) {
	key := strings.Trim(s.RelativePath(ref), "/")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[key]++
	body, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	return body, true, nil
}

// RelativePath strips the base URL, leaving the reference path.
func (s *FakeSource) RelativePath(url string) string {
	trimmed := strings.TrimPrefix(url, s.base)
	return strings.Trim(trimmed, "/")
}

// Reference resolves a possibly relative URL against the base.
func (s *FakeSource) Reference(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return s.base + "/" + strings.Trim(url, "/")
}

// UsesSitemap reports that fixture sources participate in discovery.
func (s *FakeSource) UsesSitemap() bool { return true }

// FetchCount returns how many times a reference was requested.
func (s *FakeSource) FetchCount(ref string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[strings.Trim(ref, "/")]
}

// TotalFetches returns the total number of GetReference calls.
func (s *FakeSource) TotalFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, count := range s.fetches {
		total += count
	}
	return total
}
