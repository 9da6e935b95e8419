package main

import "sync"

// searcher serializes result delivery for overlapping product searches.
// Each query takes a generation number; a response whose generation has
// been superseded by a newer query is dropped instead of overwriting the
// newer results.
type searcher struct {
	mu  sync.Mutex
	gen uint64
}

// begin registers a new query and returns its generation token.
func (s *searcher) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// current reports whether the token still belongs to the latest query.
func (s *searcher) current(g uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return g == s.gen
}
