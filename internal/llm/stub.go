package llm

import (
	"context"
	"sync"
)

// StubGenerator returns a canned reply. Text goes through Finalize, so a
// stub behaves like a remote that answered with exactly that text.
type StubGenerator struct {
	Text string
	Err  error
	// Block, when set, holds every call until it is closed or ctx ends.
	Block chan struct{}

	mu       sync.Mutex
	requests []Request
}

func (s *StubGenerator) Name() string {
	return "stub"
}

func (s *StubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return "", transportError(s.Name(), ctx.Err())
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return Finalize(s.Text, req), nil
}

// Requests returns a copy of every request received so far.
func (s *StubGenerator) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *StubGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
