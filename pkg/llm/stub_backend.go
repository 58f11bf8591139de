package llm

import (
	"context"
	"sync"
)

// StubBackend replays a canned response, error or hang.
type StubBackend struct {
	mu       sync.Mutex
	Service  string
	Response string
	Err      error
	Hang     bool
	Panic    bool
	Prompts  []string
}

func (s *StubBackend) Name() string {
	if s.Service == "" {
		return "stub"
	}
	return s.Service
}

func (s *StubBackend) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.Prompts = append(s.Prompts, prompt)
	s.mu.Unlock()

	if s.Panic {
		panic("stub backend exploded")
	}
	if s.Hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.Response, s.Err
}

func (s *StubBackend) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}
