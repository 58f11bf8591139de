// Package llm hides language model backends behind a single Generate call.
package llm

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

var ErrNoBackend = errors.New("no model backend available")

const (
	ServiceHosted   = "hosted"
	ServiceLocal    = "local"
	ServiceFallback = "fallback"
)

// Backend turns a prompt into raw model text. Implementations must honour ctx
// cancellation.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config is the deployment decision about which backends may be used.
type Config struct {
	HostedCredential      string
	LocalInferenceAllowed bool
}

// Selector applies backend precedence: hosted when a credential is configured,
// then local when local inference is allowed. It is itself a Backend that
// delegates to whichever one wins at call time.
type Selector struct {
	cfg    Config
	hosted Backend
	local  Backend
}

func NewSelector(cfg Config, hosted Backend, local Backend) *Selector {
	return &Selector{cfg: cfg, hosted: hosted, local: local}
}

func (s *Selector) HostedAvailable() bool {
	return s.cfg.HostedCredential != "" && s.hosted != nil
}

func (s *Selector) LocalAvailable() bool {
	return s.cfg.LocalInferenceAllowed && s.local != nil
}

func (s *Selector) Select() (Backend, error) {
	switch {
	case s.HostedAvailable():
		return s.hosted, nil
	case s.LocalAvailable():
		return s.local, nil
	}
	return nil, ErrNoBackend
}

// Active names the service that would handle the next extraction.
func (s *Selector) Active() string {
	backend, err := s.Select()
	if err != nil {
		return ServiceFallback
	}
	return backend.Name()
}

func (s *Selector) Name() string {
	return s.Active()
}

func (s *Selector) Generate(ctx context.Context, prompt string) (string, error) {
	backend, err := s.Select()
	if err != nil {
		return "", err
	}
	log.Debugf("generating with %s backend", backend.Name())
	return backend.Generate(ctx, prompt)
}
