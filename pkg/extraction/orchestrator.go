package extraction

import (
	"context"
	"fmt"

	"github.com/quickcal/quickcal/pkg/llm"
	log "github.com/sirupsen/logrus"
)

// StatusReporter describes which model backends are configured.
type StatusReporter interface {
	HostedAvailable() bool
	LocalAvailable() bool
	Active() string
}

type Status struct {
	HostedAvailable   bool   `json:"hostedAvailable"`
	LocalAvailable    bool   `json:"localAvailable"`
	FallbackAvailable bool   `json:"fallbackAvailable"`
	ActiveService     string `json:"activeService"`
}

type Orchestrator struct {
	status   StatusReporter
	fallback *FallbackExtractor
	tiers    []Extractor
}

func NewOrchestrator(status StatusReporter, fallback *FallbackExtractor, tiers ...Extractor) *Orchestrator {
	return &Orchestrator{status: status, fallback: fallback, tiers: tiers}
}

// ProcessText tries every tier in order and returns the fallback result when
// all of them fail.
func (o *Orchestrator) ProcessText(ctx context.Context, text string, timezone string) CandidateEvent {
	for _, tier := range o.tiers {
		candidate, err := o.try(ctx, tier, text, timezone)
		if err == nil {
			return candidate
		}
		log.Warnf("extraction tier %T failed, falling back: %v", tier, err)
	}
	return o.fallback.Parse(text, timezone)
}

func (o *Orchestrator) try(ctx context.Context, tier Extractor, text string, timezone string) (candidate CandidateEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: tier panicked: %v", ErrExtractionFailed, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return CandidateEvent{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return tier.Extract(ctx, text, timezone)
}

func (o *Orchestrator) Status() Status {
	if o.status == nil {
		return Status{FallbackAvailable: true, ActiveService: llm.ServiceFallback}
	}
	return Status{
		HostedAvailable:   o.status.HostedAvailable(),
		LocalAvailable:    o.status.LocalAvailable(),
		FallbackAvailable: true,
		ActiveService:     o.status.Active(),
	}
}
