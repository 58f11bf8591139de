package app

import (
	"net/http"

	"github.com/quickcal/quickcal/internal/auth"
	"github.com/quickcal/quickcal/internal/config"
	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/account"
	"github.com/quickcal/quickcal/pkg/availability"
	"github.com/quickcal/quickcal/pkg/calendar"
	"github.com/quickcal/quickcal/pkg/event"
	"github.com/quickcal/quickcal/pkg/extraction"
	"github.com/quickcal/quickcal/pkg/google"
	"github.com/quickcal/quickcal/pkg/llm"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock utils.Clock

	Tokens         *auth.TokenService
	AccountRepo    account.Repository
	AuthMiddleware func(http.Handler) http.Handler

	GoogleAuth    *google.GoogleAuth
	CalendarStore calendar.StoreProvider

	LlmSelector  *llm.Selector
	Orchestrator *extraction.Orchestrator
	Checker      *availability.Checker

	EventService event.Service
	EventHandler *event.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application, accounts account.Repository) (*Dependencies, error) {
	deps := &Dependencies{}
	deps.Clock = &utils.SystemClock{}

	if cfg.Auth.JwtSecret == "" {
		log.Warn("auth.jwtsecret is empty, sign in will fail until it is configured")
	}
	deps.Tokens = auth.NewTokenService(cfg.Auth.JwtSecret, cfg.Auth.TokenTTL, deps.Clock)
	deps.AccountRepo = accounts
	deps.AuthMiddleware = account.Middleware(deps.Tokens, deps.AccountRepo)

	deps.GoogleAuth = google.NewGoogleAuth(cfg, deps.AccountRepo, deps.Tokens, deps.Clock)
	deps.CalendarStore = google.NewService(cfg, deps.AccountRepo)

	hosted := llm.NewHostedBackend(cfg.Llm.Hosted.ApiKey, cfg.Llm.Hosted.BaseUrl, cfg.Llm.Hosted.Model)
	local, err := llm.NewLocalBackend(cfg.Llm.Local.Host, cfg.Llm.Local.Model, nil)
	if err != nil {
		return nil, err
	}
	deps.LlmSelector = llm.NewSelector(llm.Config{
		HostedCredential:      cfg.Llm.Hosted.ApiKey,
		LocalInferenceAllowed: cfg.Llm.Local.Enabled,
	}, hosted, local)
	log.Infof("extraction backend: %s", deps.LlmSelector.Active())

	fallback := extraction.NewFallbackExtractor(deps.Clock, cfg.Calendar.Timezone)
	model := extraction.NewModelExtractor(deps.LlmSelector, deps.Clock, cfg.Calendar.Timezone, cfg.Llm.Timeout)
	deps.Orchestrator = extraction.NewOrchestrator(deps.LlmSelector, fallback, model)

	deps.Checker = availability.NewChecker(deps.CalendarStore, availability.Config{
		Step:        cfg.Availability.Step,
		MaxProbes:   cfg.Availability.MaxProbes,
		Suggestions: cfg.Availability.Suggestions,
		MaxResults:  cfg.Calendar.MaxResults,
	})

	deps.EventService = event.NewService(deps.Orchestrator, deps.Checker, deps.CalendarStore, deps.Clock, event.Config{
		Timezone:   cfg.Calendar.Timezone,
		MaxResults: cfg.Calendar.MaxResults,
	})
	deps.EventHandler = event.NewHandler(deps.EventService)

	return deps, nil
}
