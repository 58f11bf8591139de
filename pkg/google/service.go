package google

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quickcal/quickcal/internal/config"
	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	oauth2api "google.golang.org/api/oauth2/v2"
)

const primaryCalendar = "primary"

var ErrUnauthenticated = calendar.ErrUnauthenticated

// TokenSaver persists tokens obtained by a refresh.
type TokenSaver interface {
	UpdateTokens(ctx context.Context, uid string, accessToken, refreshToken string, expiry time.Time) error
}

func newOAuthConfig(cfg config.Application) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/auth/google/callback",
		Scopes: []string{
			gcal.CalendarScope,
			oauth2api.UserinfoEmailScope,
			oauth2api.UserinfoProfileScope,
		},
	}
}

// Service resolves a calendar.Store for a Google identity.
type Service struct {
	oauthConfig  *oauth2.Config
	tokens       TokenSaver
	fallbackZone *time.Location
	apiOptions   []option.ClientOption
}

func NewService(cfg config.Application, tokens TokenSaver) *Service {
	return &Service{
		oauthConfig:  newOAuthConfig(cfg),
		tokens:       tokens,
		fallbackZone: utils.LoadLocation(cfg.Calendar.Timezone),
	}
}

func (s *Service) StoreFor(ctx context.Context, identity calendar.Identity) (calendar.Store, error) {
	if identity.AccessToken == "" && identity.RefreshToken == "" {
		log.Debug("identity has no Google tokens, authentication is required")
		return nil, ErrUnauthenticated
	}

	token := &oauth2.Token{
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		Expiry:       identity.Expiry,
		TokenType:    "Bearer",
	}
	source := &savingTokenSource{
		base:    oauth2.ReuseTokenSource(token, s.oauthConfig.TokenSource(ctx, token)),
		subject: identity.Subject,
		saver:   s.tokens,
		last:    token.AccessToken,
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, source))}, s.apiOptions...)
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return newGoogleCalendar(service, primaryCalendar, s.fallbackZone), nil
}

// savingTokenSource stores every new access token handed out by base.
type savingTokenSource struct {
	base    oauth2.TokenSource
	subject string
	saver   TokenSaver
	mu      sync.Mutex
	last    string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last || s.saver == nil || s.subject == "" {
		return token, nil
	}
	s.last = token.AccessToken
	// the caller's context may already be gone once the response is read
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.saver.UpdateTokens(saveCtx, s.subject, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		log.Warnf("failed to persist refreshed Google token for %s: %v", s.subject, err)
	}
	return token, nil
}
