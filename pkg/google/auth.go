package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quickcal/quickcal/internal/config"
	"github.com/quickcal/quickcal/internal/utils"
	"github.com/quickcal/quickcal/pkg/account"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	oauth2api "google.golang.org/api/oauth2/v2"
)

const stateTTL = 10 * time.Minute

var (
	ErrMissingCode  = errors.New("authorization code not provided")
	ErrInvalidState = errors.New("invalid or expired OAuth state")
)

type TokenIssuer interface {
	Issue(subject, email, name string) (string, error)
}

// GoogleAuth drives the OAuth code flow and turns a Google login into an
// account plus a session token.
type GoogleAuth struct {
	oauthConfig *oauth2.Config
	accounts    account.Repository
	tokens      TokenIssuer
	frontendUrl string
	states      *stateStore
	apiOptions  []option.ClientOption
}

func NewGoogleAuth(cfg config.Application, accounts account.Repository, tokens TokenIssuer, clock utils.Clock) *GoogleAuth {
	return &GoogleAuth{
		oauthConfig: newOAuthConfig(cfg),
		accounts:    accounts,
		tokens:      tokens,
		frontendUrl: strings.TrimSuffix(cfg.Frontend.Url, "/"),
		states:      newStateStore(clock, stateTTL),
	}
}

// LoginURL returns the Google consent URL. Offline access with forced
// approval makes Google hand out a refresh token every time.
func (g *GoogleAuth) LoginURL() string {
	return g.oauthConfig.AuthCodeURL(g.states.issue(), oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Complete exchanges the code, stores the account and returns the frontend
// URL carrying the session token.
func (g *GoogleAuth) Complete(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", ErrMissingCode
	}
	if !g.states.consume(state) {
		return "", ErrInvalidState
	}

	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("unable to exchange code for token: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(g.oauthConfig.Client(ctx, token))}, g.apiOptions...)
	userinfoService, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("unable to create userinfo client: %w", err)
	}
	info, err := userinfoService.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch Google profile: %w", err)
	}

	acc, err := g.accounts.Upsert(ctx, account.Account{
		GoogleId:     info.Id,
		Email:        info.Email,
		Name:         info.Name,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	})
	if err != nil {
		return "", fmt.Errorf("unable to store account: %w", err)
	}

	sessionToken, err := g.tokens.Issue(acc.Uid, acc.Email, acc.Name)
	if err != nil {
		return "", err
	}
	log.Infof("account %s signed in", acc.Uid)

	return g.frontendUrl + "/#/auth/callback?token=" + url.QueryEscape(sessionToken), nil
}

// stateStore keeps issued OAuth state nonces until they are used or expire.
type stateStore struct {
	mu     sync.Mutex
	clock  utils.Clock
	ttl    time.Duration
	issued map[string]time.Time
}

func newStateStore(clock utils.Clock, ttl time.Duration) *stateStore {
	return &stateStore{clock: clock, ttl: ttl, issued: map[string]time.Time{}}
}

func (s *stateStore) issue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for nonce, expiry := range s.issued {
		if now.After(expiry) {
			delete(s.issued, nonce)
		}
	}
	nonce := uuid.NewString()
	s.issued[nonce] = now.Add(s.ttl)
	return nonce
}

func (s *stateStore) consume(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.issued[nonce]
	if !ok {
		return false
	}
	delete(s.issued, nonce)
	return !s.clock.Now().After(expiry)
}
