package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quickcal/quickcal/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify an account by its uid (the token subject). Calendar
// credentials never travel inside the token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type TokenValidator interface {
	Validate(token string) (Claims, error)
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  utils.Clock
}

func NewTokenService(secret string, ttl time.Duration, clock utils.Clock) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (s *TokenService) Issue(subject, email, name string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := s.clock.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Validate(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		log.Debugf("token rejected: %v", err)
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
