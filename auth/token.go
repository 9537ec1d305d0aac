package auth

import (
	"errors"
	"fmt"
	"time"

	"kboard/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 2 * time.Hour

// Messages returned to clients when verification fails.
const (
	MsgTokenExpired = "Token has expired."
	MsgTokenInvalid = "Invalid token."
)

// TokenService issues and verifies HS256 bearer tokens whose subject is the
// user's email. It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. A non-positive
// ttl falls back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenService{secret: key, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject expiring TTL from now.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("issue token: empty subject")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the token subject.
// Failures are *apperr.Error of kind TokenExpired or TokenInvalid.
func (s *TokenService) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Wrap(apperr.KindTokenExpired, MsgTokenExpired, err)
		}
		return "", apperr.Wrap(apperr.KindTokenInvalid, MsgTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", apperr.New(apperr.KindTokenInvalid, MsgTokenInvalid)
	}
	return claims.Subject, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.secret, nil
}
