// Package auth issues and verifies the HS256 tokens used for the mock session and for
// read-only share links.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "healthdash"

	kindSession = "session"
	kindShare   = "share"
)

// ErrInvalidToken covers malformed, expired, wrongly signed and wrong-kind tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the verified contents of a token.
type Claims struct {
	Subject   string
	Kind      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Tokens signs and parses tokens with a shared secret.
type Tokens struct {
	secret     []byte
	sessionTTL time.Duration
	shareTTL   time.Duration
	now        func() time.Time
}

// NewTokens creates a token manager. An empty secret is replaced by a random one, which
// invalidates outstanding tokens on restart.
func NewTokens(secret string, sessionTTL, shareTTL time.Duration) (*Tokens, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if shareTTL <= 0 {
		shareTTL = 72 * time.Hour
	}
	return &Tokens{secret: key, sessionTTL: sessionTTL, shareTTL: shareTTL, now: time.Now}, nil
}

// IssueSession signs a session token for the named user.
func (t *Tokens) IssueSession(name string) (string, time.Time, error) {
	return t.issue(kindSession, name, t.sessionTTL)
}

// ParseSession verifies a session token.
func (t *Tokens) ParseSession(token string) (Claims, error) {
	return t.parse(kindSession, token)
}

// IssueShare signs a share-link token.
func (t *Tokens) IssueShare(subject string) (string, time.Time, error) {
	return t.issue(kindShare, subject, t.shareTTL)
}

// ParseShare verifies a share-link token.
func (t *Tokens) ParseShare(token string) (Claims, error) {
	return t.parse(kindShare, token)
}

func (t *Tokens) issue(kind, subject string, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (t *Tokens) parse(kind, token string) (Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return Claims{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	return Claims{Subject: claims.Subject, Kind: claims.Kind, ExpiresAt: claims.ExpiresAt.Time}, nil
}
