package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_SessionRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour, time.Hour)
	require.NoError(t, err)

	tok, exp, err := tokens.IssueSession("ana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.ParseSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, kindSession, claims.Kind)
}

func TestTokens_KindsAreNotInterchangeable(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour, time.Hour)
	require.NoError(t, err)

	share, _, err := tokens.IssueShare("snapshot")
	require.NoError(t, err)

	_, err = tokens.ParseSession(share)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.ParseShare(share)
	assert.NoError(t, err)
}

func TestTokens_Rejects(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour, time.Hour)
	require.NoError(t, err)
	other, err := NewTokens("other", time.Hour, time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.IssueSession("ana")
	require.NoError(t, err)

	base := time.Now()
	tokens.now = func() time.Time { return base.Add(-2 * time.Hour) }
	expired, _, err := tokens.IssueSession("ana")
	require.NoError(t, err)
	tokens.now = time.Now

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"kind": kindSession, "iss": issuer, "exp": base.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"expired":        expired,
		"alg none":       unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.ParseSession(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokens_RandomSecret(t *testing.T) {
	a, err := NewTokens("", 0, 0)
	require.NoError(t, err)
	b, err := NewTokens("", 0, 0)
	require.NoError(t, err)

	tok, _, err := a.IssueSession("ana")
	require.NoError(t, err)
	_, err = b.ParseSession(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		register bool
		want     string
		wantErr  bool
	}{
		{name: "login derives name from email", creds: Credentials{Email: "maria.silva@example.com", Password: "123456"}, want: "maria.silva"},
		{name: "register uses explicit name", creds: Credentials{Name: "Maria", Email: "m@example.com", Password: "secret1"}, register: true, want: "Maria"},
		{name: "short password", creds: Credentials{Email: "m@example.com", Password: "12345"}, wantErr: true},
		{name: "missing email", creds: Credentials{Password: "123456"}, wantErr: true},
		{name: "register needs name", creds: Credentials{Email: "m@example.com", Password: "123456"}, register: true, wantErr: true},
		{name: "email without at sign", creds: Credentials{Email: "maria", Password: "123456"}, want: "maria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := Authenticate(tt.creds, tt.register)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Name)
		})
	}
}
