package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/auth"
	"healthdash/internal/repository"
	"healthdash/internal/repository/memory"
)

func TestSessionService(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSettingsMemory()
	tokens, err := auth.NewTokens("secret", time.Hour, time.Hour)
	require.NoError(t, err)
	svc := NewSessionService(repo, tokens)

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Login(ctx, auth.Credentials{Email: "ana@example.com", Password: "123"}, false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	sess, err := svc.Login(ctx, auth.Credentials{Email: "ana@example.com", Password: "123456"}, false)
	require.NoError(t, err)
	assert.Equal(t, "ana", sess.User.Name)

	stored, err := repository.Load(ctx, repo, repository.KeyUser, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "ana"}, stored)

	user, err := svc.Verify(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Name)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession, "token is void after logout")

	reg, err := svc.Login(ctx, auth.Credentials{Name: "Ana Maria", Email: "ana@example.com", Password: "123456"}, true)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession, "old token belongs to another user")
	_, err = svc.Verify(ctx, reg.Token)
	assert.NoError(t, err)

	_, err = svc.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
