package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/model"
	"healthdash/internal/repository"
)

func TestSettingsMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsMemory()

	enabled, err := repository.Load(ctx, repo, repository.KeyNotificationsEnabled, false)
	require.NoError(t, err)
	assert.False(t, enabled, "missing key yields the default")

	require.NoError(t, repository.Save(ctx, repo, repository.KeyNotificationsEnabled, true))
	require.NoError(t, repository.Save(ctx, repo, repository.KeyUser, model.User{Name: "ana"}))

	enabled, err = repository.Load(ctx, repo, repository.KeyNotificationsEnabled, false)
	require.NoError(t, err)
	assert.True(t, enabled)

	user, err := repository.Load(ctx, repo, repository.KeyUser, model.User{})
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Name)

	require.NoError(t, repo.Delete(ctx, repository.KeyUser))
	require.NoError(t, repo.Delete(ctx, repository.KeyUser))
	_, err = repo.Get(ctx, repository.KeyUser)
	assert.ErrorIs(t, err, repository.ErrSettingNotFound)
}

func TestLoad_DecodeError(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsMemory()
	require.NoError(t, repo.Put(ctx, repository.KeyNotificationsEnabled, []byte(`"yes"`)))

	v, err := repository.Load(ctx, repo, repository.KeyNotificationsEnabled, false)
	assert.Error(t, err)
	assert.False(t, v)
}
