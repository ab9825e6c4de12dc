package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore(t *testing.T) {
	s := NewCredentialStore(setupDB(t))
	ctx := context.Background()

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, Credential{Username: "alice", AccessToken: "t1"}))
	require.NoError(t, s.Save(ctx, Credential{Username: "bob", AccessToken: "t2"}))

	c, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Credential{Username: "bob", AccessToken: "t2"}, c)

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_SaveIsAtomic(t *testing.T) {
	db := setupDB(t)
	s := NewCredentialStore(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Credential{Username: "alice", AccessToken: "t1"}))

	_, err := db.Exec(`CREATE TRIGGER no_tokens BEFORE UPDATE ON metadata
		WHEN NEW.key = 'access_token' BEGIN SELECT RAISE(ABORT, 'denied'); END`)
	require.NoError(t, err)

	err = s.Save(ctx, Credential{Username: "bob", AccessToken: "t2"})
	require.Error(t, err)

	c, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Credential{Username: "alice", AccessToken: "t1"}, c, "username rolled back")
}
