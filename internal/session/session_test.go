package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"boardeasy/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &Context{
		ChatID: 42,
		Token:  "opaque-token",
		User:   models.User{ID: 7, Username: "amy", Role: models.RoleAdmin, Email: "amy@example.com"},
	}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "opaque-token", loaded.Token)
	assert.Equal(t, "amy", loaded.User.Username)
	assert.True(t, loaded.IsAdmin())
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Context{ChatID: 1, Token: "old", User: models.User{Username: "a"}}))
	require.NoError(t, store.Save(ctx, &Context{ChatID: 1, Token: "new", User: models.User{Username: "b"}}))

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Token)
	assert.Equal(t, "b", loaded.User.Username)
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Context{ChatID: 5, Token: "tok"}))
	require.NoError(t, store.Clear(ctx, 5))

	loaded, err := store.Load(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "amy",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestValid(t *testing.T) {
	now := time.Now()

	var nilCtx *Context
	assert.False(t, nilCtx.Valid(now))
	assert.False(t, (&Context{}).Valid(now))

	// Opaque tokens are trusted until the backend says otherwise.
	assert.True(t, (&Context{Token: "opaque"}).Valid(now))

	live := &Context{Token: signedToken(t, now.Add(time.Hour))}
	assert.True(t, live.Valid(now))

	expired := &Context{Token: signedToken(t, now.Add(-time.Hour))}
	assert.False(t, expired.Valid(now))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, (&Context{User: models.User{Role: models.RoleDriver}}).IsDriver())
	assert.True(t, (&Context{User: models.User{Role: models.RolePassenger}}).IsPassenger())
	assert.False(t, (&Context{User: models.User{Role: models.RolePassenger}}).IsAdmin())

	var nilCtx *Context
	assert.False(t, nilCtx.IsAdmin())
}
