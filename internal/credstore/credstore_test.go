package credstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdngo/taskdeck/internal/credstore"
)

func open(t *testing.T, path string) *credstore.Store {
	t.Helper()
	store, err := credstore.OpenPath(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEmptyStoreIsLoggedOut(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "creds.db"))

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, sess.AccessToken)
	assert.Empty(t, sess.RefreshToken)
	assert.False(t, sess.LoggedIn())
}

func TestSetGetRoundTrip(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "creds.db"))

	require.NoError(t, store.Set("access-1", "refresh-1"))
	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "access-1", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
	assert.True(t, sess.LoggedIn())

	// Overwrite replaces, never appends.
	require.NoError(t, store.Set("access-2", "refresh-2"))
	sess, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken)
	assert.Equal(t, "refresh-2", sess.RefreshToken)
}

func TestSetAccessRetainsRefreshToken(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "creds.db"))

	require.NoError(t, store.Set("old-access", "refresh-1"))
	require.NoError(t, store.SetAccess("new-access"))

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-access", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
}

func TestClearRemovesBothTokens(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "creds.db"))

	require.NoError(t, store.Set("access", "refresh"))
	require.NoError(t, store.Clear())

	sess, err := store.Get()
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())

	// Clearing an already empty store is fine.
	require.NoError(t, store.Clear())
}

func TestTokensSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")

	store := open(t, path)
	require.NoError(t, store.Set("access", "refresh"))
	require.NoError(t, store.SetSetting("last_project_id", "7"))
	require.NoError(t, store.Close())

	reopened := open(t, path)
	sess, err := reopened.Get()
	require.NoError(t, err)
	assert.Equal(t, "access", sess.AccessToken)
	assert.Equal(t, "refresh", sess.RefreshToken)

	val, err := reopened.GetSetting("last_project_id")
	require.NoError(t, err)
	assert.Equal(t, "7", val)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "creds.db"))

	val, err := store.GetSetting("missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, store.SetSetting("last_project_id", "3"))
	require.NoError(t, store.SetSetting("last_project_id", "9"))

	val, err = store.GetSetting("last_project_id")
	require.NoError(t, err)
	assert.Equal(t, "9", val)
}
