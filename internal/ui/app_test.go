package ui_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdngo/taskdeck/internal/cache"
	"github.com/hdngo/taskdeck/internal/credstore"
	"github.com/hdngo/taskdeck/internal/logging"
	"github.com/hdngo/taskdeck/internal/session"
	"github.com/hdngo/taskdeck/internal/ui"
	"github.com/hdngo/taskdeck/internal/ui/views"
)

func TestSessionEndResetsPersistedState(t *testing.T) {
	store, err := credstore.OpenPath(filepath.Join(t.TempDir(), "creds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Set("access", "refresh"))
	require.NoError(t, store.SetSetting("last_project_id", "7"))

	api := session.New("http://127.0.0.1:0", time.Second, store, logging.Nop())
	entities := cache.New(api, logging.Nop())
	app := ui.NewApp(api, entities, store, logging.Nop())

	_, _ = app.Update(views.SessionEndedMsg{Err: session.ErrSessionExpired})

	sess, err := store.Get()
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn(), "tokens cleared on session end")

	val, err := store.GetSetting("last_project_id")
	require.NoError(t, err)
	assert.Empty(t, val, "project restore setting cleared on session end")
}
