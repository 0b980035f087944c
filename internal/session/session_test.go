package session_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdngo/taskdeck/internal/credstore"
	"github.com/hdngo/taskdeck/internal/logging"
	"github.com/hdngo/taskdeck/internal/session"
)

// fakeJWT builds an unsigned token whose payload carries the given claims.
// The client never verifies signatures, so "sig" is fine.
func fakeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return "header." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func newStore(t *testing.T) *credstore.Store {
	t.Helper()
	store, err := credstore.OpenPath(filepath.Join(t.TempDir(), "creds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newClient(t *testing.T, baseURL string, store *credstore.Store) *session.Client {
	t.Helper()
	return session.New(baseURL, 5*time.Second, store, logging.Nop())
}

func TestDoWithoutTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	store := newStore(t)
	client := newClient(t, srv.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/projects/", nil, nil)
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, int64(0), hits.Load(), "no network call may be attempted without a token")
}

func TestDoRefreshesOnceAndRetries(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh"])
		json.NewEncoder(w).Encode(map[string]string{"access": "access-2"})
	})
	mux.HandleFunc("/projects/5/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": 7, "title": "ship it", "project": 5}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("access-1", "refresh-1"))
	client := newClient(t, srv.URL, store)

	var tasks []map[string]any
	err := client.Do(context.Background(), http.MethodGet, "/projects/5/tasks/", nil, &tasks)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.EqualValues(t, 7, tasks[0]["id"])
	assert.Equal(t, int64(1), refreshCalls.Load())

	// The new access token is persisted, the refresh token retained.
	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Hold the refresh open so the 401s pile up behind it.
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]any{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("stale", "refresh-1"))
	client := newClient(t, srv.URL, store)

	const callers = 10
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out []any
			errs[i] = client.Do(context.Background(), http.MethodGet, "/projects/", nil, &out)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load(), "exactly one refresh for concurrent 401s")
}

func TestRefreshSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		// The caller that triggered the refresh goes away mid-flight.
		cancel()
		time.Sleep(50 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]any{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("stale", "refresh-1"))
	client := newClient(t, srv.URL, store)

	var expiries atomic.Int64
	client.OnSessionExpired(func() { expiries.Add(1) })

	// The retry of the original request fails on the cancelled context, but
	// the refresh itself must complete and persist the new token without
	// tearing the session down.
	err := client.Do(ctx, http.MethodGet, "/projects/", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, int64(0), expiries.Load())

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	var protectedHits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		protectedHits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("stale", "dead-refresh"))
	client := newClient(t, srv.URL, store)

	var expiries atomic.Int64
	client.OnSessionExpired(func() { expiries.Add(1) })

	err := client.Do(context.Background(), http.MethodGet, "/projects/", nil, nil)
	require.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, int64(1), expiries.Load())

	sess, err := store.Get()
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn(), "credentials must be cleared")

	// Subsequent calls fail fast with no network I/O at all.
	before := protectedHits.Load()
	err = client.Do(context.Background(), http.MethodGet, "/projects/", nil, nil)
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Equal(t, before, protectedHits.Load())
}

func TestNoRefreshTokenMeansNoRefreshAttempt(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("stale", ""))
	client := newClient(t, srv.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/projects/", nil, nil)
	var reqErr *session.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, int64(0), refreshCalls.Load())
}

func TestNoContentLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("tok", "ref"))
	client := newClient(t, srv.URL, store)

	out := map[string]string{"sentinel": "untouched"}
	err := client.Do(context.Background(), http.MethodDelete, "/projects/1/", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "untouched", out["sentinel"])
}

func TestRequestErrorCarriesServerPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "You do not have permission."})
	}))
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("tok", "ref"))
	client := newClient(t, srv.URL, store)

	err := client.Do(context.Background(), http.MethodPost, "/projects/", nil, nil)
	var reqErr *session.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Equal(t, "You do not have permission.", reqErr.Detail)
}

func TestRequestErrorDefaultsOnUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>nope</html>"))
	}))
	defer srv.Close()

	store := newStore(t)
	require.NoError(t, store.Set("tok", "ref"))
	client := newClient(t, srv.URL, store)

	err := client.Do(context.Background(), http.MethodGet, "/projects/", nil, nil)
	var reqErr *session.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Unknown server error", reqErr.Detail)
}

func TestLoginStoresBothTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		json.NewEncoder(w).Encode(map[string]string{"access": "a1", "refresh": "r1"})
	}))
	defer srv.Close()

	store := newStore(t)
	client := newClient(t, srv.URL, store)

	require.NoError(t, client.Login(context.Background(), "alice", "hunter22"))
	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "a1", sess.AccessToken)
	assert.Equal(t, "r1", sess.RefreshToken)
}

func TestLoginRejectionIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No active account found"})
	}))
	defer srv.Close()

	store := newStore(t)
	client := newClient(t, srv.URL, store)

	err := client.Login(context.Background(), "alice", "wrong")
	var reqErr *session.RequestError
	require.ErrorAs(t, err, &reqErr)

	sess, gerr := store.Get()
	require.NoError(t, gerr)
	assert.False(t, sess.LoggedIn())
}

func TestSignupSurfacesFieldErrorsVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{
			"email":    {"Email already in use."},
			"password": {"Password confirmation does not match."},
		})
	}))
	defer srv.Close()

	store := newStore(t)
	client := newClient(t, srv.URL, store)

	_, err := client.Signup(context.Background(), session.SignupRequest{
		Username: "bob", Email: "bob@example.com", Password: "12345678", ConfirmPassword: "x",
	})
	var valErr *session.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"Email already in use."}, valErr.Fields["email"])
	assert.Equal(t, []string{"Password confirmation does not match."}, valErr.Fields["password"])

	// Signup never establishes a session.
	sess, gerr := store.Get()
	require.NoError(t, gerr)
	assert.False(t, sess.LoggedIn())
}

func TestSignupSuccessReturnsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 3, "username": "bob", "email": "bob@example.com"})
	}))
	defer srv.Close()

	store := newStore(t)
	client := newClient(t, srv.URL, store)

	user, err := client.Signup(context.Background(), session.SignupRequest{
		Username: "bob", Email: "bob@example.com", Password: "12345678", ConfirmPassword: "12345678",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, user.ID)
	assert.Equal(t, "bob", user.Username)
}

func TestCurrentUserIDFromClaims(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set(fakeJWT(t, map[string]any{"user_id": 42}), "ref"))
	client := newClient(t, "http://127.0.0.1:0", store)

	id, err := client.CurrentUserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestCurrentUserIDWithoutToken(t *testing.T) {
	store := newStore(t)
	client := newClient(t, "http://127.0.0.1:0", store)

	_, err := client.CurrentUserID()
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
}
