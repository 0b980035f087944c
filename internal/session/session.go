// Package session wraps all traffic to the remote API. It owns the
// refresh-on-401 semantics: an expired access token is exchanged exactly
// once no matter how many requests hit the 401 concurrently, and every
// waiting caller shares that refresh's outcome.
package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hdngo/taskdeck/internal/models"
)

// CredentialStore is the durable holder for the token pair.
type CredentialStore interface {
	Get() (models.Session, error)
	Set(access, refresh string) error
	SetAccess(access string) error
	Clear() error
}

// Client issues requests against the remote API on behalf of the current
// session.
type Client struct {
	baseURL string
	http    *http.Client
	store   CredentialStore
	log     *zap.SugaredLogger

	refresh singleflight.Group

	onExpired func()
}

// New creates a client. baseURL must not end with a slash.
func New(baseURL string, timeout time.Duration, store CredentialStore, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
		log:     log,
	}
}

// OnSessionExpired registers the observer invoked when a refresh fails and
// the session is torn down. The callback fires once per expiry even when
// many requests fail together.
func (c *Client) OnSessionExpired(fn func()) {
	c.onExpired = fn
}

// Do performs an authenticated request. body (if non-nil) is sent as JSON;
// a 2xx response body is decoded into out unless out is nil or the server
// answered 204.
//
// Fails with ErrNotAuthenticated before any network I/O when no access
// token is stored, with ErrSessionExpired when the refresh path fails, and
// with *RequestError for any other non-2xx response.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) error {
	sess, err := c.store.Get()
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	if !sess.LoggedIn() {
		return ErrNotAuthenticated
	}

	status, data, err := c.send(ctx, method, endpoint, body, sess.AccessToken)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && sess.RefreshToken != "" {
		access, rerr := c.refreshAccess(ctx, sess.RefreshToken)
		if rerr != nil {
			return ErrSessionExpired
		}
		status, data, err = c.send(ctx, method, endpoint, body, access)
		if err != nil {
			return err
		}
	}

	switch {
	case status == http.StatusNoContent:
		// Success with an absent body; out stays untouched.
		return nil
	case status < 200 || status >= 300:
		return newRequestError(status, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

// refreshAccess exchanges the refresh token for a new access token.
// Concurrent callers coalesce onto a single refresh call and share its
// outcome. On failure the store is cleared and the expiry observer notified
// before any caller returns.
func (c *Client) refreshAccess(ctx context.Context, refreshToken string) (string, error) {
	// The flight's outcome is shared by every caller that joins it, so the
	// refresh must not die with whichever caller happens to run it.
	ctx = context.WithoutCancel(ctx)
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		access, err := c.exchangeRefreshToken(ctx, refreshToken)
		if err != nil {
			c.log.Infow("session expired", "reason", err.Error())
			if cerr := c.store.Clear(); cerr != nil {
				c.log.Errorw("clear credentials", "error", cerr)
			}
			if c.onExpired != nil {
				c.onExpired()
			}
			return "", err
		}
		// The refresh endpoint rotates only the access token.
		if err := c.store.SetAccess(access); err != nil {
			return "", fmt.Errorf("persist access token: %w", err)
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	status, data, err := c.send(ctx, http.MethodPost, "/token/refresh/",
		map[string]string{"refresh": refreshToken}, "")
	if err != nil {
		return "", fmt.Errorf("refresh call: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", newRequestError(status, data)
	}

	var tok struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(data, &tok); err != nil || tok.Access == "" {
		return "", fmt.Errorf("refresh response malformed")
	}
	return tok.Access, nil
}

// Login posts credentials and stores both tokens on success. Invalid
// credentials surface as *RequestError.
func (c *Client) Login(ctx context.Context, username, password string) error {
	status, data, err := c.send(ctx, http.MethodPost, "/login/",
		map[string]string{"username": username, "password": password}, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newRequestError(status, data)
	}

	var tok struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(data, &tok); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	if err := c.store.Set(tok.Access, tok.Refresh); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	c.log.Infow("logged in", "username", username)
	return nil
}

// SignupRequest holds the registration fields.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Signup registers a new account. It does not establish a session; server
// side field validation surfaces as *ValidationError verbatim.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (models.User, error) {
	var user models.User

	status, data, err := c.send(ctx, http.MethodPost, "/signup/", req, "")
	if err != nil {
		return user, err
	}
	if status == http.StatusBadRequest {
		fields := map[string][]string{}
		if err := json.Unmarshal(data, &fields); err == nil && len(fields) > 0 {
			return user, &ValidationError{Fields: fields}
		}
		return user, newRequestError(status, data)
	}
	if status < 200 || status >= 300 {
		return user, newRequestError(status, data)
	}

	if err := json.Unmarshal(data, &user); err != nil {
		return user, fmt.Errorf("decode signup response: %w", err)
	}
	return user, nil
}

// Logout clears the stored token pair.
func (c *Client) Logout() {
	if err := c.store.Clear(); err != nil {
		c.log.Errorw("clear credentials", "error", err)
	}
}

// CurrentUserID returns the user id claim embedded in the access token. The
// payload segment is decoded without signature verification; the server is
// the only party that can validate the token.
func (c *Client) CurrentUserID() (int64, error) {
	sess, err := c.store.Get()
	if err != nil {
		return 0, err
	}
	if !sess.LoggedIn() {
		return 0, ErrNotAuthenticated
	}

	parts := strings.Split(sess.AccessToken, ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("access token is not a JWT")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return 0, fmt.Errorf("decode token payload: %w", err)
	}

	var claims struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return 0, fmt.Errorf("parse token claims: %w", err)
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("token carries no user_id claim")
	}
	return claims.UserID, nil
}

// send issues one HTTP request and returns the status and raw body. An
// empty accessToken sends no Authorization header (login, signup, refresh).
func (c *Client) send(ctx context.Context, method, endpoint string, body any, accessToken string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	reqID := uuid.NewString()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("http",
			"method", method,
			"path", endpoint,
			"error", err,
			"request_id", reqID,
		)
		return 0, nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debugw("http",
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		"request_id", reqID,
	)

	return resp.StatusCode, data, nil
}
