package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/observable"
)

// Storage keys for the durable session state.
const (
	storageKeyToken = "access_token"
	storageKeyUser  = "user_data"
)

// sessionTTL bounds how old persisted session state may be before restore
// discards it. Matches the 7-day cookie expiry of the web client.
const sessionTTL = 7 * 24 * time.Hour

// SessionState is the lifecycle phase of the client session.
type SessionState int

const (
	// Anonymous: no token, either fresh or after an explicit logout.
	Anonymous SessionState = iota
	// Authenticating: login in flight (token exchange or profile fetch).
	Authenticating
	// Authenticated: token present.
	Authenticated
	// Expired: the backend rejected the token; cleared, awaiting re-login.
	Expired
)

func (s SessionState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// Routes exempt from the logout redirect.
var logoutRedirectExempt = map[string]bool{
	"/login":    true,
	"/register": true,
}

// Session is the persisted session store: a token container and a profile
// container initialised from durable storage and written through on change.
// The profile is non-nil only while a token is set, except transiently during
// the login profile fetch and on the cached-profile recovery path.
type Session struct {
	c *Client

	token *observable.Value[string]
	user  *observable.Value[*UserProfile]
	state *observable.Value[SessionState]

	authenticated observable.Observable[bool]

	expireHooks []func()
}

func newSession(c *Client) *Session {
	s := &Session{
		c:     c,
		token: observable.New(""),
		user:  observable.New[*UserProfile](nil),
		state: observable.New(Anonymous),
	}
	s.authenticated = observable.Derive[string, bool](s.token, func(t string) bool { return t != "" })
	s.restore()
	return s
}

// restore loads token and profile from durable storage. Stale state (older
// than sessionTTL) is discarded like an expired cookie.
func (s *Session) restore() {
	if s.stale(storageKeyToken) {
		_ = s.c.storage.Delete(storageKeyToken)
		_ = s.c.storage.Delete(storageKeyUser)
		return
	}
	raw, ok, err := s.c.storage.Get(storageKeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("session restore failed")
		return
	}
	if !ok || len(raw) == 0 {
		return
	}
	s.token.Set(string(raw))
	s.state.Set(Authenticated)

	if raw, ok, err := s.c.storage.Get(storageKeyUser); err == nil && ok {
		var u UserProfile
		if err := json.Unmarshal(raw, &u); err == nil {
			s.user.Set(&u)
		}
	}
	log.Debug().Msg("session restored from storage")
}

func (s *Session) stale(key string) bool {
	aged, ok := s.c.storage.(interface{ UpdatedAt(string) (time.Time, error) })
	if !ok {
		return false
	}
	at, err := aged.UpdatedAt(key)
	if err != nil || at.IsZero() {
		return false
	}
	return time.Since(at) > sessionTTL
}

// Token returns the current bearer token, empty when anonymous. It is the
// synchronous current-value read for non-reactive call sites; container
// replay-on-subscribe guarantees the same value a fresh observer would see.
func (s *Session) Token() string { return s.token.Peek() }

// User returns the current profile, nil when unknown.
func (s *Session) User() *UserProfile { return s.user.Peek() }

// State returns the current lifecycle phase.
func (s *Session) State() SessionState { return s.state.Peek() }

// ObserveToken registers an observer on the token container.
func (s *Session) ObserveToken(cb func(string)) (cancel func()) { return s.token.Observe(cb) }

// ObserveUser registers an observer on the profile container.
func (s *Session) ObserveUser(cb func(*UserProfile)) (cancel func()) { return s.user.Observe(cb) }

// Authenticated is a derived read-only view over the token container.
func (s *Session) Authenticated() observable.Observable[bool] { return s.authenticated }

// onExpire registers fn to run when the session expires via a 401. Used by
// session-scoped caches to clear themselves.
func (s *Session) onExpire(fn func()) { s.expireHooks = append(s.expireHooks, fn) }

// Login exchanges credentials for a token, persists it, then fetches the
// profile. A profile fetch that fails on the network falls back to the last
// durably cached profile when one exists; the login itself still succeeds
// because the token is valid.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := validateCredentials(creds); err != nil {
		return err
	}
	prev := s.state.Peek()
	s.state.Set(Authenticating)

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	raw, err := s.c.do(ctx, http.MethodPost, "/token", strings.NewReader(form.Encode()), requestOptions{
		auth:        authNone,
		contentType: "application/x-www-form-urlencoded",
		keepSession: true,
	})
	if err != nil {
		s.state.Set(prev)
		log.Warn().Err(err).Msg("login failed")
		return err
	}
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.AccessToken == "" {
		s.state.Set(prev)
		return &HTTPError{Status: http.StatusOK, Detail: "malformed token response"}
	}

	s.token.Set(tr.AccessToken)
	s.persist(storageKeyToken, []byte(tr.AccessToken))

	if _, err := s.FetchUser(ctx); err != nil {
		if IsUnauthorized(err) {
			// Token rejected right after issuance; expire already cleared it.
			return err
		}
		// Tolerated: token set, user unknown until the next successful fetch.
		log.Warn().Err(err).Msg("profile fetch after login failed")
	}
	s.state.Set(Authenticated)
	return nil
}

// FetchUser refreshes the profile from GET /users/me. On a server or
// transport failure it falls back to the durably cached profile when one
// exists. A 401 expires the session (no redirect) and is returned as
// ErrUnauthorized.
func (s *Session) FetchUser(ctx context.Context) (*UserProfile, error) {
	var u UserProfile
	err := s.c.getJSON(ctx, "/users/me", authRequired, &u)
	if err == nil {
		s.user.Set(&u)
		if raw, merr := json.Marshal(&u); merr == nil {
			s.persist(storageKeyUser, raw)
		}
		return &u, nil
	}
	if IsRecoverableRead(err) {
		if raw, ok, gerr := s.c.storage.Get(storageKeyUser); gerr == nil && ok {
			var cached UserProfile
			if jerr := json.Unmarshal(raw, &cached); jerr == nil {
				log.Warn().Err(err).Msg("profile fetch failed, using cached profile")
				s.user.Set(&cached)
				return &cached, nil
			}
		}
	}
	return nil, err
}

// Register creates an account. It does not authenticate; the caller logs in
// separately. The returned profile is cached durably so a following login
// has it available even if its own profile fetch fails.
func (s *Session) Register(ctx context.Context, req RegisterRequest) error {
	if err := validateRegistration(req); err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	raw, err := s.c.do(ctx, http.MethodPost, "/register", bytes.NewReader(body), requestOptions{
		auth:        authNone,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	var u UserProfile
	if err := json.Unmarshal(raw, &u); err == nil {
		if b, merr := json.Marshal(&u); merr == nil {
			s.persist(storageKeyUser, b)
		}
	}
	return nil
}

// UpdateProfile sends the edited fields and replaces the whole profile with
// the server's returned representation. Never a partial merge.
func (s *Session) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*UserProfile, error) {
	body, err := json.Marshal(upd)
	if err != nil {
		return nil, err
	}
	raw, err := s.c.do(ctx, http.MethodPut, "/users/update-profile", bytes.NewReader(body), requestOptions{
		auth:        authRequired,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	return s.replaceProfile(raw)
}

// UploadAvatar uploads an avatar image and replaces the profile with the
// server's returned representation.
func (s *Session) UploadAvatar(ctx context.Context, filename string, file io.Reader) (*UserProfile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	raw, err := s.c.do(ctx, http.MethodPost, "/users/upload-avatar", &buf, requestOptions{
		auth:        authRequired,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	return s.replaceProfile(raw)
}

func (s *Session) replaceProfile(raw []byte) (*UserProfile, error) {
	var u UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &HTTPError{Status: http.StatusOK, Detail: "malformed profile response"}
	}
	s.user.Set(&u)
	s.persist(storageKeyUser, raw)
	return &u, nil
}

// Logout clears the session and navigates to /login unless currentRoute is
// on the exemption list. The 401-triggered expiry never navigates; redirect
// policy belongs to the explicit logout alone.
func (s *Session) Logout(currentRoute string) {
	s.clear()
	s.state.Set(Anonymous)
	if s.c.navigate != nil && !logoutRedirectExempt[currentRoute] {
		s.c.navigate("/login")
	}
}

// expire handles a backend token rejection: clear everything, mark Expired,
// run the session-scoped cache hooks, never navigate.
func (s *Session) expire() {
	s.clear()
	s.state.Set(Expired)
	for _, fn := range s.expireHooks {
		fn()
	}
	log.Info().Msg("session expired")
}

func (s *Session) clear() {
	s.token.Set("")
	s.user.Set(nil)
	if err := s.c.storage.Delete(storageKeyToken); err != nil {
		log.Warn().Err(err).Msg("clear token from storage")
	}
	if err := s.c.storage.Delete(storageKeyUser); err != nil {
		log.Warn().Err(err).Msg("clear profile from storage")
	}
}

// persist writes through to durable storage. Fire-and-forget: a failure is
// logged, never surfaced; only the in-memory session is lost until the next
// successful write.
func (s *Session) persist(key string, value []byte) {
	if err := s.c.storage.Put(key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("persist failed")
	}
}

// TokenExpiresAt reads the exp claim of the current token without verifying
// the signature. Diagnostic only; the backend remains the authority.
func (s *Session) TokenExpiresAt() (time.Time, error) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, ErrUnauthenticated
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry")
	}
	return exp.Time, nil
}
