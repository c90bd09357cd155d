package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Request authentication modes.
type authMode int

const (
	// authNone sends no credentials.
	authNone authMode = iota
	// authRequired fails fast with ErrUnauthenticated when no token is set.
	authRequired
	// authOptional attaches the token when present, otherwise proceeds
	// anonymously.
	authOptional
)

type requestOptions struct {
	auth        authMode
	contentType string
	// keepSession suppresses the session-expiry side effect of a 401. Used
	// by calls that never carried the session token (login itself) and by
	// the logout-adjacent paths that already cleared it.
	keepSession bool
}

// detailEnvelope is the backend's error body: {"detail": "..."}.
type detailEnvelope struct {
	Detail string `json:"detail"`
}

// do performs one HTTP round trip against the backend and classifies the
// outcome. On success it returns the response body. Failures map to the
// error taxonomy in errors.go; a 401 on a token-bearing call additionally
// expires the session (unless opts.keepSession).
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, opts requestOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := c.session.Token()
	if opts.auth == authRequired && token == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if opts.contentType != "" {
		req.Header.Set("Content-Type", opts.contentType)
	}
	tokenSent := opts.auth != authNone && token != ""
	if tokenSent {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && tokenSent {
		unauthorizedTotal.Inc()
		if !opts.keepSession {
			c.session.expire()
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env detailEnvelope
		_ = json.Unmarshal(raw, &env)
		return nil, &HTTPError{Status: resp.StatusCode, Detail: env.Detail}
	}
	return raw, nil
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, auth authMode, out any) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil, requestOptions{auth: auth})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("malformed response body")
		return &HTTPError{Status: http.StatusOK, Detail: "malformed response body"}
	}
	return nil
}
