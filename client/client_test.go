package client

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/unihub/unihub-client/persist"
)

// newTestClient wires a client against an httptest backend with an in-memory
// durable store. The navigator records routes for redirect-policy assertions.
func newTestClient(t *testing.T, handler http.Handler, kv persist.KV) (*Client, *[]string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	if kv == nil {
		kv = persist.NewMemory()
	}
	var routes []string
	c := New(srv.URL,
		WithStorage(kv),
		WithNavigator(func(route string) { routes = append(routes, route) }),
	)
	return c, &routes
}

// seedSession stores a token (and optionally a profile) so the client under
// test restores an authenticated session.
func seedSession(t *testing.T, kv persist.KV, token string, profile *UserProfile) {
	t.Helper()
	if err := kv.Put(storageKeyToken, []byte(token)); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			t.Fatalf("marshal profile: %v", err)
		}
		if err := kv.Put(storageKeyUser, raw); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// makeJWT builds an unsigned-but-parseable JWT with the given expiry.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal claim: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(b)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"sub": "student", "exp": exp.Unix()})
	return header + "." + claims + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

func TestNewDefaultsToMemoryStorage(t *testing.T) {
	c := New("http://example.invalid")
	if c.Session().Token() != "" {
		t.Fatal("fresh client must be anonymous")
	}
	if c.Session().State() != Anonymous {
		t.Fatalf("state %v", c.Session().State())
	}
}

func TestCloseReleasesStorage(t *testing.T) {
	kv := persist.NewMemory()
	c := New("http://example.invalid", WithStorage(kv))
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
