// Package client is the UniHub SDK: a typed client for the campus backend
// (auth, events, canteen menu, timetable, AI assistant) built around a small
// reactive state layer. UI surfaces read from observable containers; user
// actions call into the session, conversation and collection stores; results
// flow back through the normalizer into the containers.
package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/persist"
)

// --------------------------------------------------------------------
// debugTransport – optional HTTP round-trip logger
// --------------------------------------------------------------------

func debugEnabled() bool {
	return os.Getenv("UNIHUB_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if debugEnabled() {
		reqDump, err := httputil.DumpRequestOut(req, true)
		if err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
		}
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		if debugEnabled() {
			log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		}
		return nil, err
	}

	if debugEnabled() {
		respDump, err := httputil.DumpResponse(resp, true)
		if err == nil {
			log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
		}
	}
	return resp, nil
}

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client owns one instance of every store: one session, one conversation per
// chat surface, one cache per collection. Construct it once at startup and
// pass it to whatever needs state; the stores never reach into each other
// except through the session-token read that authenticates requests.
type Client struct {
	baseURL string
	http    *http.Client
	storage persist.KV

	// navigate is the caller-supplied route-change hook; logout uses it
	// unless the current route is exempt. nil means no navigation.
	navigate func(route string)

	session   *Session
	assistant *Assistant
	psych     *Conversation
	events    *Events
	menu      *Menu
	timetable *Timetable
}

// New constructs a Client with optional functional arguments. The session is
// restored from durable storage before New returns.
func New(base string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugEnabled() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.storage == nil {
		c.storage = persist.NewMemory()
	}

	c.session = newSession(c)
	c.assistant = newAssistant(c)
	c.psych = newPsychologistConversation()
	c.events = newEvents(c)
	c.menu = newMenu(c)
	c.timetable = newTimetable(c)
	return c
}

// Session returns the persisted session store.
func (c *Client) Session() *Session { return c.session }

// Assistant returns the AI-assistant surface.
func (c *Client) Assistant() *Assistant { return c.assistant }

// Psychologist returns the virtual-psychologist conversation.
func (c *Client) Psychologist() *Conversation { return c.psych }

// Events returns the events surface.
func (c *Client) Events() *Events { return c.events }

// Menu returns the canteen surface.
func (c *Client) Menu() *Menu { return c.menu }

// Timetable returns the timetable surface.
func (c *Client) Timetable() *Timetable { return c.timetable }

// Close releases the durable storage handle.
func (c *Client) Close() error { return c.storage.Close() }
