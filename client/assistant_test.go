package client

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/unihub/unihub-client/persist"
)

func TestAssistantSendRoundTrip(t *testing.T) {
	kv := persist.NewMemory()
	seedSession(t, kv, "tok-1", nil)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assistant" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("authorization %q", got)
		}
		var prompt AssistantPrompt
		if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
			t.Errorf("decode prompt: %v", err)
		}
		if prompt.Prompt != "when is the exam?" || prompt.Context != "timetable" {
			t.Errorf("prompt %+v", prompt)
		}
		writeJSON(t, w, http.StatusOK, assistantAnswer{Answer: "June 3rd"})
	}), kv)

	c.Assistant().SetContext("timetable")
	answer, err := c.Assistant().Send(context.Background(), "when is the exam?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if answer != "June 3rd" {
		t.Fatalf("answer %q", answer)
	}

	want := []Message{
		{Sender: ActorStudent, Content: "when is the exam?"},
		{Sender: ActorAgent, Content: "June 3rd"},
	}
	if !reflect.DeepEqual(c.Assistant().Conversation().Messages(), want) {
		t.Fatalf("log %+v", c.Assistant().Conversation().Messages())
	}
}

func TestAssistantSendWithoutSessionKeepsUserMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no call expected without a token")
	}), nil)

	_, err := c.Assistant().Send(context.Background(), "hello")
	if !IsUnauthenticated(err) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	// Optimistic append stays even though the transport failed.
	want := []Message{{Sender: ActorStudent, Content: "hello"}}
	if !reflect.DeepEqual(c.Assistant().Conversation().Messages(), want) {
		t.Fatalf("log %+v", c.Assistant().Conversation().Messages())
	}
}

func TestLoadHistoryMapsAlternatingTurns(t *testing.T) {
	kv := persist.NewMemory()
	seedSession(t, kv, "tok-1", nil)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []assistantHistory{
			{Messages: []string{"hi", "hello!", "when is the exam?", "June 3rd"}},
		})
	}), kv)

	if err := c.Assistant().LoadHistory(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []Message{
		{Sender: ActorStudent, Content: "hi"},
		{Sender: ActorAgent, Content: "hello!"},
		{Sender: ActorStudent, Content: "when is the exam?"},
		{Sender: ActorAgent, Content: "June 3rd"},
	}
	if !reflect.DeepEqual(c.Assistant().Conversation().Messages(), want) {
		t.Fatalf("log %+v", c.Assistant().Conversation().Messages())
	}
	if c.Assistant().Conversation().Loading() {
		t.Fatal("loading flag must clear after load")
	}
}

func TestLoadHistoryWithoutSessionResetsLog(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no call expected without a token")
	}), nil)

	if err := c.Assistant().LoadHistory(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.Assistant().Conversation().Messages(); len(got) != 0 {
		t.Fatalf("log %+v", got)
	}
}

func TestLoadHistoryFailureResetsLog(t *testing.T) {
	kv := persist.NewMemory()
	seedSession(t, kv, "tok-1", nil)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), kv)

	if err := c.Assistant().LoadHistory(context.Background()); err == nil {
		t.Fatal("want error from failed load")
	}
	if got := c.Assistant().Conversation().Messages(); len(got) != 0 {
		t.Fatalf("log %+v", got)
	}
}

func TestClearHistoryDeletesAndResets(t *testing.T) {
	kv := persist.NewMemory()
	seedSession(t, kv, "tok-1", nil)
	var deleted bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /assistant", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, assistantAnswer{Answer: "hello!"})
	})
	mux.HandleFunc("DELETE /assistant", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, mux, kv)

	if _, err := c.Assistant().Send(context.Background(), "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.Assistant().ClearHistory(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !deleted {
		t.Fatal("server-side history not deleted")
	}
	if got := c.Assistant().Conversation().Messages(); len(got) != 0 {
		t.Fatalf("log %+v", got)
	}
}

func TestHintsFetchAndDegrade(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /assistant/hints", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("context") {
		case "events":
			writeJSON(t, w, http.StatusOK, assistantHints{Hints: []string{"What events are on this week?"}})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	c, _ := newTestClient(t, mux, nil)

	hints, err := c.Assistant().Hints(context.Background(), "events")
	if err != nil {
		t.Fatalf("hints: %v", err)
	}
	if len(hints) != 1 {
		t.Fatalf("hints %+v", hints)
	}

	// Server failure degrades to no hints, not an error.
	hints, err = c.Assistant().Hints(context.Background(), "menu")
	if err != nil {
		t.Fatalf("degraded hints: %v", err)
	}
	if hints != nil {
		t.Fatalf("hints %+v", hints)
	}
}
