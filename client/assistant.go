package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// Assistant is the AI-assistant chat surface: an optimistic conversation
// backed by the /assistant endpoints.
type Assistant struct {
	c    *Client
	conv *Conversation

	// context travels with every prompt so the backend can ground answers
	// in the page the user is on.
	contextHint string
}

func newAssistant(c *Client) *Assistant {
	a := &Assistant{c: c}
	a.conv = newConversation("assistant", nil, a.ask)
	return a
}

// Conversation returns the assistant's message log.
func (a *Assistant) Conversation() *Conversation { return a.conv }

// SetContext sets the context string attached to subsequent prompts.
func (a *Assistant) SetContext(ctx string) { a.contextHint = ctx }

// Send appends the user's message optimistically and asks the backend for an
// answer; see Conversation.Send for the exact semantics.
func (a *Assistant) Send(ctx context.Context, text string) (string, error) {
	return a.conv.Send(ctx, text)
}

// ask is the conversation's reply transport.
func (a *Assistant) ask(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(AssistantPrompt{Prompt: prompt, Context: a.contextHint})
	if err != nil {
		return "", err
	}
	raw, err := a.c.do(ctx, http.MethodPost, "/assistant", bytes.NewReader(body), requestOptions{
		auth:        authRequired,
		contentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	var ans assistantAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return "", &HTTPError{Status: http.StatusOK, Detail: "malformed assistant response"}
	}
	return ans.Answer, nil
}

// LoadHistory replaces the log with the server's reconstruction. The backend
// stores strictly alternating turns as a flat string list: even indices are
// the student, odd the assistant. On failure or without a session the log
// resets to empty.
func (a *Assistant) LoadHistory(ctx context.Context) error {
	if a.c.session.Token() == "" {
		a.conv.replaceLog(nil)
		return nil
	}

	a.conv.loading.Set(true)
	defer a.conv.loading.Set(false)

	var sessions []assistantHistory
	if err := a.c.getJSON(ctx, "/assistant", authRequired, &sessions); err != nil {
		log.Warn().Err(err).Msg("loading assistant history failed")
		a.conv.replaceLog(nil)
		return err
	}
	if len(sessions) == 0 || len(sessions[0].Messages) == 0 {
		a.conv.replaceLog(nil)
		return nil
	}

	turns := sessions[0].Messages
	msgs := make([]Message, 0, len(turns))
	for i, content := range turns {
		sender := ActorStudent
		if i%2 == 1 {
			sender = ActorAgent
		}
		msgs = append(msgs, Message{Sender: sender, Content: content})
	}
	a.conv.replaceLog(msgs)
	return nil
}

// ClearHistory deletes the server-side history and resets the local log.
func (a *Assistant) ClearHistory(ctx context.Context) error {
	if _, err := a.c.do(ctx, http.MethodDelete, "/assistant", nil, requestOptions{auth: authRequired}); err != nil {
		return err
	}
	a.conv.Clear()
	return nil
}

// Hints fetches suggested prompts for a UI context. Public; failures yield
// an empty list.
func (a *Assistant) Hints(ctx context.Context, uiContext string) ([]string, error) {
	var resp assistantHints
	path := "/assistant/hints?context=" + url.QueryEscape(uiContext)
	if err := a.c.getJSON(ctx, path, authNone, &resp); err != nil {
		if IsRecoverableRead(err) {
			log.Warn().Err(err).Msg("hints unavailable")
			return nil, nil
		}
		return nil, err
	}
	return resp.Hints, nil
}
