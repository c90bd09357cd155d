package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/observable"
)

// Actor identifies the author of a chat message.
type Actor string

const (
	// ActorStudent is the local user.
	ActorStudent Actor = "student"
	// ActorAgent is the remote (or simulated) interlocutor.
	ActorAgent Actor = "agent"
)

// Message is one entry of a conversation log.
type Message struct {
	Sender  Actor  `json:"sender"`
	Content string `json:"content"`
}

// replyFunc produces the agent's answer to a prompt. The assistant wires an
// HTTP round trip here; the psychologist wires the pure keyword responder.
type replyFunc func(ctx context.Context, prompt string) (string, error)

// Conversation is an optimistic, append-only message log for one chat
// surface. The user's message is appended before the reply round trip and is
// never rolled back: the user's own utterance is truthful regardless of the
// server outcome. A loading flag rejects (does not queue) concurrent sends.
type Conversation struct {
	surface string

	logv    *observable.Value[[]Message]
	loading *observable.Value[bool]

	// seed, when non-nil, is the greeting the log resets to on Clear.
	seed *Message

	reply replyFunc

	// mu makes the busy check-and-set atomic; everything after it touches
	// the containers, which order their own notifications.
	mu sync.Mutex
}

func newConversation(surface string, seed *Message, reply replyFunc) *Conversation {
	c := &Conversation{
		surface: surface,
		logv:    observable.New([]Message(nil)),
		loading: observable.New(false),
		seed:    seed,
		reply:   reply,
	}
	c.resetLog()
	return c
}

// Messages returns the current log.
func (c *Conversation) Messages() []Message { return c.logv.Peek() }

// Loading reports whether a send or history load owns the conversation.
func (c *Conversation) Loading() bool { return c.loading.Peek() }

// Observe registers an observer on the message log.
func (c *Conversation) Observe(cb func([]Message)) (cancel func()) { return c.logv.Observe(cb) }

// ObserveLoading registers an observer on the loading flag.
func (c *Conversation) ObserveLoading(cb func(bool)) (cancel func()) { return c.loading.Observe(cb) }

// Send appends the user's message, obtains the agent reply and appends it.
//
// The user entry lands in the log before the reply call resolves and stays
// there on failure; the caller gets the error (and no agent entry) and may
// re-attempt. While a send is in flight further sends fail with ErrBusy.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	if err := validateMessage(text); err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.loading.Peek() {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.loading.Set(true)
	c.mu.Unlock()
	defer c.loading.Set(false)

	c.append(Message{Sender: ActorStudent, Content: text})
	chatMessagesTotal.WithLabelValues(c.surface).Inc()

	answer, err := c.reply(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("surface", c.surface).Msg("send failed")
		return "", err
	}
	c.append(Message{Sender: ActorAgent, Content: answer})
	return answer, nil
}

func (c *Conversation) append(m Message) {
	c.logv.Update(func(msgs []Message) []Message {
		out := make([]Message, len(msgs), len(msgs)+1)
		copy(out, msgs)
		return append(out, m)
	})
}

// Clear resets the log to empty, or to the seed greeting when one is set.
// It does not wait for or cancel an in-flight send.
func (c *Conversation) Clear() { c.resetLog() }

func (c *Conversation) resetLog() {
	if c.seed != nil {
		c.logv.Set([]Message{*c.seed})
		return
	}
	c.logv.Set(nil)
}

// replaceLog installs a server-reconstructed history wholesale.
func (c *Conversation) replaceLog(msgs []Message) { c.logv.Set(msgs) }
