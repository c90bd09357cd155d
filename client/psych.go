package client

import (
	"context"
	"strings"
)

// The virtual psychologist is a rule-based canned-response generator. It is
// pure string classification with no state and no I/O; the conversation
// store around it behaves exactly like the assistant's, minus the network.

const psychologistGreeting = "Hi! I'm the virtual psychologist. I'm here to listen and help you work through anything that's troubling you. Tell me what's on your mind today."

// PsychologistReply classifies message by keyword and returns the canned
// response for its topic.
func PsychologistReply(message string) string {
	m := strings.ToLower(message)

	switch {
	case containsAny(m, "stress", "anxiety", "anxious", "worried", "worry"):
		return "I understand you're feeling anxious. That's a completely normal reaction to difficult situations. Let's talk about what exactly is causing you stress and think about practical steps that could help you cope with these feelings."
	case containsAny(m, "sad", "depress", "down", "unhappy"):
		return "I hear that you're feeling sad. It's important to acknowledge these feelings and give yourself permission to have them. Tell me more about what's going on in your life. Together we can find ways to help you move forward, step by step."
	case containsAny(m, "study", "studies", "exam", "exams", "finals", "session"):
		return "Academic stress is something many students face. It's important to find a balance between studying and rest. Which parts of your studies are the hardest for you right now? Maybe we can work out a strategy to handle them more effectively."
	case containsAny(m, "relationship", "friends", "friend", "conflict"):
		return "Relationships with other people can be a source of both joy and stress. Tell me more about the situation that's bothering you. We can look at it from different angles and find constructive ways to handle it."
	case containsAny(m, "hello", "hi ", "hey"), strings.HasPrefix(m, "hi"):
		return "Hello! I'm glad you reached out. How are you feeling today? Is there anything in particular you'd like to talk about?"
	}
	return "Thank you for sharing that with me. Tell me more about how you feel in this situation. What are you experiencing right now?"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// newPsychologistConversation seeds the log with the greeting and wires the
// pure responder as the reply transport. It never fails and never touches
// the network, but keeps the exact optimistic-append and loading-flag
// semantics of every other conversation.
func newPsychologistConversation() *Conversation {
	seed := Message{Sender: ActorAgent, Content: psychologistGreeting}
	return newConversation("psychologist", &seed, func(_ context.Context, prompt string) (string, error) {
		return PsychologistReply(prompt), nil
	})
}
