package chat

import "context"

// Chatbot is the conversational backend.
type Chatbot interface {
	Ask(ctx context.Context, conversationID, query string) (string, error)
}
