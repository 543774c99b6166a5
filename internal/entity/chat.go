package entity

import "time"

const DefaultConversationTitle = "New Chat"

type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	HTML      string    `json:"html,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Conversation struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []ChatMessage `json:"messages"`
}

// Workspace holds the conversations of one chat client.
type Workspace struct {
	ID            string         `json:"workspace_id"`
	Conversations []Conversation `json:"conversations"`
	ActiveID      string         `json:"active_conversation_id"`
	Thinking      bool           `json:"thinking"`
	Playing       bool           `json:"is_playing"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Conversation returns the index of the conversation with the given id, or -1.
func (w *Workspace) Conversation(id string) int {
	for i := range w.Conversations {
		if w.Conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) Clone() *Workspace {
	clone := *w
	clone.Conversations = make([]Conversation, len(w.Conversations))
	for i, conv := range w.Conversations {
		conv.Messages = append([]ChatMessage(nil), conv.Messages...)
		clone.Conversations[i] = conv
	}
	return &clone
}
