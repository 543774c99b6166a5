package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
)

// TelegramSession represents telegram user -> session mapping with UI state
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	SessionID string          `json:"session_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"` // Telegram-specific UI state
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData is the Telegram UI state kept next to the assessment session
type StateData struct {
	Version int `json:"version,omitempty"`

	// Profile collection: the field being asked and the answers so far
	ProfileStep int            `json:"profile_step,omitempty"`
	Profile     entity.Profile `json:"profile"`

	// Number of transcript turns already delivered to the chat
	SentTurns int `json:"sent_turns,omitempty"`

	// Confirmation for destructive actions
	PendingConfirmation string `json:"pending_confirmation,omitempty"` // "restart"
}

// StateDataCurrentVersion is bumped whenever StateData changes incompatibly
const StateDataCurrentVersion = 1

// Storage keeps one TelegramSession per user. Get fails for unknown users.
type Storage interface {
	Get(ctx context.Context, userID int64) (*TelegramSession, error)
	Set(ctx context.Context, session *TelegramSession) error
	Delete(ctx context.Context, userID int64) error
}
