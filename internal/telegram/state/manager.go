package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type contextKey string

const stateDataKey contextKey = "state_data"

// StateDataFromContext retrieves StateData from context if available
func StateDataFromContext(ctx context.Context) (*StateData, bool) {
	data, ok := ctx.Value(stateDataKey).(*StateData)
	return data, ok
}

// ContextWithStateData attaches StateData to context for request-scoped caching
func ContextWithStateData(ctx context.Context, data *StateData) context.Context {
	return context.WithValue(ctx, stateDataKey, data)
}

// Manager binds Telegram users to assessment sessions and keeps their UI state
type Manager struct {
	storage Storage
	now     func() time.Time
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

func (m *Manager) GetSession(ctx context.Context, userID int64) (*TelegramSession, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get telegram session from storage: %w", err)
	}

	return session, nil
}

// DeleteSession forgets the user's binding, e.g. after the session expired
func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session from storage: %w", err)
	}

	return nil
}

// GetStateData returns the request cached state if present, otherwise loads it from storage
func (m *Manager) GetStateData(ctx context.Context, userID int64) (*StateData, error) {
	if data, ok := StateDataFromContext(ctx); ok {
		return data, nil
	}

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &StateData{Version: StateDataCurrentVersion}
	if len(session.StateData) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(session.StateData, data); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}
	if data.Version != StateDataCurrentVersion {
		// Older layouts cannot be trusted to match the session, start the UI over
		return &StateData{Version: StateDataCurrentVersion}, nil
	}

	return data, nil
}

// UpdateStateData stores data for the user's current binding
func (m *Manager) UpdateStateData(ctx context.Context, userID int64, data *StateData) error {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	raw, err := encode(data)
	if err != nil {
		return err
	}

	session.StateData = raw
	session.UpdatedAt = m.now()
	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}

	return nil
}

// ResetSession binds the user to sessionID and clears all UI state
func (m *Manager) ResetSession(ctx context.Context, userID int64, sessionID string) (*StateData, error) {
	data := &StateData{}
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}

	now := m.now()
	session := &TelegramSession{
		UserID:    userID,
		SessionID: sessionID,
		StateData: raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save telegram session to storage: %w", err)
	}

	return data, nil
}

func encode(data *StateData) (json.RawMessage, error) {
	data.Version = StateDataCurrentVersion

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal state data: %w", err)
	}
	return raw, nil
}
