package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/futig/mitr-backend/internal/telegram/state"
)

var errTelegramStateNotFound = errors.New("telegram session not found")

// TelegramStateStore keeps the Telegram user to session mapping in memory.
type TelegramStateStore struct {
	store *Store[*state.TelegramSession]
}

var _ state.Storage = &TelegramStateStore{}

func NewTelegramStateStore(ttl time.Duration) *TelegramStateStore {
	return &TelegramStateStore{
		store: newStore[*state.TelegramSession](ttl, errTelegramStateNotFound, nil),
	}
}

func (r *TelegramStateStore) Get(_ context.Context, userID int64) (*state.TelegramSession, error) {
	session, err := r.store.Get(key(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %d", err, userID)
	}

	clone := *session
	clone.StateData = append([]byte(nil), session.StateData...)
	return &clone, nil
}

func (r *TelegramStateStore) Set(_ context.Context, session *state.TelegramSession) error {
	clone := *session
	clone.StateData = append([]byte(nil), session.StateData...)
	r.store.cache.SetDefault(key(session.UserID), &clone)
	return nil
}

func (r *TelegramStateStore) Delete(_ context.Context, userID int64) error {
	r.store.Delete(key(userID))
	return nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
