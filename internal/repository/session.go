package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/playback"
)

// SessionEntry is the live state of one assessment session. Hold the lock while reading or mutating Session.
type SessionEntry struct {
	sync.Mutex
	Session *entity.Session
	Player  *playback.Player
	Slot    *playback.Slot

	busy atomic.Bool
}

// Begin marks a remote transition as in flight. It reports false if one already is.
func (e *SessionEntry) Begin() bool {
	return e.busy.CompareAndSwap(false, true)
}

func (e *SessionEntry) End() {
	e.busy.Store(false)
}

func (e *SessionEntry) Busy() bool {
	return e.busy.Load()
}

type SessionStore struct {
	*Store[*SessionEntry]
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		Store: newStore(ttl, entity.ErrSessionNotFound, func(e *SessionEntry) {
			if e.Player != nil {
				e.Player.Stop()
			}
		}),
	}
}
