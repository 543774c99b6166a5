package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/playback"
)

// WorkspaceEntry is the live state of one chat workspace.
type WorkspaceEntry struct {
	sync.Mutex
	Workspace *entity.Workspace
	Player    *playback.Player
	Slot      *playback.Slot

	thinking atomic.Bool
}

// Begin marks a question as in flight. It reports false if one already is.
func (e *WorkspaceEntry) Begin() bool {
	return e.thinking.CompareAndSwap(false, true)
}

func (e *WorkspaceEntry) End() {
	e.thinking.Store(false)
}

type WorkspaceStore struct {
	*Store[*WorkspaceEntry]
}

func NewWorkspaceStore(ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{
		Store: newStore(ttl, entity.ErrWorkspaceNotFound, func(e *WorkspaceEntry) {
			if e.Player != nil {
				e.Player.Stop()
			}
		}),
	}
}
