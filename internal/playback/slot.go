package playback

import (
	"context"
	"sync"
)

// Slot is the sink behind the web client. It holds the current clip until the
// client reports the end of playback or the clip is stopped.
type Slot struct {
	mu      sync.Mutex
	current *Clip
	ended   chan struct{}
}

func NewSlot() *Slot {
	return &Slot{}
}

func (s *Slot) Play(ctx context.Context, clip *Clip) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.release()
	done := make(chan struct{})
	s.current = clip
	s.ended = done
	s.mu.Unlock()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.mu.Lock()
	if s.ended == done {
		s.current = nil
		s.ended = nil
	}
	s.mu.Unlock()

	return err
}

func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

// Ended marks the clip with the given key as finished. It reports false when that clip is no longer current.
func (s *Slot) Ended(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Key != key {
		return false
	}
	s.release()
	return true
}

// Current returns the clip being played, or nil.
func (s *Slot) Current() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Slot) release() {
	if s.ended != nil {
		close(s.ended)
	}
	s.current = nil
	s.ended = nil
}
