package assessment

import (
	"context"
	"fmt"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/playback"
	"github.com/futig/mitr-backend/internal/repository"
)

// speak plays a guide turn and makes it the only playing one. Caller holds the entry lock.
func (uc *Usecase) speak(entry *repository.SessionEntry, turn entity.ChatTurn) {
	entry.Session.SetPlaying(turn.ID)
	entry.Player.Play(turn.ID, turn.Text)
}

// playbackDone clears the flag of a turn whose clip ended or failed.
func (uc *Usecase) playbackDone(entry *repository.SessionEntry) func(key string) {
	return func(key string) {
		entry.Lock()
		defer entry.Unlock()

		// The same turn may have been started again in the meantime.
		if entry.Player.Current() == key {
			return
		}
		if i := entry.Session.Turn(key); i >= 0 {
			entry.Session.Transcript[i].Playing = false
		}
	}
}

// TogglePlayback starts the turn's audio, or stops it if it is the one playing.
func (uc *Usecase) TogglePlayback(_ context.Context, sessionID, turnID string) (*entity.Session, error) {
	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	s := entry.Session
	if s.Failure != nil {
		return nil, entity.ErrSessionFailed
	}

	i := s.Turn(turnID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrTurnNotFound, turnID)
	}
	turn := s.Transcript[i]
	if turn.Role != entity.RoleGuide {
		return nil, fmt.Errorf("%w: only guide messages can be played", entity.ErrInvalidParameter)
	}

	if turn.Playing {
		s.SetPlaying("")
		entry.Player.Stop()
	} else {
		uc.speak(entry, turn)
	}

	return s.Clone(), nil
}

// CurrentAudio returns the clip waiting in the session's web audio slot.
func (uc *Usecase) CurrentAudio(_ context.Context, sessionID string) (*playback.Clip, error) {
	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if entry.Slot == nil {
		return nil, entity.ErrNoAudio
	}

	clip := entry.Slot.Current()
	if clip == nil {
		return nil, entity.ErrNoAudio
	}
	return clip, nil
}

// AudioEnded is reported by the web client when the clip for turnID finished playing.
func (uc *Usecase) AudioEnded(_ context.Context, sessionID, turnID string) error {
	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if entry.Slot == nil || !entry.Slot.Ended(turnID) {
		return entity.ErrNoAudio
	}
	return nil
}
