package assessment

import (
	"context"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/playback"
	usecase "github.com/futig/mitr-backend/internal/usecase/assessment"
)

type AssessmentUsecase interface {
	StartSession(ctx context.Context, opts ...usecase.SessionOption) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.Session, error)
	SelectAssessment(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (*entity.Session, error)
	SubmitAnswer(ctx context.Context, sessionID string, option int) (*entity.Session, error)
	Restart(ctx context.Context, sessionID string) (*entity.Session, error)
	TogglePlayback(ctx context.Context, sessionID, turnID string) (*entity.Session, error)
	CurrentAudio(ctx context.Context, sessionID string) (*playback.Clip, error)
	AudioEnded(ctx context.Context, sessionID, turnID string) error
	SendResults(ctx context.Context, sessionID string) (*entity.Session, error)
	Report(ctx context.Context, sessionID string, format entity.ResultFormat) ([]byte, string, string, error)
}
