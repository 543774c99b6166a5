package assessment

import (
	"context"

	"github.com/futig/mitr-backend/internal/entity"
)

// Screener is the assessment backend.
type Screener interface {
	SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.ProfileReply, error)
	StartSession(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (string, error)
	SubmitAnswer(ctx context.Context, sessionID string, answerIndex int) (*entity.AnswerReply, error)
}

// Notifier delivers the results notification.
type Notifier interface {
	Send(ctx context.Context, n *entity.ResultsNotification) error
}
