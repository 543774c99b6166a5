package handlers

import (
	"context"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/usecase/assessment"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AssessmentUsecase defines the session operations the Telegram flow drives
type AssessmentUsecase interface {
	StartSession(ctx context.Context, opts ...assessment.SessionOption) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.Session, error)
	SelectAssessment(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (*entity.Session, error)
	SubmitAnswer(ctx context.Context, sessionID string, option int) (*entity.Session, error)
	Restart(ctx context.Context, sessionID string) (*entity.Session, error)
	SendResults(ctx context.Context, sessionID string) (*entity.Session, error)
	Report(ctx context.Context, sessionID string, format entity.ResultFormat) ([]byte, string, string, error)
}

// Sender is the part of *tgbotapi.BotAPI the handlers use
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
