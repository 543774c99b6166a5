package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/telegram/keyboard"
	"github.com/futig/mitr-backend/internal/telegram/render"
	"github.com/futig/mitr-backend/internal/telegram/state"
	"github.com/futig/mitr-backend/internal/usecase/assessment"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Flow drives one assessment session per Telegram user
type Flow struct {
	api       Sender
	sender    *MessageSender
	states    *state.Manager
	usecase   AssessmentUsecase
	keyboard  *keyboard.Builder
	sendAudio bool
	logger    *zap.Logger
}

func NewFlow(
	api Sender,
	states *state.Manager,
	usecase AssessmentUsecase,
	kb *keyboard.Builder,
	sendAudio bool,
	logger *zap.Logger,
) *Flow {
	return &Flow{
		api:       api,
		sender:    NewMessageSender(api, logger),
		states:    states,
		usecase:   usecase,
		keyboard:  kb,
		sendAudio: sendAudio,
		logger:    logger,
	}
}

// Start creates a fresh session for the user and asks the first profile question
func (f *Flow) Start(ctx context.Context, chatID, userID int64) error {
	sink := NewAudioSink(f.api, chatID, f.sendAudio, f.logger)
	session, err := f.usecase.StartSession(ctx, assessment.WithSink(sink))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	data, err := f.states.ResetSession(ctx, userID, session.ID)
	if err != nil {
		return fmt.Errorf("bind session: %w", err)
	}

	ctxzap.Info(ctx, "telegram session started",
		zap.String("session_id", session.ID),
		zap.Int64("user_id", userID),
	)

	return f.present(ctx, chatID, userID, session, data)
}

// sessionOf returns the user's bound session id and UI state
func (f *Flow) sessionOf(ctx context.Context, userID int64) (string, *state.StateData, error) {
	tgSession, err := f.states.GetSession(ctx, userID)
	if err != nil || tgSession.SessionID == "" {
		return "", nil, entity.ErrSessionNotFound
	}

	data, err := f.states.GetStateData(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	return tgSession.SessionID, data, nil
}

// AnswerProfileField stores the answer to the current profile question and moves on.
// The profile is submitted after the last question.
func (f *Flow) AnswerProfileField(ctx context.Context, chatID, userID int64, value string) error {
	sessionID, data, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	if value == "" && !render.OptionalProfileStep(data.ProfileStep) {
		f.sender.Send(chatID, render.ErrInvalidInput, nil)
		return f.promptProfile(ctx, chatID, userID, data)
	}

	switch data.ProfileStep {
	case 0:
		data.Profile.Name = value
	case 1:
		data.Profile.Email = value
	case 2:
		data.Profile.Age = value
	case 3:
		data.Profile.Occupation = value
	case 4:
		data.Profile.Reason = value
	}
	data.ProfileStep++

	if data.ProfileStep < render.ProfileSteps() {
		return f.promptProfile(ctx, chatID, userID, data)
	}

	typing := NewTypingNotifier(f.api, chatID, f.logger)
	typing.Start(ctx)
	session, err := f.usecase.SubmitProfile(ctx, sessionID, data.Profile)
	typing.Stop()
	if err != nil {
		return err
	}

	// A rejected profile is collected again from the start
	if session.Stage == entity.StageProfile {
		data.ProfileStep = 0
		data.Profile = entity.Profile{}
	}

	return f.present(ctx, chatID, userID, session, data)
}

func (f *Flow) promptProfile(ctx context.Context, chatID, userID int64, data *state.StateData) error {
	var markup interface{}
	if render.OptionalProfileStep(data.ProfileStep) {
		markup = f.keyboard.SkipKeyboard()
	}

	if err := f.sender.SendCritical(chatID, render.RenderProfilePrompt(data.ProfileStep), markup); err != nil {
		return err
	}
	return f.states.UpdateStateData(ctx, userID, data)
}

// SelectAssessment starts the chosen questionnaire
func (f *Flow) SelectAssessment(ctx context.Context, chatID, userID int64, id entity.AssessmentID) error {
	sessionID, data, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	typing := NewTypingNotifier(f.api, chatID, f.logger)
	typing.Start(ctx)
	session, err := f.usecase.SelectAssessment(ctx, sessionID, id)
	typing.Stop()
	if err != nil {
		return err
	}

	return f.present(ctx, chatID, userID, session, data)
}

// Answer submits the chosen option for the current question
func (f *Flow) Answer(ctx context.Context, chatID, userID int64, raw string) error {
	option, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: option %q", entity.ErrInvalidParameter, raw)
	}

	sessionID, data, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	typing := NewTypingNotifier(f.api, chatID, f.logger)
	typing.Start(ctx)
	session, err := f.usecase.SubmitAnswer(ctx, sessionID, option)
	typing.Stop()
	if err != nil {
		return err
	}

	return f.present(ctx, chatID, userID, session, data)
}

// RequestRestart asks for confirmation while a questionnaire is in progress
func (f *Flow) RequestRestart(ctx context.Context, chatID, userID int64) error {
	sessionID, data, err := f.sessionOf(ctx, userID)
	if errors.Is(err, entity.ErrSessionNotFound) {
		return f.Start(ctx, chatID, userID)
	}
	if err != nil {
		return err
	}

	session, err := f.usecase.GetSession(ctx, sessionID)
	if err == nil && session.Failure == nil && session.Stage == entity.StageQuestionnaire {
		data.PendingConfirmation = keyboard.ValueRestart
		if err := f.states.UpdateStateData(ctx, userID, data); err != nil {
			return err
		}
		return f.sender.SendCritical(chatID, render.MsgConfirmRestart, f.keyboard.ConfirmRestartKeyboard())
	}

	return f.Restart(ctx, chatID, userID)
}

// Confirm resolves a pending confirmation
func (f *Flow) Confirm(ctx context.Context, chatID, userID int64, value string) error {
	_, data, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	if value == keyboard.ValueRestart && data.PendingConfirmation == keyboard.ValueRestart {
		return f.Restart(ctx, chatID, userID)
	}

	data.PendingConfirmation = ""
	if err := f.states.UpdateStateData(ctx, userID, data); err != nil {
		return err
	}
	return f.sender.Send(chatID, render.MsgContinue, nil)
}

// Restart discards the session progress. An expired session is replaced by a new one.
func (f *Flow) Restart(ctx context.Context, chatID, userID int64) error {
	sessionID, _, err := f.sessionOf(ctx, userID)
	if err != nil {
		return f.Start(ctx, chatID, userID)
	}

	session, err := f.usecase.Restart(ctx, sessionID)
	if errors.Is(err, entity.ErrSessionNotFound) {
		return f.Start(ctx, chatID, userID)
	}
	if err != nil {
		return err
	}

	data, err := f.states.ResetSession(ctx, userID, session.ID)
	if err != nil {
		return err
	}

	return f.present(ctx, chatID, userID, session, data)
}

// EmailResults sends the results to the email from the profile
func (f *Flow) EmailResults(ctx context.Context, chatID, userID int64) error {
	sessionID, _, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	session, err := f.usecase.SendResults(ctx, sessionID)
	if err != nil {
		return err
	}

	return f.sender.Send(chatID, session.Notification, nil)
}

// Download sends the results report as a file
func (f *Flow) Download(ctx context.Context, chatID, userID int64, format entity.ResultFormat) error {
	sessionID, _, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	data, _, filename, err := f.usecase.Report(ctx, sessionID, format)
	if err != nil {
		return err
	}

	return f.sender.SendDocument(chatID, filename, data)
}

// Remind repeats what the session is waiting for
func (f *Flow) Remind(ctx context.Context, chatID, userID int64) error {
	sessionID, data, err := f.sessionOf(ctx, userID)
	if err != nil {
		return err
	}

	session, err := f.usecase.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	f.sender.Send(chatID, render.MsgUseButtons, nil)
	return f.present(ctx, chatID, userID, session, data)
}

// present delivers new guide messages and the controls for the current stage
func (f *Flow) present(ctx context.Context, chatID, userID int64, s *entity.Session, data *state.StateData) error {
	if data.SentTurns > len(s.Transcript) {
		data.SentTurns = len(s.Transcript)
	}
	for _, turn := range s.Transcript[data.SentTurns:] {
		if turn.Role == entity.RoleGuide {
			f.sender.Send(chatID, turn.Text, nil)
		}
	}
	data.SentTurns = len(s.Transcript)
	data.PendingConfirmation = ""

	if s.Failure != nil {
		if err := f.sender.SendCritical(chatID, render.RenderFailure(s.Failure), f.keyboard.StartOverKeyboard()); err != nil {
			return err
		}
		return f.states.UpdateStateData(ctx, userID, data)
	}

	switch s.Stage {
	case entity.StageProfile:
		return f.promptProfile(ctx, chatID, userID, data)

	case entity.StageTestSelection:
		if err := f.sender.SendCritical(chatID, render.MsgChooseAssessment, f.keyboard.AssessmentKeyboard(s.Offered, s.Recommended)); err != nil {
			return err
		}

	case entity.StageQuestionnaire:
		a, ok := catalog.Assessment(s.AssessmentID)
		if !ok || s.QuestionIndex >= len(a.Questions) {
			return fmt.Errorf("%w: %s", entity.ErrUnknownAssessment, s.AssessmentID)
		}
		text := render.RenderQuestion(s.QuestionIndex+1, len(a.Questions), a.Questions[s.QuestionIndex])
		if err := f.sender.SendCritical(chatID, text, f.keyboard.OptionsKeyboard(a.Options)); err != nil {
			return err
		}

	case entity.StageResults:
		name := string(s.AssessmentID)
		if a, ok := catalog.Assessment(s.AssessmentID); ok {
			name = a.Name
		}
		if err := f.sender.SendCritical(chatID, render.RenderResults(name, s), f.keyboard.ResultsKeyboard()); err != nil {
			return err
		}
	}

	return f.states.UpdateStateData(ctx, userID, data)
}
