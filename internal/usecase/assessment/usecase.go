package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/formatter"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/futig/mitr-backend/internal/pkg/metrics"
	"github.com/futig/mitr-backend/internal/playback"
	"github.com/futig/mitr-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Usecase drives assessment sessions through profile, selection, questionnaire and results.
type Usecase struct {
	sessions   *repository.SessionStore
	screener   Screener
	notifier   Notifier
	synth      playback.Synthesizer
	formatters *formatter.Factory
	metrics    *metrics.Metrics
	playerOpts []playback.Option
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Usecase)

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *Usecase) {
		uc.metrics = m
	}
}

func WithPlayerOptions(opts ...playback.Option) Option {
	return func(uc *Usecase) {
		uc.playerOpts = append(uc.playerOpts, opts...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *Usecase) {
		uc.now = now
	}
}

func NewUsecase(
	sessions *repository.SessionStore,
	screener Screener,
	notifier Notifier,
	synth playback.Synthesizer,
	logger *zap.Logger,
	opts ...Option,
) *Usecase {
	uc := &Usecase{
		sessions:   sessions,
		screener:   screener,
		notifier:   notifier,
		synth:      synth,
		formatters: formatter.NewFactory(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type sessionConfig struct {
	sink playback.Sink
}

type SessionOption func(*sessionConfig)

// WithSink plays guide audio through sink instead of the web audio slot.
func WithSink(sink playback.Sink) SessionOption {
	return func(c *sessionConfig) {
		c.sink = sink
	}
}

// StartSession creates a new session in the profile stage.
func (uc *Usecase) StartSession(ctx context.Context, opts ...SessionOption) (*entity.Session, error) {
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	entry := &repository.SessionEntry{
		Session: entity.NewSession(uuid.NewString(), uc.now()),
	}

	sink := cfg.sink
	if sink == nil {
		entry.Slot = playback.NewSlot()
		sink = entry.Slot
	}

	playerOpts := append([]playback.Option{
		playback.WithMetrics(uc.metrics),
		playback.WithOnDone(uc.playbackDone(entry)),
	}, uc.playerOpts...)
	entry.Player = playback.NewPlayer(uc.synth, sink,
		uc.logger.With(zap.String("session_id", entry.Session.ID)), playerOpts...)

	if err := uc.sessions.Add(entry.Session.ID, entry); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	ctxzap.Info(ctx, "assessment session started", zap.String("session_id", entry.Session.ID))
	return entry.Session.Clone(), nil
}

func (uc *Usecase) GetSession(_ context.Context, sessionID string) (*entity.Session, error) {
	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()
	return entry.Session.Clone(), nil
}

// SubmitProfile records the profile, picks a recommended assessment and moves to test selection.
func (uc *Usecase) SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.Session, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "submit_profile"), sessionID)

	entry, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.End()

	entry.Lock()
	s := entry.Session
	if err := checkStage(s, entity.StageProfile); err != nil {
		entry.Unlock()
		return nil, err
	}

	profile = profile.Normalize()
	recommended, _ := catalog.Recommend(profile.Reason)

	tx := uc.beginTransition(s, entity.OperationSubmitProfile)
	s.Profile = &profile
	s.Recommended = recommended
	entry.Unlock()

	_, err = uc.screener.SubmitProfile(context.WithoutCancel(ctx), sessionID, profile)

	entry.Lock()
	defer entry.Unlock()

	advance := func() {
		s.Offered = catalog.Offer(recommended)
		s.Stage = entity.StageTestSelection
	}
	tx.resolve(ctx, err, outcomes{
		commit: advance,
		compensate: func() {
			simulated := simulateProfile(profile)
			s.Profile = &simulated
			advance()
		},
		rollback: func() {
			s.Profile = nil
			s.Recommended = ""
			s.Offered = nil
		},
	})

	return s.Clone(), nil
}

// SelectAssessment starts the chosen questionnaire on the backend.
func (uc *Usecase) SelectAssessment(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (*entity.Session, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "select_assessment"), sessionID)

	a, ok := catalog.Assessment(assessmentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAssessment, assessmentID)
	}

	entry, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.End()

	entry.Lock()
	s := entry.Session
	if err := checkStage(s, entity.StageTestSelection); err != nil {
		entry.Unlock()
		return nil, err
	}

	tx := uc.beginTransition(s, entity.OperationStartSession)
	s.AssessmentID = a.ID
	entry.Unlock()

	reply, err := uc.screener.StartSession(context.WithoutCancel(ctx), sessionID, a.ID)

	entry.Lock()
	defer entry.Unlock()

	begin := func(text string, speak bool) {
		s.QuestionIndex = 0
		s.Answers = []int{}
		s.Evaluation = nil
		s.Transcript = nil
		turn := uc.appendTurn(s, entity.RoleGuide, text)
		s.Stage = entity.StageQuestionnaire
		if speak {
			uc.speak(entry, turn)
		}
	}
	tx.resolve(ctx, err, outcomes{
		commit: func() {
			text := cleanReply(reply)
			begin(text, text != "")
		},
		compensate: func() {
			begin(simulateStart(a), false)
		},
		rollback: func() {
			s.AssessmentID = ""
			s.Evaluation = nil
		},
	})

	return s.Clone(), nil
}

// SubmitAnswer answers the current question. Answering the last question always ends in results.
func (uc *Usecase) SubmitAnswer(ctx context.Context, sessionID string, option int) (*entity.Session, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "submit_answer"), sessionID)

	entry, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.End()

	entry.Lock()
	s := entry.Session
	if err := checkStage(s, entity.StageQuestionnaire); err != nil {
		entry.Unlock()
		return nil, err
	}

	a, ok := catalog.Assessment(s.AssessmentID)
	if !ok {
		entry.Unlock()
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAssessment, s.AssessmentID)
	}
	if !a.ValidOption(option) {
		entry.Unlock()
		return nil, fmt.Errorf("%w: %d", entity.ErrInvalidAnswer, option)
	}

	index := s.QuestionIndex
	last := a.IsLastQuestion(index)
	transcriptLen := len(s.Transcript)

	tx := uc.beginTransition(s, entity.OperationSubmitAnswer)
	uc.appendTurn(s, entity.RoleUser, a.Options[option])
	entry.Unlock()

	reply, err := uc.screener.SubmitAnswer(context.WithoutCancel(ctx), sessionID, option)

	entry.Lock()
	defer entry.Unlock()

	advance := func(complete bool) {
		s.Answers = append(s.Answers, option)
		if complete || last {
			s.Stage = entity.StageResults
			return
		}
		s.QuestionIndex = index + 1
	}
	tx.resolve(ctx, err, outcomes{
		commit: func() {
			text := cleanReply(reply.Reply)
			turn := uc.appendTurn(s, entity.RoleGuide, text)
			if reply.Evaluation != nil {
				s.Evaluation = reply.Evaluation
			}
			advance(reply.Completed)
			if text != "" {
				uc.speak(entry, turn)
			}
		},
		compensate: func() {
			uc.appendTurn(s, entity.RoleGuide, simulateAnswer(index, last))
			advance(false)
			if last {
				simulateEvaluation(s)
			}
		},
		rollback: func() {
			s.Transcript = s.Transcript[:transcriptLen]
		},
	})

	return s.Clone(), nil
}

// Restart stops playback and discards everything entered so far.
func (uc *Usecase) Restart(ctx context.Context, sessionID string) (*entity.Session, error) {
	entry, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.End()

	entry.Lock()
	defer entry.Unlock()

	entry.Player.Stop()
	entry.Session.Reset(uc.now())

	ctxzap.Info(ctx, "assessment session restarted", zap.String("session_id", sessionID))
	return entry.Session.Clone(), nil
}

func (uc *Usecase) begin(sessionID string) (*repository.SessionEntry, error) {
	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !entry.Begin() {
		return nil, entity.ErrTransitionInFlight
	}
	return entry, nil
}

func checkStage(s *entity.Session, stage entity.Stage) error {
	if s.Failure != nil {
		return entity.ErrSessionFailed
	}
	if s.Stage != stage {
		return fmt.Errorf("%w: session is in %s, expected %s", entity.ErrWrongStage, s.Stage, stage)
	}
	return nil
}

func (uc *Usecase) appendTurn(s *entity.Session, role entity.Role, text string) entity.ChatTurn {
	turn := entity.ChatTurn{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
	}
	s.Transcript = append(s.Transcript, turn)
	return turn
}
