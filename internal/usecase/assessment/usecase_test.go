package assessment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	"github.com/futig/mitr-backend/internal/repository"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errUnreachable = &pkghttp.NetworkError{Err: errors.New("connection refused"), Attempts: 3}

type stubScreener struct {
	mu sync.Mutex

	profileErr error
	startReply string
	startErr   error
	// answers is consumed in order; the last entry repeats.
	answers   []stubAnswer
	answerErr error

	calls int
	// gate, when set, blocks SubmitAnswer until it is closed.
	gate    chan struct{}
	entered chan struct{}
}

type stubAnswer struct {
	reply *entity.AnswerReply
	err   error
}

func (s *stubScreener) SubmitProfile(_ context.Context, _ string, profile entity.Profile) (*entity.ProfileReply, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return &entity.ProfileReply{UserProfile: []byte(`{"name":"` + profile.Name + `"}`)}, nil
}

func (s *stubScreener) StartSession(_ context.Context, _ string, _ entity.AssessmentID) (string, error) {
	return s.startReply, s.startErr
}

func (s *stubScreener) SubmitAnswer(_ context.Context, _ string, _ int) (*entity.AnswerReply, error) {
	if s.gate != nil {
		s.entered <- struct{}{}
		<-s.gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answerErr != nil {
		return nil, s.answerErr
	}
	if len(s.answers) == 0 {
		return &entity.AnswerReply{Reply: "AI: Next."}, nil
	}

	i := s.calls
	if i >= len(s.answers) {
		i = len(s.answers) - 1
	}
	s.calls++
	return s.answers[i].reply, s.answers[i].err
}

type stubNotifier struct {
	sent []*entity.ResultsNotification
	err  error
}

func (n *stubNotifier) Send(_ context.Context, notification *entity.ResultsNotification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

type wavSynth struct{}

func (wavSynth) Synthesize(context.Context, string) (*entity.Audio, error) {
	return &entity.Audio{Data: common.SilentWAV(), ContentType: "audio/wav"}, nil
}

func newTestUsecase(screener Screener, notifier Notifier) *Usecase {
	if notifier == nil {
		notifier = &stubNotifier{}
	}
	return NewUsecase(repository.NewSessionStore(time.Hour), screener, notifier, wavSynth{}, zap.NewNop())
}

func playingTurns(s *entity.Session) []string {
	var ids []string
	for _, turn := range s.Transcript {
		if turn.Playing {
			ids = append(ids, turn.ID)
		}
	}
	return ids
}

// startQuestionnaire drives a fresh session up to the first question.
func startQuestionnaire(t *testing.T, uc *Usecase, profile entity.Profile, id entity.AssessmentID) *entity.Session {
	t.Helper()
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)

	s, err = uc.SubmitProfile(ctx, s.ID, profile)
	require.NoError(t, err)
	require.Equal(t, entity.StageTestSelection, s.Stage)

	s, err = uc.SelectAssessment(ctx, s.ID, id)
	require.NoError(t, err)
	require.Equal(t, entity.StageQuestionnaire, s.Stage)
	return s
}

func TestHappyPath(t *testing.T) {
	screener := &stubScreener{
		startReply: "AI: Let's begin.",
		answers: []stubAnswer{
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{Reply: "AI: Next question."}},
			{reply: &entity.AnswerReply{
				Reply:     "AI: All done.",
				Completed: true,
				Evaluation: &entity.Evaluation{
					Summary:         "Moderate anxiety.",
					Recommendations: []string{"Breathing exercises"},
					Scores: map[entity.AssessmentID]entity.AssessmentScore{
						entity.AssessmentGAD7: {Score: "11", Level: "moderate"},
					},
					Source: entity.EvaluationSourceServer,
				},
			}},
		},
	}
	uc := newTestUsecase(screener, nil)
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.StageProfile, s.Stage)

	s, err = uc.SubmitProfile(ctx, s.ID, entity.Profile{Name: " Ana ", Email: "ana@example.com", Reason: "I worry all the time"})
	require.NoError(t, err)
	assert.Equal(t, entity.StageTestSelection, s.Stage)
	assert.Equal(t, "Ana", s.Profile.Name)
	assert.Equal(t, entity.AssessmentGAD7, s.Recommended)
	assert.Equal(t, []entity.AssessmentID{entity.AssessmentGAD7, entity.AssessmentPHQ9, entity.AssessmentGHQ12}, s.Offered)
	assert.Equal(t, entity.TransitionCommitted, s.LastTransition.Outcome)

	s, err = uc.SelectAssessment(ctx, s.ID, entity.AssessmentGAD7)
	require.NoError(t, err)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, "Let's begin.", s.Transcript[0].Text)
	assert.Equal(t, []string{s.Transcript[0].ID}, playingTurns(s))

	for i := 0; i < 7; i++ {
		require.Equal(t, entity.StageQuestionnaire, s.Stage)
		require.Equal(t, i, s.QuestionIndex)
		s, err = uc.SubmitAnswer(ctx, s.ID, 2)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.StageResults, s.Stage)
	assert.Equal(t, 6, s.QuestionIndex)
	assert.Len(t, s.Answers, 7)
	assert.Len(t, s.Transcript, 15)
	assert.Equal(t, "All done.", s.Transcript[14].Text)
	assert.Equal(t, []string{s.Transcript[14].ID}, playingTurns(s))
	require.NotNil(t, s.Evaluation)
	assert.Equal(t, entity.EvaluationSourceServer, s.Evaluation.Source)
	assert.Nil(t, s.Failure)
}

func TestNetworkFallback(t *testing.T) {
	screener := &stubScreener{profileErr: errUnreachable, startErr: errUnreachable, answerErr: errUnreachable}
	uc := newTestUsecase(screener, nil)

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentGAD7)
	assert.Equal(t, "Anonymous", s.Profile.Name)
	assert.Empty(t, s.Recommended)
	assert.Equal(t, []entity.AssessmentID{entity.AssessmentPHQ9, entity.AssessmentGAD7, entity.AssessmentGHQ12}, s.Offered)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, "Starting gad7. I'll guide you through the Generalized Anxiety Disorder (GAD-7).", s.Transcript[0].Text)
	assert.False(t, s.Transcript[0].Playing)
	assert.Equal(t, entity.TransitionCompensated, s.LastTransition.Outcome)

	ctx := context.Background()
	s, err := uc.SubmitAnswer(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Thanks, next question (2).", s.Transcript[2].Text)
	assert.Equal(t, 1, s.QuestionIndex)

	for s.Stage == entity.StageQuestionnaire {
		s, err = uc.SubmitAnswer(ctx, s.ID, 0)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.StageResults, s.Stage)
	assert.Equal(t, 6, s.QuestionIndex)
	assert.Equal(t, "Thank you. Your responses are complete. Here are some helpful next steps.", s.Transcript[len(s.Transcript)-1].Text)
	require.NotNil(t, s.Evaluation)
	assert.Equal(t, entity.EvaluationSourceFallback, s.Evaluation.Source)
	assert.Equal(t, "Simulated evaluation based on your answers.", s.Evaluation.Summary)
	assert.Equal(t, []string{"Consider brief CBT exercises", "If concerned, contact a professional"}, s.Evaluation.Recommendations)
	assert.Empty(t, playingTurns(s))
	assert.Nil(t, s.Failure)
}

func TestServerErrorSetsOverlay(t *testing.T) {
	screener := &stubScreener{startErr: &pkghttp.HTTPError{StatusCode: 500, Message: "boom"}}
	uc := newTestUsecase(screener, nil)
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)
	s, err = uc.SubmitProfile(ctx, s.ID, entity.Profile{Name: "Ana"})
	require.NoError(t, err)

	s, err = uc.SelectAssessment(ctx, s.ID, entity.AssessmentPHQ9)
	require.NoError(t, err)
	assert.Equal(t, entity.StageTestSelection, s.Stage)
	assert.Empty(t, s.AssessmentID)
	require.NotNil(t, s.Failure)
	assert.Equal(t, "Failed to start the test session. Please try again.", s.Failure.Message)
	assert.Equal(t, string(pkghttp.KindServer), s.Failure.Kind)
	assert.Equal(t, entity.TransitionFailed, s.LastTransition.Outcome)

	_, err = uc.SelectAssessment(ctx, s.ID, entity.AssessmentPHQ9)
	assert.ErrorIs(t, err, entity.ErrSessionFailed)
	_, err = uc.TogglePlayback(ctx, s.ID, "any")
	assert.ErrorIs(t, err, entity.ErrSessionFailed)

	s, err = uc.Restart(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageProfile, s.Stage)
	assert.Nil(t, s.Failure)
	assert.Nil(t, s.Profile)
	assert.Nil(t, s.LastTransition)
}

func TestEmptyProfileReplyFails(t *testing.T) {
	uc := newTestUsecase(&stubScreener{profileErr: errors.New("failed to submit profile: backend returned no user profile")}, nil)
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)

	s, err = uc.SubmitProfile(ctx, s.ID, entity.Profile{Name: "Ana", Reason: "sad"})
	require.NoError(t, err)
	assert.Equal(t, entity.StageProfile, s.Stage)
	assert.Nil(t, s.Profile)
	assert.Empty(t, s.Recommended)
	require.NotNil(t, s.Failure)
	assert.Equal(t, "Failed to submit profile. Please check your network connection and try again.", s.Failure.Message)
}

func TestAnswerFailureRollsBack(t *testing.T) {
	screener := &stubScreener{startReply: "Hi", answerErr: &pkghttp.DecodeError{Err: errors.New("bad json")}}
	uc := newTestUsecase(screener, nil)

	s := startQuestionnaire(t, uc, entity.Profile{Name: "Ana"}, entity.AssessmentPHQ9)

	s, err := uc.SubmitAnswer(context.Background(), s.ID, 1)
	require.NoError(t, err)
	assert.Len(t, s.Transcript, 1)
	assert.Empty(t, s.Answers)
	assert.Equal(t, 0, s.QuestionIndex)
	assert.Equal(t, entity.StageQuestionnaire, s.Stage)
	require.NotNil(t, s.Failure)
	assert.Equal(t, "Failed to submit answer. Please try again.", s.Failure.Message)
}

func TestAnswerValidation(t *testing.T) {
	uc := newTestUsecase(&stubScreener{startReply: "Hi"}, nil)
	ctx := context.Background()

	fresh, err := uc.StartSession(ctx)
	require.NoError(t, err)
	_, err = uc.SubmitAnswer(ctx, fresh.ID, 0)
	assert.ErrorIs(t, err, entity.ErrWrongStage)

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentGHQ12)
	_, err = uc.SubmitAnswer(ctx, s.ID, 4)
	assert.ErrorIs(t, err, entity.ErrInvalidAnswer)

	_, err = uc.SelectAssessment(ctx, s.ID, "unknown")
	assert.ErrorIs(t, err, entity.ErrUnknownAssessment)

	_, err = uc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestTransitionInFlight(t *testing.T) {
	screener := &stubScreener{startReply: "Hi", gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	uc := newTestUsecase(screener, nil)
	ctx := context.Background()

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentPHQ9)

	done := make(chan error, 1)
	go func() {
		_, err := uc.SubmitAnswer(ctx, s.ID, 0)
		done <- err
	}()
	<-screener.entered

	pending, err := uc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransitionPending, pending.LastTransition.Outcome)
	require.Len(t, pending.Transcript, 2)
	assert.Equal(t, entity.RoleUser, pending.Transcript[1].Role)
	assert.Equal(t, "Not at all", pending.Transcript[1].Text)

	_, err = uc.SubmitAnswer(ctx, s.ID, 1)
	assert.ErrorIs(t, err, entity.ErrTransitionInFlight)
	_, err = uc.Restart(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrTransitionInFlight)

	close(screener.gate)
	require.NoError(t, <-done)

	s, err = uc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.QuestionIndex)
	assert.Equal(t, entity.TransitionCommitted, s.LastTransition.Outcome)
}

func TestLastAnswerAlwaysReachesResults(t *testing.T) {
	uc := newTestUsecase(&stubScreener{startReply: "Hi"}, nil)
	ctx := context.Background()

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentGAD7)
	for i := 0; i < 7; i++ {
		var err error
		s, err = uc.SubmitAnswer(ctx, s.ID, 0)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.StageResults, s.Stage)
	assert.Equal(t, 6, s.QuestionIndex)
	assert.Nil(t, s.Evaluation)
}

func TestServerEvaluationIsNotOverwritten(t *testing.T) {
	serverEval := &entity.Evaluation{Summary: "From server", Source: entity.EvaluationSourceServer}
	answers := make([]stubAnswer, 0, 7)
	for i := 0; i < 5; i++ {
		answers = append(answers, stubAnswer{reply: &entity.AnswerReply{Reply: "Next"}})
	}
	answers = append(answers,
		stubAnswer{reply: &entity.AnswerReply{Reply: "Almost", Evaluation: serverEval}},
		stubAnswer{err: errUnreachable},
	)
	uc := newTestUsecase(&stubScreener{startReply: "Hi", answers: answers}, nil)
	ctx := context.Background()

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentGAD7)
	for i := 0; i < 7; i++ {
		var err error
		s, err = uc.SubmitAnswer(ctx, s.ID, 0)
		require.NoError(t, err)
	}

	assert.Equal(t, entity.StageResults, s.Stage)
	assert.Equal(t, entity.TransitionCompensated, s.LastTransition.Outcome)
	require.NotNil(t, s.Evaluation)
	assert.Equal(t, "From server", s.Evaluation.Summary)
	assert.Equal(t, entity.EvaluationSourceServer, s.Evaluation.Source)
}

func TestRecommendationScenarios(t *testing.T) {
	tests := []struct {
		reason string
		want   entity.AssessmentID
	}{
		{reason: "I have been feeling Depressed lately", want: entity.AssessmentPHQ9},
		{reason: "work stress", want: entity.AssessmentGAD7},
		{reason: "I struggle to sleep", want: entity.AssessmentGHQ12},
		{reason: "just curious", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			uc := newTestUsecase(&stubScreener{}, nil)
			ctx := context.Background()

			s, err := uc.StartSession(ctx)
			require.NoError(t, err)
			s, err = uc.SubmitProfile(ctx, s.ID, entity.Profile{Reason: tt.reason})
			require.NoError(t, err)

			assert.Equal(t, tt.want, s.Recommended)
			require.Len(t, s.Offered, 3)
			if tt.want != "" {
				assert.Equal(t, tt.want, s.Offered[0])
			}
		})
	}
}

func TestTogglePlayback(t *testing.T) {
	uc := newTestUsecase(&stubScreener{startReply: "AI: Hello", answers: []stubAnswer{{reply: &entity.AnswerReply{Reply: "AI: Second"}}}}, nil)
	ctx := context.Background()

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentPHQ9)
	s, err := uc.SubmitAnswer(ctx, s.ID, 0)
	require.NoError(t, err)

	first, user, second := s.Transcript[0].ID, s.Transcript[1].ID, s.Transcript[2].ID
	assert.Equal(t, []string{second}, playingTurns(s))

	s, err = uc.TogglePlayback(ctx, s.ID, first)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, playingTurns(s))

	s, err = uc.TogglePlayback(ctx, s.ID, first)
	require.NoError(t, err)
	assert.Empty(t, playingTurns(s))

	_, err = uc.TogglePlayback(ctx, s.ID, user)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	_, err = uc.TogglePlayback(ctx, s.ID, "missing")
	assert.ErrorIs(t, err, entity.ErrTurnNotFound)
}

func TestAudioSlot(t *testing.T) {
	uc := newTestUsecase(&stubScreener{startReply: "AI: Hello"}, nil)
	ctx := context.Background()

	s := startQuestionnaire(t, uc, entity.Profile{}, entity.AssessmentPHQ9)
	turnID := s.Transcript[0].ID

	require.Eventually(t, func() bool {
		clip, err := uc.CurrentAudio(ctx, s.ID)
		return err == nil && clip.Key == turnID
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, uc.AudioEnded(ctx, s.ID, "other"), entity.ErrNoAudio)
	require.NoError(t, uc.AudioEnded(ctx, s.ID, turnID))

	require.Eventually(t, func() bool {
		got, err := uc.GetSession(ctx, s.ID)
		return err == nil && len(playingTurns(got)) == 0
	}, time.Second, 5*time.Millisecond)

	_, err := uc.CurrentAudio(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrNoAudio)
}

func completedSession(t *testing.T, uc *Usecase, profile entity.Profile) *entity.Session {
	t.Helper()

	s := startQuestionnaire(t, uc, profile, entity.AssessmentGAD7)
	for s.Stage == entity.StageQuestionnaire {
		var err error
		s, err = uc.SubmitAnswer(context.Background(), s.ID, 1)
		require.NoError(t, err)
	}
	return s
}

func TestSendResults(t *testing.T) {
	eval := &entity.Evaluation{
		Summary:         "Mild anxiety.",
		Recommendations: []string{"Walk daily", "Sleep early"},
		Scores: map[entity.AssessmentID]entity.AssessmentScore{
			entity.AssessmentGAD7: {Score: "7", Level: "mild"},
		},
		Source: entity.EvaluationSourceServer,
	}
	screener := &stubScreener{startReply: "Hi", answers: []stubAnswer{
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Next"}},
		{reply: &entity.AnswerReply{Reply: "Done", Completed: true, Evaluation: eval}},
	}}
	notifier := &stubNotifier{}
	uc := newTestUsecase(screener, notifier)
	ctx := context.Background()

	s := completedSession(t, uc, entity.Profile{Name: "Ana", Email: "ana@example.com"})

	s, err := uc.SendResults(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationSent, s.Notification)

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, "ana@example.com", n.Email)
	assert.Equal(t, "Your Generalized Anxiety Disorder (GAD-7) Results", n.Subject)
	assert.Equal(t, entity.AssessmentGAD7, n.SelectedTest)
	assert.NotEmpty(t, n.Doctors.Name)
	assert.Equal(t, strings.Join([]string{
		"Hello Ana,",
		"Here are your Generalized Anxiety Disorder (GAD-7) results:",
		"Score: 7, Level: mild",
		"Summary: Mild anxiety.",
		"Recommendations:",
		"- Walk daily",
		"- Sleep early",
	}, "\n"), n.Text)
	require.NotNil(t, n.Evaluation.Selected)
	assert.Equal(t, "mild", n.Evaluation.SelectedEvaluation.Level)

	notifier.err = errors.New("webhook down")
	s, err = uc.SendResults(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationFailed, s.Notification)
	assert.Nil(t, s.Failure)
}

func TestSendResultsWithoutEmail(t *testing.T) {
	notifier := &stubNotifier{}
	uc := newTestUsecase(&stubScreener{startReply: "Hi"}, notifier)
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)
	_, err = uc.SendResults(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrWrongStage)

	s = completedSession(t, uc, entity.Profile{Name: "Ana"})
	s, err = uc.SendResults(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationEmailMissing, s.Notification)
	assert.Empty(t, notifier.sent)
}

func TestReport(t *testing.T) {
	uc := newTestUsecase(&stubScreener{startReply: "Hi", answerErr: errUnreachable}, nil)
	ctx := context.Background()

	s, err := uc.StartSession(ctx)
	require.NoError(t, err)
	_, _, _, err = uc.Report(ctx, s.ID, entity.FormatMarkdown)
	assert.ErrorIs(t, err, entity.ErrNoResult)

	s = completedSession(t, uc, entity.Profile{Name: "Ana"})

	data, contentType, filename, err := uc.Report(ctx, s.ID, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", contentType)
	assert.Equal(t, "results-gad7.md", filename)
	assert.Contains(t, string(data), "Generalized Anxiety Disorder (GAD-7) Results")
	assert.Contains(t, string(data), "Simulated evaluation based on your answers.")
	assert.Contains(t, string(data), "1. Feeling nervous, anxious, or on edge? Several days")

	_, _, _, err = uc.Report(ctx, s.ID, "xlsx")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
