package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/integration/common"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type mockRun struct {
	assessment *entity.Assessment
	answered   int
	total      int
}

// MockConnector plays the screening backend locally with deterministic replies.
type MockConnector struct {
	mu     sync.Mutex
	runs   map[string]*mockRun
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		runs:   make(map[string]*mockRun),
		logger: logger,
	}
}

func (m *MockConnector) SubmitProfile(ctx context.Context, sessionID string, profile entity.Profile) (*entity.ProfileReply, error) {
	ctxzap.Info(ctx, "[MOCK] submitting profile")

	raw, err := json.Marshal(profile.WithDefaults())
	if err != nil {
		return nil, err
	}
	return &entity.ProfileReply{UserProfile: raw}, nil
}

func (m *MockConnector) StartSession(ctx context.Context, sessionID string, assessmentID entity.AssessmentID) (string, error) {
	ctxzap.Info(ctx, "[MOCK] starting session", zap.String("assessment_id", string(assessmentID)))

	a, ok := catalog.Assessment(assessmentID)
	if !ok {
		return "", fmt.Errorf("%w: %s", entity.ErrUnknownAssessment, assessmentID)
	}

	m.mu.Lock()
	m.runs[sessionID] = &mockRun{assessment: a}
	m.mu.Unlock()

	return fmt.Sprintf("AI: Let's begin the %s. %s", a.Name, a.Questions[0]), nil
}

func (m *MockConnector) SubmitAnswer(ctx context.Context, sessionID string, answerIndex int) (*entity.AnswerReply, error) {
	ctxzap.Info(ctx, "[MOCK] submitting answer", zap.Int("answer_index", answerIndex))

	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[sessionID]
	if !ok {
		return nil, fmt.Errorf("mock: no session started for %s", sessionID)
	}

	run.answered++
	run.total += answerIndex

	if run.answered < len(run.assessment.Questions) {
		return &entity.AnswerReply{
			Reply: "AI: Thank you. " + run.assessment.Questions[run.answered],
		}, nil
	}

	delete(m.runs, sessionID)
	return &entity.AnswerReply{
		Reply:     "AI: Thank you for completing the assessment.",
		Completed: true,
		Evaluation: &entity.Evaluation{
			Summary:         fmt.Sprintf("You completed the %s.", run.assessment.Name),
			Recommendations: []string{"Keep a short daily mood journal", "Try the box breathing exercise"},
			Scores: map[entity.AssessmentID]entity.AssessmentScore{
				run.assessment.ID: {
					Score:    entity.ScoreValue(strconv.Itoa(run.total)),
					Level:    mockLevel(run.total, len(run.assessment.Questions)),
					Insights: "Generated by the local mock backend.",
				},
			},
			Source: entity.EvaluationSourceServer,
		},
	}, nil
}

func (m *MockConnector) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	ctxzap.Debug(ctx, "[MOCK] synthesizing speech", zap.Int("text_length", len(text)))
	return &entity.Audio{Data: common.SilentWAV(), ContentType: "audio/wav"}, nil
}

func mockLevel(total, questions int) string {
	switch ratio := float64(total) / float64(3*questions); {
	case ratio < 0.25:
		return "minimal"
	case ratio < 0.5:
		return "mild"
	case ratio < 0.75:
		return "moderate"
	default:
		return "severe"
	}
}
