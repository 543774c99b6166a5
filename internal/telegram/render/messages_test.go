package render

import (
	"fmt"
	"testing"

	"github.com/futig/mitr-backend/internal/entity"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ErrGeneric},
		{"expired", fmt.Errorf("get: %w", entity.ErrSessionNotFound), ErrSessionNotFound},
		{"busy", entity.ErrTransitionInFlight, ErrBusy},
		{"stage", entity.ErrWrongStage, ErrInvalidState},
		{"answer", entity.ErrInvalidAnswer, ErrInvalidInput},
		{"network", &pkghttp.NetworkError{Err: fmt.Errorf("dial")}, ErrNetworkIssue},
		{"server", &pkghttp.HTTPError{StatusCode: 500}, ErrGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestRenderResults(t *testing.T) {
	s := &entity.Session{
		AssessmentID: entity.AssessmentGAD7,
		Evaluation: &entity.Evaluation{
			Summary:         "Mild anxiety.",
			Recommendations: []string{"Breathe"},
			Scores: map[entity.AssessmentID]entity.AssessmentScore{
				entity.AssessmentGAD7: {Score: "7", Level: "Mild"},
			},
		},
	}

	text := RenderResults("GAD-7", s)
	assert.Equal(t, "✅ Your GAD-7 results\n\nScore: 7\nLevel: Mild\n\nMild anxiety.\n\nRecommendations:\n• Breathe", text)

	assert.Contains(t, RenderResults("GAD-7", &entity.Session{}), MsgNoEvaluation)
}

func TestRenderProfilePrompt(t *testing.T) {
	assert.Equal(t, "📝 1/5. What is your name?", RenderProfilePrompt(0))
	assert.Empty(t, RenderProfilePrompt(ProfileSteps()))

	assert.True(t, OptionalProfileStep(0))
	assert.False(t, OptionalProfileStep(ProfileSteps()-1))
	assert.False(t, OptionalProfileStep(ProfileSteps()))
}
