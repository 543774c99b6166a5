package assessment

import (
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
)

// Replies used when the assessment backend cannot be reached.
const (
	fallbackStartReply    = "Starting %s. I'll guide you through the %s."
	fallbackNextReply     = "Thanks, next question (%d)."
	fallbackCompleteReply = "Thank you. Your responses are complete. Here are some helpful next steps."
	fallbackSummary       = "Simulated evaluation based on your answers."
)

var fallbackRecommendations = []string{
	"Consider brief CBT exercises",
	"If concerned, contact a professional",
}

func simulateProfile(p entity.Profile) entity.Profile {
	return p.WithDefaults()
}

func simulateStart(a *entity.Assessment) string {
	return fmt.Sprintf(fallbackStartReply, a.ID, a.Name)
}

// simulateAnswer returns the reply for the answer to question index.
func simulateAnswer(index int, last bool) string {
	if last {
		return fallbackCompleteReply
	}
	return fmt.Sprintf(fallbackNextReply, index+2)
}

// simulateEvaluation fills in a local evaluation unless the backend already produced one.
func simulateEvaluation(s *entity.Session) {
	if s.Evaluation != nil && s.Evaluation.Source == entity.EvaluationSourceServer {
		return
	}

	s.Evaluation = &entity.Evaluation{
		Summary:         fallbackSummary,
		Recommendations: append([]string(nil), fallbackRecommendations...),
		Source:          entity.EvaluationSourceFallback,
	}
}

const replyPrefix = "AI:"

func cleanReply(reply string) string {
	if strings.HasPrefix(reply, replyPrefix) {
		return strings.TrimSpace(reply[len(replyPrefix):])
	}
	return reply
}
