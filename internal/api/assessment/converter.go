package assessment

import (
	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
)

// toSessionDTO adds the assessment name and, in the questionnaire, the pending question
func toSessionDTO(session *entity.Session) *entity.SessionDTO {
	dto := &entity.SessionDTO{Session: session}

	a, ok := catalog.Assessment(session.AssessmentID)
	if !ok {
		return dto
	}
	dto.AssessmentName = a.Name

	if session.Stage == entity.StageQuestionnaire && session.QuestionIndex < len(a.Questions) {
		dto.Question = &entity.QuestionDTO{
			Index:   session.QuestionIndex,
			Total:   len(a.Questions),
			Text:    a.Questions[session.QuestionIndex],
			Options: a.Options,
		}
	}

	return dto
}
