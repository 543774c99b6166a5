package catalog

import (
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
)

type keywordRule struct {
	id       entity.AssessmentID
	keywords []string
}

// Rules are checked in order; the first matching rule wins.
var recommendationRules = []keywordRule{
	{id: entity.AssessmentPHQ9, keywords: []string{"depress", "sad", "hopeless", "unhappy"}},
	{id: entity.AssessmentGAD7, keywords: []string{"anxi", "nervous", "worry", "stress"}},
	{id: entity.AssessmentGHQ12, keywords: []string{"difficult", "struggle", "distress", "feelings"}},
}

// Recommend picks an assessment from the free-text reason for the visit.
// It returns false when no keyword matches.
func Recommend(reason string) (entity.AssessmentID, bool) {
	reason = strings.ToLower(reason)
	for _, rule := range recommendationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(reason, keyword) {
				return rule.id, true
			}
		}
	}
	return "", false
}

// Offer lists the assessments to present, the recommended one first.
func Offer(recommended entity.AssessmentID) []entity.AssessmentID {
	ids := IDs()
	if recommended == "" {
		return ids
	}

	offered := make([]entity.AssessmentID, 0, len(ids))
	offered = append(offered, recommended)
	for _, id := range ids {
		if id != recommended {
			offered = append(offered, id)
		}
	}
	return offered
}
