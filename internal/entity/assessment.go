package entity

type AssessmentID string

const (
	AssessmentPHQ9  AssessmentID = "phq9"
	AssessmentGAD7  AssessmentID = "gad7"
	AssessmentGHQ12 AssessmentID = "ghq12"
)

// Assessment is a fixed questionnaire instrument. Catalog values are read-only.
type Assessment struct {
	ID          AssessmentID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Questions   []string     `json:"questions"`
	Options     []string     `json:"options"`
}

// IsLastQuestion reports whether index points at the final question.
func (a *Assessment) IsLastQuestion(index int) bool {
	return index+1 >= len(a.Questions)
}

// ValidOption reports whether option is a valid answer index.
func (a *Assessment) ValidOption(option int) bool {
	return option >= 0 && option < len(a.Options)
}
