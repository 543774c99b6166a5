package entity

type SubmitProfileRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Age        string `json:"age"`
	Occupation string `json:"occupation"`
	Reason     string `json:"reason"`
}

func (r *SubmitProfileRequest) Profile() Profile {
	return Profile{
		Name:       r.Name,
		Email:      r.Email,
		Age:        r.Age,
		Occupation: r.Occupation,
		Reason:     r.Reason,
	}
}

type SelectAssessmentRequest struct {
	AssessmentID AssessmentID `json:"assessment_id"`
}

type SubmitAnswerRequest struct {
	// Option is a pointer so that a missing field is not read as option 0.
	Option *int `json:"option"`
}

type TurnRequest struct {
	TurnID string `json:"turn_id"`
}

type AskRequest struct {
	Query string `json:"query"`
}

type MessageRequest struct {
	MessageID string `json:"message_id"`
}

type CallbackRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
}

// QuestionDTO is the question the session is currently waiting an answer for.
type QuestionDTO struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type SessionDTO struct {
	*Session
	AssessmentName string       `json:"assessment_name,omitempty"`
	Question       *QuestionDTO `json:"question,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
