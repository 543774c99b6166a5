package entity

const (
	NotificationEmailMissing = "Email missing. Please enter your email at the start."
	NotificationSent         = "Email sent successfully."
	NotificationFailed       = "Failed to send email. Please try again."
)

// Referral is a professional contact attached to the results notification.
type Referral struct {
	Name     string `json:"name"`
	Degree   string `json:"degree"`
	Contact  string `json:"contact"`
	Position string `json:"position"`
}

// ResultsNotification is the webhook payload that delivers results by email.
type ResultsNotification struct {
	Email        string               `json:"email"`
	Subject      string               `json:"subject"`
	Text         string               `json:"text"`
	SelectedTest AssessmentID         `json:"selectedTest"`
	Doctors      Referral             `json:"doctors"`
	Evaluation   NotificationSnapshot `json:"evaluation"`
}

type NotificationSnapshot struct {
	Selected           *AssessmentScore `json:"selected"`
	SelectedEvaluation *AssessmentScore `json:"selectedEvaluation"`
	Recommendations    []string         `json:"recommendations"`
	Summary            string           `json:"summary"`
}
