package entity

import "time"

type Stage string

// Stages move forward only; Restart is the one way back to StageProfile.
const (
	StageProfile       Stage = "profile"
	StageTestSelection Stage = "test-selection"
	StageQuestionnaire Stage = "questionnaire"
	StageResults       Stage = "results"
)

type Role string

const (
	RoleGuide Role = "guide"
	RoleUser  Role = "user"
)

// ChatTurn is one message of the session transcript.
type ChatTurn struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Playing bool   `json:"is_playing"`
}

type TransitionOutcome string

const (
	TransitionPending     TransitionOutcome = "pending"
	TransitionCommitted   TransitionOutcome = "committed"
	TransitionCompensated TransitionOutcome = "compensated"
	TransitionFailed      TransitionOutcome = "failed"
)

type Operation string

const (
	OperationSubmitProfile Operation = "submit_profile"
	OperationStartSession  Operation = "start_session"
	OperationSubmitAnswer  Operation = "submit_answer"
)

// Transition records how the latest remote transition resolved.
type Transition struct {
	Operation Operation         `json:"operation"`
	Outcome   TransitionOutcome `json:"outcome"`
	Error     string            `json:"error,omitempty"`
	At        time.Time         `json:"at"`
}

// Failure is the error overlay. While it is set only a restart is accepted.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Session struct {
	ID    string `json:"session_id"`
	Stage Stage  `json:"stage"`

	Profile     *Profile       `json:"profile,omitempty"`
	Recommended AssessmentID   `json:"recommended,omitempty"`
	Offered     []AssessmentID `json:"offered,omitempty"`

	AssessmentID  AssessmentID `json:"assessment_id,omitempty"`
	QuestionIndex int          `json:"question_index"`
	Answers       []int        `json:"answers"`
	Transcript    []ChatTurn   `json:"transcript"`
	Evaluation    *Evaluation  `json:"evaluation,omitempty"`

	Failure        *Failure    `json:"failure,omitempty"`
	Notification   string      `json:"notification,omitempty"`
	LastTransition *Transition `json:"last_transition,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageProfile,
		Answers:   []int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset discards everything the user entered and returns to the profile stage.
func (s *Session) Reset(now time.Time) {
	*s = Session{
		ID:        s.ID,
		Stage:     StageProfile,
		Answers:   []int{},
		CreatedAt: s.CreatedAt,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe to hand out while the original keeps changing.
func (s *Session) Clone() *Session {
	clone := *s
	if s.Profile != nil {
		profile := *s.Profile
		clone.Profile = &profile
	}
	clone.Offered = append([]AssessmentID(nil), s.Offered...)
	clone.Answers = append([]int{}, s.Answers...)
	clone.Transcript = append([]ChatTurn(nil), s.Transcript...)
	clone.Evaluation = s.Evaluation.Clone()
	if s.Failure != nil {
		failure := *s.Failure
		clone.Failure = &failure
	}
	if s.LastTransition != nil {
		transition := *s.LastTransition
		clone.LastTransition = &transition
	}
	return &clone
}

// Turn returns the index of the turn with the given id, or -1.
func (s *Session) Turn(id string) int {
	for i := range s.Transcript {
		if s.Transcript[i].ID == id {
			return i
		}
	}
	return -1
}

// SetPlaying marks the turn as the only playing one. An empty id clears every flag.
func (s *Session) SetPlaying(id string) {
	for i := range s.Transcript {
		s.Transcript[i].Playing = id != "" && s.Transcript[i].ID == id
	}
}

// LastGuideTurn returns the most recent guide message, if any.
func (s *Session) LastGuideTurn() (ChatTurn, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleGuide {
			return s.Transcript[i], true
		}
	}
	return ChatTurn{}, false
}
