package catalog

import "github.com/futig/mitr-backend/internal/entity"

var (
	frequencyOptions  = []string{"Not at all", "Several days", "More than half the days", "Nearly every day"}
	comparisonOptions = []string{"Better than usual", "Same as usual", "Worse than usual", "Much worse than usual"}
)

// assessments is kept in the order the instruments are offered when nothing is recommended.
var assessments = []entity.Assessment{
	{
		ID:          entity.AssessmentPHQ9,
		Name:        "Patient Health Questionnaire (PHQ-9)",
		Description: "Assesses common symptoms of depression.",
		Questions: []string{
			"Little interest or pleasure in doing things?",
			"Feeling down, depressed, or hopeless?",
			"Trouble falling or staying asleep, or sleeping too much?",
			"Feeling tired or having little energy?",
			"Poor appetite or overeating?",
			"Feeling bad about yourself—or that you are a failure or have let yourself or your family down?",
			"Trouble concentrating on things, such as reading the newspaper or watching television?",
			"Moving or speaking so slowly that other people could have noticed? Or the opposite—being so fidgety or restless that you have been moving around a lot more than usual?",
			"Thoughts that you would be better off dead or of hurting yourself in some way?",
		},
		Options: frequencyOptions,
	},
	{
		ID:          entity.AssessmentGAD7,
		Name:        "Generalized Anxiety Disorder (GAD-7)",
		Description: "Focuses on symptoms of generalized anxiety.",
		Questions: []string{
			"Feeling nervous, anxious, or on edge?",
			"Not being able to stop or control worrying?",
			"Worrying too much about different things?",
			"Trouble relaxing?",
			"Being so restless that it's hard to sit still?",
			"Becoming easily annoyed or irritable?",
			"Feeling afraid as if something awful might happen?",
		},
		Options: frequencyOptions,
	},
	{
		ID:          entity.AssessmentGHQ12,
		Name:        "General Health Questionnaire (GHQ-12)",
		Description: "Measures overall psychological distress and well-being.",
		Questions: []string{
			"Been able to concentrate on whatever you're doing?",
			"Lost much sleep over worry?",
			"Felt that you are playing a useful part in things?",
			"Felt capable of making decisions about things?",
			"Felt constantly under strain?",
			"Felt you couldn't overcome your difficulties?",
			"Been able to enjoy your normal day-to-day activities?",
			"Been able to face up to your problems?",
			"Been feeling unhappy or depressed?",
			"Been losing confidence in yourself?",
			"Been thinking of yourself as a worthless person?",
			"Been feeling reasonably happy, all things considered?",
		},
		Options: comparisonOptions,
	},
}

// Assessments returns a copy of the catalog in its default order.
func Assessments() []entity.Assessment {
	out := make([]entity.Assessment, len(assessments))
	copy(out, assessments)
	return out
}

// Assessment looks an instrument up by id.
func Assessment(id entity.AssessmentID) (*entity.Assessment, bool) {
	for i := range assessments {
		if assessments[i].ID == id {
			a := assessments[i]
			return &a, true
		}
	}
	return nil, false
}

// IDs returns the catalog ids in default order.
func IDs() []entity.AssessmentID {
	ids := make([]entity.AssessmentID, len(assessments))
	for i := range assessments {
		ids[i] = assessments[i].ID
	}
	return ids
}
