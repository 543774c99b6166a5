package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

type EvaluationSource string

const (
	EvaluationSourceServer   EvaluationSource = "server"
	EvaluationSourceFallback EvaluationSource = "fallback"
)

// ScoreValue keeps a score exactly as the backend reported it, number or string.
type ScoreValue string

func (s *ScoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = ScoreValue(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = ScoreValue(num.String())
	return nil
}

// AssessmentScore is the per-instrument part of an evaluation.
type AssessmentScore struct {
	Score    ScoreValue `json:"score"`
	Level    string     `json:"level"`
	Insights string     `json:"insights,omitempty"`
}

// Evaluation is produced at most once per completed session.
type Evaluation struct {
	Summary         string                           `json:"summary"`
	Recommendations []string                         `json:"recommendations"`
	Scores          map[AssessmentID]AssessmentScore `json:"scores,omitempty"`
	Source          EvaluationSource                 `json:"source"`
}

// ScoreFor returns the score for the given assessment.
func (e *Evaluation) ScoreFor(id AssessmentID) (AssessmentScore, bool) {
	if e == nil || e.Scores == nil {
		return AssessmentScore{}, false
	}
	score, ok := e.Scores[id]
	return score, ok
}

func (e *Evaluation) Clone() *Evaluation {
	if e == nil {
		return nil
	}

	clone := *e
	clone.Recommendations = append([]string(nil), e.Recommendations...)
	if e.Scores != nil {
		clone.Scores = make(map[AssessmentID]AssessmentScore, len(e.Scores))
		for id, score := range e.Scores {
			clone.Scores[id] = score
		}
	}
	return &clone
}

const evaluationKeySuffix = "_evaluation"

// ParseEvaluation reads the backend's evaluation object, where per-assessment
// results are stored under "<assessment id>_evaluation" keys.
func ParseEvaluation(raw json.RawMessage) (*Evaluation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	eval := &Evaluation{Source: EvaluationSourceServer}
	for key, value := range fields {
		switch {
		case key == "summary":
			if err := json.Unmarshal(value, &eval.Summary); err != nil {
				return nil, err
			}
		case key == "recommendations":
			if err := json.Unmarshal(value, &eval.Recommendations); err != nil {
				return nil, err
			}
		case strings.HasSuffix(key, evaluationKeySuffix):
			var score AssessmentScore
			if err := json.Unmarshal(value, &score); err != nil {
				return nil, err
			}
			if eval.Scores == nil {
				eval.Scores = make(map[AssessmentID]AssessmentScore)
			}
			eval.Scores[AssessmentID(strings.TrimSuffix(key, evaluationKeySuffix))] = score
		}
	}

	return eval, nil
}
