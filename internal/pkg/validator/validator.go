package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/mitr-backend/internal/entity"
)

// Validator checks API request bodies before they reach the usecases
type Validator struct {
	maxTextLength int
}

func NewValidator(maxTextLength int) *Validator {
	return &Validator{maxTextLength: maxTextLength}
}

// ValidateProfile only bounds field sizes. Every profile field is optional.
func (v *Validator) ValidateProfile(req *entity.SubmitProfileRequest) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"age", req.Age},
		{"occupation", req.Occupation},
		{"reason", req.Reason},
	}
	for _, f := range fields {
		if err := v.checkLength(f.name, f.value); err != nil {
			return err
		}
	}

	if email := strings.TrimSpace(req.Email); email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email", entity.ErrInvalidFormat)
	}

	return nil
}

func (v *Validator) ValidateSelectAssessment(req *entity.SelectAssessmentRequest) error {
	if req.AssessmentID == "" {
		return fmt.Errorf("%w: assessment_id", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if req.Option == nil {
		return fmt.Errorf("%w: option", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateTurn(req *entity.TurnRequest) error {
	if strings.TrimSpace(req.TurnID) == "" {
		return fmt.Errorf("%w: turn_id", entity.ErrMissingField)
	}
	return nil
}

func (v *Validator) ValidateAsk(req *entity.AskRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return entity.ErrEmptyQuery
	}
	return v.checkLength("query", req.Query)
}

func (v *Validator) ValidateCallback(req *entity.CallbackRequest) error {
	if err := v.checkLength("code", req.Code); err != nil {
		return err
	}
	return v.checkLength("code_verifier", req.CodeVerifier)
}

// ParseResourceTypes splits a comma separated type filter. Empty input means all types.
func (v *Validator) ParseResourceTypes(raw string) ([]entity.ResourceType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var types []entity.ResourceType
	for _, part := range strings.Split(raw, ",") {
		t := entity.ResourceType(strings.ToLower(strings.TrimSpace(part)))
		if t == "" {
			continue
		}
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: type %q", entity.ErrInvalidParameter, part)
		}
		types = append(types, t)
	}
	return types, nil
}

func (v *Validator) checkLength(field, value string) error {
	if v.maxTextLength > 0 && utf8.RuneCountInString(value) > v.maxTextLength {
		return fmt.Errorf("%w: %s is longer than %d characters", entity.ErrInvalidParameter, field, v.maxTextLength)
	}
	return nil
}
