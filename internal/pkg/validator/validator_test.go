package validator

import (
	"strings"
	"testing"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfile(t *testing.T) {
	v := NewValidator(10)

	require.NoError(t, v.ValidateProfile(&entity.SubmitProfileRequest{}))
	require.NoError(t, v.ValidateProfile(&entity.SubmitProfileRequest{Name: "Ann", Email: "a@b.c"}))

	err := v.ValidateProfile(&entity.SubmitProfileRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)

	err = v.ValidateProfile(&entity.SubmitProfileRequest{Reason: strings.Repeat("x", 11)})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestValidateSubmitAnswer(t *testing.T) {
	v := NewValidator(10)
	zero := 0

	assert.ErrorIs(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{}), entity.ErrMissingField)
	assert.NoError(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Option: &zero}))
}

func TestValidateAsk(t *testing.T) {
	v := NewValidator(5)

	assert.ErrorIs(t, v.ValidateAsk(&entity.AskRequest{Query: "  "}), entity.ErrEmptyQuery)
	assert.ErrorIs(t, v.ValidateAsk(&entity.AskRequest{Query: "too long"}), entity.ErrInvalidParameter)
	assert.NoError(t, v.ValidateAsk(&entity.AskRequest{Query: "hi"}))
}

func TestParseResourceTypes(t *testing.T) {
	v := NewValidator(0)

	types, err := v.ParseResourceTypes("")
	require.NoError(t, err)
	assert.Nil(t, types)

	types, err = v.ParseResourceTypes("video, CBT")
	require.NoError(t, err)
	assert.Equal(t, []entity.ResourceType{entity.ResourceVideo, entity.ResourceCBT}, types)

	_, err = v.ParseResourceTypes("podcast")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
