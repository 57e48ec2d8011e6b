package controllers

import (
	"errors"
	"net/http"
	"testing"

	"examprep/backend/services"
	"examprep/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&services.CreateTestRequest{Type: "weekly", QuestionCount: 500})
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, map[string]string{
		"subjectId":     "is required",
		"type":          "must be one of: quick subject mock",
		"questionCount": "must be at most 200",
	}, appErr.Details)
}

func TestValidateDivesIntoAnswers(t *testing.T) {
	v := NewRequestValidator()

	err := v.Validate(&services.SubmitRequest{Answers: []services.SubmittedAnswer{
		{Question: "q1", SelectedAnswer: "a"},
		{SelectedAnswer: "b"},
		{Question: "q3", SelectedAnswer: "a\nb"},
	}})
	require.Error(t, err)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	details := appErr.Details.(map[string]string)
	assert.Equal(t, "is required", details["answers[1].question"])
	assert.Equal(t, "is invalid", details["answers[2].selectedAnswer"])
	assert.Len(t, details, 2)
}

func TestValidateAcceptsEmptySelection(t *testing.T) {
	v := NewRequestValidator()

	assert.NoError(t, v.Validate(&services.SubmitRequest{Answers: []services.SubmittedAnswer{{Question: "q1"}}}))
	assert.NoError(t, v.Validate(&services.GenerateRequest{}))
}
