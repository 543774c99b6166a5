package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! I'm MITR, your mental health guide.

I will ask a few questions about you, suggest a short screening questionnaire and walk you through it.

This is not a diagnosis. If you are in crisis, contact your local emergency services.`

	MsgHelp = `🤖 Commands:

/start - Start a new session
/help - Show this help
/restart - Start over and discard your answers

How it works:
1. Tell me about yourself
2. Pick an assessment
3. Answer the questions with the buttons
4. Get your results by chat, file or email`

	// Selection and questionnaire
	MsgChooseAssessment = `📋 Choose an assessment:`
	MsgQuestion         = `❓ Question %d of %d

%s`
	MsgUseButtons = `👆 Please use the buttons above to continue.`

	// Results
	MsgResultsHeader = `✅ Your %s results`
	MsgNoEvaluation  = `No evaluation is available for this session.`

	// Restart
	MsgConfirmRestart = `⚠️ Are you sure? All your answers will be lost.`
	MsgContinue       = `👍 Let's continue.`

	// Errors
	ErrGeneric         = `❌ Something went wrong. Please try again or press /start`
	ErrNoSession       = `❌ No active session. Use /start`
	ErrSessionNotFound = `❌ Your session has expired. Start a new one with /start`
	ErrInvalidState    = `❌ That action is not available right now.`
	ErrBusy            = `⏳ Still working on your previous request, please wait.`
	ErrNetworkIssue    = `❌ Connection problem. Please try again in a moment.`
	ErrInvalidInput    = `❌ That answer is not valid. Please try again.`
	ErrTimeout         = `❌ The operation took too long. Please try again.`
)

// Profile prompts in the order the fields are collected
var profilePrompts = []struct {
	prompt   string
	optional bool
}{
	{"What is your name?", true},
	{"What is your email? I will use it only to send your results.", true},
	{"How old are you?", true},
	{"What is your occupation?", true},
	{"What brings you here today? Describe how you have been feeling.", false},
}

// ProfileSteps is the number of profile questions
func ProfileSteps() int {
	return len(profilePrompts)
}

// RenderProfilePrompt formats the prompt for the given 0-based profile step
func RenderProfilePrompt(step int) string {
	if step < 0 || step >= len(profilePrompts) {
		return ""
	}
	return fmt.Sprintf("📝 %d/%d. %s", step+1, len(profilePrompts), profilePrompts[step].prompt)
}

// OptionalProfileStep reports whether the step may be skipped
func OptionalProfileStep(step int) bool {
	return step >= 0 && step < len(profilePrompts) && profilePrompts[step].optional
}

// RenderQuestion formats the current question
func RenderQuestion(questionNumber, totalQuestions int, question string) string {
	return fmt.Sprintf(MsgQuestion, questionNumber, totalQuestions, question)
}

// RenderResults formats the evaluation of a finished session
func RenderResults(assessmentName string, s *entity.Session) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(MsgResultsHeader, assessmentName))
	sb.WriteString("\n\n")

	if s.Evaluation == nil {
		sb.WriteString(MsgNoEvaluation)
		return sb.String()
	}

	if score, ok := s.Evaluation.ScoreFor(s.AssessmentID); ok {
		sb.WriteString(fmt.Sprintf("Score: %s\nLevel: %s\n", score.Score, score.Level))
		if score.Insights != "" {
			sb.WriteString(score.Insights + "\n")
		}
		sb.WriteString("\n")
	}
	if s.Evaluation.Summary != "" {
		sb.WriteString(s.Evaluation.Summary + "\n\n")
	}
	if len(s.Evaluation.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for _, r := range s.Evaluation.Recommendations {
			sb.WriteString("• " + r + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// RenderFailure formats the error overlay
func RenderFailure(f *entity.Failure) string {
	return "⚠️ " + f.Message + "\n\nPress \"Start over\" to begin again."
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrTransitionInFlight):
		return ErrBusy
	case errors.Is(err, entity.ErrWrongStage), errors.Is(err, entity.ErrNoResult):
		return ErrInvalidState
	case errors.Is(err, entity.ErrInvalidAnswer), errors.Is(err, entity.ErrUnknownAssessment),
		errors.Is(err, entity.ErrInvalidParameter):
		return ErrInvalidInput
	}

	if pkghttp.KindOf(err) == pkghttp.KindNetwork {
		return ErrNetworkIssue
	}

	// Default to generic error
	return ErrGeneric
}
