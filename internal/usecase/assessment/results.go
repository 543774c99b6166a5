package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/mitr-backend/internal/catalog"
	"github.com/futig/mitr-backend/internal/entity"
	"github.com/futig/mitr-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SendResults emails the results through the notification webhook.
// The outcome is reported in Session.Notification and never sets the error overlay.
func (uc *Usecase) SendResults(ctx context.Context, sessionID string) (*entity.Session, error) {
	ctx = logger.WithSession(logger.WithAction(ctx, "send_results"), sessionID)

	entry, err := uc.begin(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.End()

	entry.Lock()
	s := entry.Session
	if err := checkStage(s, entity.StageResults); err != nil {
		entry.Unlock()
		return nil, err
	}

	if s.Profile == nil || strings.TrimSpace(s.Profile.Email) == "" {
		s.Notification = entity.NotificationEmailMissing
		defer entry.Unlock()
		return s.Clone(), nil
	}

	notification := buildNotification(s)
	s.Notification = ""
	entry.Unlock()

	err = uc.notifier.Send(context.WithoutCancel(ctx), notification)

	entry.Lock()
	defer entry.Unlock()

	if err != nil {
		ctxzap.Error(ctx, "failed to send results notification", zap.Error(err))
		s.Notification = entity.NotificationFailed
	} else {
		s.Notification = entity.NotificationSent
	}
	s.UpdatedAt = uc.now()

	return s.Clone(), nil
}

func buildNotification(s *entity.Session) *entity.ResultsNotification {
	name := "Assessment"
	bodyName := "assessment"
	if a, ok := catalog.Assessment(s.AssessmentID); ok {
		name = a.Name
		bodyName = a.Name
	}

	var snapshot entity.NotificationSnapshot
	if s.Evaluation != nil {
		snapshot.Summary = s.Evaluation.Summary
		snapshot.Recommendations = append([]string(nil), s.Evaluation.Recommendations...)
		if score, ok := s.Evaluation.ScoreFor(s.AssessmentID); ok {
			snapshot.Selected = &score
			selected := score
			snapshot.SelectedEvaluation = &selected
		}
	}

	greeting := "there"
	if s.Profile.Name != "" {
		greeting = s.Profile.Name
	}

	lines := []string{
		fmt.Sprintf("Hello %s,", greeting),
		"",
		fmt.Sprintf("Here are your %s results:", bodyName),
	}
	if snapshot.Selected != nil {
		lines = append(lines, fmt.Sprintf("Score: %s, Level: %s", snapshot.Selected.Score, snapshot.Selected.Level))
		if snapshot.Selected.Insights != "" {
			lines = append(lines, "Insights: "+snapshot.Selected.Insights)
		}
	}
	lines = append(lines, "", "Summary: "+snapshot.Summary, "", "Recommendations:")
	for _, r := range snapshot.Recommendations {
		lines = append(lines, "- "+r)
	}

	return &entity.ResultsNotification{
		Email:        strings.TrimSpace(s.Profile.Email),
		Subject:      fmt.Sprintf("Your %s Results", name),
		Text:         strings.Join(dropEmpty(lines), "\n"),
		SelectedTest: s.AssessmentID,
		Doctors:      catalog.RandomReferral(),
		Evaluation:   snapshot,
	}
}

// dropEmpty removes blank lines from the message body.
func dropEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Report renders the results in the requested format.
func (uc *Usecase) Report(_ context.Context, sessionID string, format entity.ResultFormat) ([]byte, string, string, error) {
	if !format.IsValid() {
		return nil, "", "", fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format)
	}

	entry, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, "", "", err
	}

	entry.Lock()
	s := entry.Session.Clone()
	entry.Unlock()

	if s.Stage != entity.StageResults {
		return nil, "", "", entity.ErrNoResult
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, "", "", fmt.Errorf("create formatter: %w", err)
	}

	data, err := f.Format(buildReport(s))
	if err != nil {
		return nil, "", "", fmt.Errorf("format report: %w", err)
	}

	filename := fmt.Sprintf("results-%s%s", s.AssessmentID, f.FileExtension())
	return data, f.ContentType(), filename, nil
}

func buildReport(s *entity.Session) *entity.Report {
	report := &entity.Report{Title: "Assessment Results"}

	a, ok := catalog.Assessment(s.AssessmentID)
	if ok {
		report.Title = a.Name + " Results"
	}
	if s.Profile != nil && s.Profile.Name != "" {
		report.Sections = append(report.Sections, entity.ReportSection{Lines: []string{"Name: " + s.Profile.Name}})
	}

	if s.Evaluation == nil {
		report.Sections = append(report.Sections, entity.ReportSection{
			Lines: []string{"No evaluation is available for this session."},
		})
	} else {
		if score, ok := s.Evaluation.ScoreFor(s.AssessmentID); ok {
			lines := []string{fmt.Sprintf("Score: %s, Level: %s", score.Score, score.Level)}
			if score.Insights != "" {
				lines = append(lines, "Insights: "+score.Insights)
			}
			report.Sections = append(report.Sections, entity.ReportSection{Heading: "Score", Lines: lines})
		}
		if s.Evaluation.Summary != "" {
			report.Sections = append(report.Sections, entity.ReportSection{
				Heading: "Summary",
				Lines:   []string{s.Evaluation.Summary},
			})
		}
		if len(s.Evaluation.Recommendations) > 0 {
			report.Sections = append(report.Sections, entity.ReportSection{
				Heading: "Recommendations",
				Lines:   s.Evaluation.Recommendations,
				Bullets: true,
			})
		}
	}

	if ok {
		answers := entity.ReportSection{Heading: "Answers"}
		for i, answer := range s.Answers {
			if i >= len(a.Questions) || !a.ValidOption(answer) {
				break
			}
			answers.Lines = append(answers.Lines, fmt.Sprintf("%d. %s %s", i+1, a.Questions[i], a.Options[answer]))
		}
		report.Sections = append(report.Sections, answers)
	}

	return report
}
