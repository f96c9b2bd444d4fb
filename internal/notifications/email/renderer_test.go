package email

import (
	"strings"
	"testing"
	"time"

	"taskstudy/internal/notifications/digest"
	"taskstudy/internal/types"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}
	return r
}

func TestRenderer_Reminder(t *testing.T) {
	r := newTestRenderer(t)

	rendered, err := r.Reminder(ReminderData{
		UserName:       "Ana",
		TaskTitle:      "Algebra homework",
		DueDate:        time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC),
		ThresholdHours: 24,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.Subject != `Reminder: "Algebra homework" is due in 24 hours` {
		t.Errorf("subject = %q", rendered.Subject)
	}
	if !strings.Contains(rendered.BodyHTML, "Ana") || !strings.Contains(rendered.BodyHTML, "Algebra homework") {
		t.Error("body is missing the user name or task title")
	}
}

func TestRenderer_DailyDigest(t *testing.T) {
	r := newTestRenderer(t)
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	items := digest.BuildItems([]types.Task{{
		Title:    "History essay",
		Subject:  "History",
		DueDate:  now.Add(30 * time.Hour),
		Priority: types.PriorityHigh,
		Status:   types.TaskStatusPending,
	}}, now)

	rendered, err := r.DailyDigest(DailyDigestData{
		UserName:   "Ana",
		Date:       now,
		Items:      items,
		Highlights: digest.SelectHighlights(items, 3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.Subject != "Your daily pending tasks digest" {
		t.Errorf("subject = %q", rendered.Subject)
	}
	if !strings.Contains(rendered.BodyHTML, "History essay") {
		t.Error("body is missing the task title")
	}
	if !strings.Contains(rendered.BodyHTML, "1 day left") {
		t.Error("body is missing the status label")
	}
}

func TestRenderer_WeeklyReport(t *testing.T) {
	r := newTestRenderer(t)

	rendered, err := r.WeeklyReport(WeeklyReportData{
		UserName:          "Ana",
		WeekRangeLabel:    "Mar 2 to Mar 8, 2026",
		Created:           5,
		Completed:         3,
		Pending:           1,
		CompletionRate:    0.75,
		HighlightSubjects: []SubjectCount{{Subject: "Math", Count: 2}},
		Suggestions:       []string{"Reserve a study block for Math."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.Subject != "Your weekly report: Mar 2 to Mar 8, 2026" {
		t.Errorf("subject = %q", rendered.Subject)
	}
	// The percent helper renders 0.75 as a whole number.
	if !strings.Contains(rendered.BodyHTML, "75") {
		t.Error("body is missing the completion percentage")
	}
	if !strings.Contains(rendered.BodyHTML, "Reserve a study block for Math.") {
		t.Error("body is missing the suggestion")
	}
}

func TestRenderer_MonthlyReport(t *testing.T) {
	r := newTestRenderer(t)
	avg := 36.4

	rendered, err := r.MonthlyReport(MonthlyReportData{
		UserName:               "Ana",
		MonthLabel:             "March 2026",
		Created:                10,
		Completed:              8,
		Pending:                2,
		CompletionRate:         0.8,
		AverageCompletionHours: &avg,
		BestDay:                &BestDay{Label: "Tuesday", Completions: 4},
		FocusAreas:             []SubjectCount{{Subject: "Chemistry", Count: 2}},
		Achievements:           []string{"Solid output: 8 tasks completed this month."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.Subject != "Your month in TaskStudy: March 2026" {
		t.Errorf("subject = %q", rendered.Subject)
	}
	if !strings.Contains(rendered.BodyHTML, "Tuesday") {
		t.Error("body is missing the best day")
	}
	// The roundHours helper renders 36.4 as 36.
	if !strings.Contains(rendered.BodyHTML, "36") {
		t.Error("body is missing the rounded average hours")
	}
}

func TestRenderer_MonthlyReport_NilOptionals(t *testing.T) {
	r := newTestRenderer(t)

	rendered, err := r.MonthlyReport(MonthlyReportData{
		UserName:     "Ana",
		MonthLabel:   "March 2026",
		Created:      2,
		Pending:      2,
		Achievements: []string{"Every month is a fresh start."},
	})
	if err != nil {
		t.Fatalf("nil optionals must render: %v", err)
	}
	if rendered.BodyHTML == "" {
		t.Error("body is empty")
	}
}
