package email

import (
	"time"

	"taskstudy/internal/notifications/digest"
)

// RenderedEmail holds pre-rendered email content ready for transmission.
type RenderedEmail struct {
	Subject  string
	BodyHTML string
}

// ReminderData feeds the urgent task reminder template.
type ReminderData struct {
	UserName       string
	TaskTitle      string
	DueDate        time.Time
	ThresholdHours int
}

// DailyDigestData feeds the daily pending-tasks digest template.
type DailyDigestData struct {
	UserName   string
	Date       time.Time
	Items      []digest.Item
	Highlights []digest.Item
}

// SubjectCount pairs a subject with how many tasks reference it.
type SubjectCount struct {
	Subject string
	Count   int
}

// BestDay names the weekday with the most completions in a month.
type BestDay struct {
	Label       string
	Completions int
}

// WeeklyReportData feeds the weekly report template.
type WeeklyReportData struct {
	UserName          string
	WeekRangeLabel    string
	Created           int
	Completed         int
	Pending           int
	CompletionRate    float64
	HighlightSubjects []SubjectCount
	Suggestions       []string
}

// MonthlyReportData feeds the monthly performance report template.
type MonthlyReportData struct {
	UserName       string
	MonthLabel     string
	Created        int
	Completed      int
	Pending        int
	CompletionRate float64

	// AverageCompletionHours is nil when nothing was completed in the month.
	AverageCompletionHours *float64
	BestDay                *BestDay
	FocusAreas             []SubjectCount
	Achievements           []string
}
