package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"taskstudy/internal/notifications/email"
	"taskstudy/internal/types"
)

// fastTurnaroundHours is the average-completion-time ceiling below which
// the monthly report calls out fast turnaround as an achievement.
const fastTurnaroundHours = 72

// MonthlyReportJob sends each user one report per calendar month with the
// same counters as the weekly report plus average completion time, the
// most productive weekday, focus areas, and a list of achievements.
type MonthlyReportJob struct {
	tasks    TaskStore
	users    UserStore
	dedup    *DedupChecker
	log      NotificationLog
	email    EmailChannel
	renderer *email.Renderer
	logger   *slog.Logger
}

// NewMonthlyReportJob creates a monthly report job runner.
func NewMonthlyReportJob(
	tasks TaskStore,
	users UserStore,
	log NotificationLog,
	emailCh EmailChannel,
	renderer *email.Renderer,
	logger *slog.Logger,
) *MonthlyReportJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonthlyReportJob{
		tasks:    tasks,
		users:    users,
		dedup:    NewDedupChecker(log),
		log:      log,
		email:    emailCh,
		renderer: renderer,
		logger:   logger,
	}
}

// RunForUser executes the monthly report flow for one user. The report
// window is [first of month 00:00, first of next month 00:00).
func (j *MonthlyReportJob) RunForUser(ctx context.Context, user *types.User, now time.Time, force bool) (types.JobOutcome, error) {
	monthStart := StartOfMonth(now)
	monthEnd := StartOfNextMonth(now)

	if !force {
		sent, err := j.dedup.HasNotification(ctx, user.ID, []types.NotificationType{types.NotificationMonthlyReport}, monthStart)
		if err != nil {
			return "", err
		}
		if sent {
			return types.OutcomeSkippedDuplicate, nil
		}
	}

	created, err := j.tasks.CountCreatedInRange(ctx, user.ID, monthStart, monthEnd)
	if err != nil {
		return "", fmt.Errorf("counting created tasks for user %s: %w", user.ID, err)
	}
	completed, err := j.tasks.FindCompletedInRange(ctx, user.ID, monthStart, monthEnd)
	if err != nil {
		return "", fmt.Errorf("fetching completed tasks for user %s: %w", user.ID, err)
	}
	pending, err := j.tasks.FindPendingInRange(ctx, user.ID, monthStart, monthEnd)
	if err != nil {
		return "", fmt.Errorf("fetching pending tasks for user %s: %w", user.ID, err)
	}

	if created == 0 && len(completed) == 0 && len(pending) == 0 {
		return types.OutcomeSkippedEmpty, nil
	}

	rate := completionRate(len(completed), len(pending))
	avgHours := averageCompletionHours(completed)
	best := bestWeekday(completed)
	focus := topPendingSubjects(pending, maxReportSubjects)
	achievements := monthlyAchievements(len(completed), rate, avgHours, best)

	if user.NotifyByEmail {
		rendered, err := j.renderer.MonthlyReport(email.MonthlyReportData{
			UserName:               user.FirstName(),
			MonthLabel:             monthStart.Format("January 2006"),
			Created:                created,
			Completed:              len(completed),
			Pending:                len(pending),
			CompletionRate:         rate,
			AverageCompletionHours: avgHours,
			BestDay:                best,
			FocusAreas:             focus,
			Achievements:           achievements,
		})
		if err != nil {
			return "", fmt.Errorf("rendering monthly report for user %s: %w", user.ID, err)
		}
		if err := j.email.Send(ctx, user.RecipientEmail(), rendered.Subject, rendered.BodyHTML); err != nil {
			return "", fmt.Errorf("sending monthly report to %s: %w", user.RecipientEmail(), err)
		}
	}

	var bestDayLabel string
	if best != nil {
		bestDayLabel = best.Label
	}
	entry := &types.NotificationLogEntry{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Type:    types.NotificationMonthlyReport,
		Title:   "Monthly report",
		Message: fmt.Sprintf("%s: %d created, %d completed, %d pending.", monthStart.Format("January 2006"), created, len(completed), len(pending)),
		Payload: types.NotificationPayload{
			Report: &types.ReportPayload{
				Created:                created,
				Completed:              len(completed),
				Pending:                len(pending),
				CompletionRate:         rate,
				AverageCompletionHours: avgHours,
				BestDay:                bestDayLabel,
			},
		},
		CreatedAt: now,
	}
	if err := j.log.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("recording monthly report for user %s: %w", user.ID, err)
	}

	return types.OutcomeSent, nil
}

// RunBatch runs the monthly report for every user, aggregating outcomes
// and isolating per-user failures. The summary is always non-nil.
func (j *MonthlyReportJob) RunBatch(ctx context.Context, now time.Time, force bool) *types.ReportBatchSummary {
	summary := &types.ReportBatchSummary{}

	users, err := j.users.FindAll(ctx)
	if err != nil {
		j.logger.Error("monthly report batch aborted: listing users failed", "error", err)
		summary.Errors++
		return summary
	}

	for i := range users {
		user := &users[i]
		outcome, err := j.RunForUser(ctx, user, now, force)
		if err != nil {
			j.logger.Error("monthly report failed for user",
				"user_email", user.Email,
				"error", err,
			)
			summary.RecordError()
			continue
		}
		summary.Record(outcome)
	}

	j.logger.Info("monthly report batch complete",
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"skipped_duplicate", summary.SkippedDuplicate,
		"skipped_empty", summary.SkippedEmpty,
		"errors", summary.Errors,
	)

	return summary
}

// averageCompletionHours is the mean time from creation to completion over
// the month's completed tasks, nil when none carry a completion timestamp.
func averageCompletionHours(completed []types.Task) *float64 {
	var total float64
	var counted int
	for _, task := range completed {
		if task.CompletedAt == nil {
			continue
		}
		elapsed := task.CompletedAt.Sub(task.CreatedAt).Hours()
		if elapsed < 0 {
			continue
		}
		total += elapsed
		counted++
	}
	if counted == 0 {
		return nil
	}
	avg := total / float64(counted)
	return &avg
}

// bestWeekday returns the weekday with the most completions, nil when no
// task carries a completion timestamp. Ties resolve to the earlier weekday
// counting from Monday.
func bestWeekday(completed []types.Task) *email.BestDay {
	var counts [7]int
	var any bool
	for _, task := range completed {
		if task.CompletedAt == nil {
			continue
		}
		idx := (int(task.CompletedAt.Weekday()) + 6) % 7
		counts[idx]++
		any = true
	}
	if !any {
		return nil
	}

	bestIdx := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[bestIdx] {
			bestIdx = i
		}
	}

	labels := [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	return &email.BestDay{Label: labels[bestIdx], Completions: counts[bestIdx]}
}

// monthlyAchievements builds the celebration list for the monthly report.
// A quiet month falls back to a single encouragement line.
func monthlyAchievements(completed int, rate float64, avgHours *float64, best *email.BestDay) []string {
	var achievements []string

	if completed >= 20 {
		achievements = append(achievements, fmt.Sprintf("Powerhouse month: you completed %d tasks.", completed))
	} else if completed >= 5 {
		achievements = append(achievements, fmt.Sprintf("Solid output: %d tasks completed this month.", completed))
	}

	switch {
	case rate >= 0.9:
		achievements = append(achievements, fmt.Sprintf("Nearly perfect completion rate at %d%%.", int(math.Round(rate*100))))
	case rate >= 0.7:
		achievements = append(achievements, fmt.Sprintf("Strong completion rate at %d%%.", int(math.Round(rate*100))))
	}

	if avgHours != nil && *avgHours <= fastTurnaroundHours {
		achievements = append(achievements, fmt.Sprintf("Fast turnaround: tasks got done in about %d hours on average.", int(math.Round(*avgHours))))
	}

	if best != nil && best.Completions > 0 {
		achievements = append(achievements, fmt.Sprintf("%s was your most productive day with %d completions.", best.Label, best.Completions))
	}

	if len(achievements) == 0 {
		achievements = append(achievements, "Every month is a fresh start. Pick one small goal for next month and build from there.")
	}
	return achievements
}
