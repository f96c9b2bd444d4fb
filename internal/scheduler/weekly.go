package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"taskstudy/internal/notifications/email"
	"taskstudy/internal/types"
)

// maxReportSubjects caps the highlighted-subject and focus-area lists in
// the weekly and monthly reports.
const maxReportSubjects = 3

// lowCompletionRate is the threshold below which the weekly report suggests
// splitting tasks into smaller steps.
const lowCompletionRate = 0.6

// WeeklyReportJob sends each user one activity report per ISO week (Monday
// through Sunday): created/completed/pending counts, completion rate,
// subjects with the most open tasks, and a few threshold-driven
// suggestions.
type WeeklyReportJob struct {
	tasks    TaskStore
	users    UserStore
	dedup    *DedupChecker
	log      NotificationLog
	email    EmailChannel
	renderer *email.Renderer
	logger   *slog.Logger
}

// NewWeeklyReportJob creates a weekly report job runner.
func NewWeeklyReportJob(
	tasks TaskStore,
	users UserStore,
	log NotificationLog,
	emailCh EmailChannel,
	renderer *email.Renderer,
	logger *slog.Logger,
) *WeeklyReportJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeeklyReportJob{
		tasks:    tasks,
		users:    users,
		dedup:    NewDedupChecker(log),
		log:      log,
		email:    emailCh,
		renderer: renderer,
		logger:   logger,
	}
}

// RunForUser executes the weekly report flow for one user. The report
// window is [Monday 00:00, next Monday 00:00) around the given instant.
func (j *WeeklyReportJob) RunForUser(ctx context.Context, user *types.User, now time.Time, force bool) (types.JobOutcome, error) {
	weekStart := StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	if !force {
		sent, err := j.dedup.HasNotification(ctx, user.ID, []types.NotificationType{types.NotificationWeeklyReport}, weekStart)
		if err != nil {
			return "", err
		}
		if sent {
			return types.OutcomeSkippedDuplicate, nil
		}
	}

	created, err := j.tasks.CountCreatedInRange(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return "", fmt.Errorf("counting created tasks for user %s: %w", user.ID, err)
	}
	completed, err := j.tasks.FindCompletedInRange(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return "", fmt.Errorf("fetching completed tasks for user %s: %w", user.ID, err)
	}
	pending, err := j.tasks.FindPendingInRange(ctx, user.ID, weekStart, weekEnd)
	if err != nil {
		return "", fmt.Errorf("fetching pending tasks for user %s: %w", user.ID, err)
	}

	if created == 0 && len(completed) == 0 && len(pending) == 0 {
		return types.OutcomeSkippedEmpty, nil
	}

	rate := completionRate(len(completed), len(pending))
	topSubjects := topPendingSubjects(pending, maxReportSubjects)
	suggestions := weeklySuggestions(rate, topSubjects)

	if user.NotifyByEmail {
		rendered, err := j.renderer.WeeklyReport(email.WeeklyReportData{
			UserName:          user.FirstName(),
			WeekRangeLabel:    weekRangeLabel(weekStart),
			Created:           created,
			Completed:         len(completed),
			Pending:           len(pending),
			CompletionRate:    rate,
			HighlightSubjects: topSubjects,
			Suggestions:       suggestions,
		})
		if err != nil {
			return "", fmt.Errorf("rendering weekly report for user %s: %w", user.ID, err)
		}
		if err := j.email.Send(ctx, user.RecipientEmail(), rendered.Subject, rendered.BodyHTML); err != nil {
			return "", fmt.Errorf("sending weekly report to %s: %w", user.RecipientEmail(), err)
		}
	}

	// The log entry is written even when email is disabled so the dedup
	// check holds for email-disabled users too.
	entry := &types.NotificationLogEntry{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Type:    types.NotificationWeeklyReport,
		Title:   "Weekly report",
		Message: fmt.Sprintf("This week: %d created, %d completed, %d pending.", created, len(completed), len(pending)),
		Payload: types.NotificationPayload{
			Report: &types.ReportPayload{
				Created:        created,
				Completed:      len(completed),
				Pending:        len(pending),
				CompletionRate: rate,
			},
		},
		CreatedAt: now,
	}
	if err := j.log.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("recording weekly report for user %s: %w", user.ID, err)
	}

	return types.OutcomeSent, nil
}

// RunBatch runs the weekly report for every user, aggregating outcomes and
// isolating per-user failures. The summary is always non-nil.
func (j *WeeklyReportJob) RunBatch(ctx context.Context, now time.Time, force bool) *types.ReportBatchSummary {
	summary := &types.ReportBatchSummary{}

	users, err := j.users.FindAll(ctx)
	if err != nil {
		j.logger.Error("weekly report batch aborted: listing users failed", "error", err)
		summary.Errors++
		return summary
	}

	for i := range users {
		user := &users[i]
		outcome, err := j.RunForUser(ctx, user, now, force)
		if err != nil {
			j.logger.Error("weekly report failed for user",
				"user_email", user.Email,
				"error", err,
			)
			summary.RecordError()
			continue
		}
		summary.Record(outcome)
	}

	j.logger.Info("weekly report batch complete",
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"skipped_duplicate", summary.SkippedDuplicate,
		"skipped_empty", summary.SkippedEmpty,
		"errors", summary.Errors,
	)

	return summary
}

// completionRate is completed / (completed + pending) with a floor of one
// on the denominator so an empty week reads as zero instead of dividing by
// zero.
func completionRate(completed, pending int) float64 {
	denom := completed + pending
	if denom < 1 {
		denom = 1
	}
	return float64(completed) / float64(denom)
}

// topPendingSubjects returns up to limit subjects ranked by pending-task
// count, ties broken alphabetically for determinism.
func topPendingSubjects(pending []types.Task, limit int) []email.SubjectCount {
	counts := make(map[string]int)
	for _, task := range pending {
		counts[task.Subject]++
	}

	subjects := make([]email.SubjectCount, 0, len(counts))
	for subject, count := range counts {
		subjects = append(subjects, email.SubjectCount{Subject: subject, Count: count})
	}
	sort.Slice(subjects, func(a, b int) bool {
		if subjects[a].Count != subjects[b].Count {
			return subjects[a].Count > subjects[b].Count
		}
		return subjects[a].Subject < subjects[b].Subject
	})

	if len(subjects) > limit {
		subjects = subjects[:limit]
	}
	return subjects
}

// weeklySuggestions derives one to three coaching lines from the week's
// numbers.
func weeklySuggestions(rate float64, topSubjects []email.SubjectCount) []string {
	var suggestions []string
	if rate < lowCompletionRate {
		suggestions = append(suggestions,
			"Your completion rate dipped below 60% this week. Try splitting larger tasks into smaller steps you can finish in one sitting.")
	}
	if len(topSubjects) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("%s has the most open tasks right now. Reserve a dedicated study block for it early in the week.", topSubjects[0].Subject))
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Great momentum. Keep the same rhythm going into next week.")
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// weekRangeLabel formats the Monday-to-Sunday display range of a week.
func weekRangeLabel(weekStart time.Time) string {
	return fmt.Sprintf("%s to %s",
		weekStart.Format("Jan 2"),
		EndOfWeek(weekStart).Format("Jan 2, 2006"),
	)
}
