package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskstudy/internal/notifications/email"
	"taskstudy/internal/types"
)

// urgentThresholdsHours are the due-date proximities, in hours, that
// trigger an urgent reminder. Each threshold matches tasks due within a
// thirty-minute band around it, so a task gets at most one reminder per
// threshold as it approaches its deadline.
var urgentThresholdsHours = []int{24, 48, 72}

// urgentDedupWindow is how far back the checker looks for an existing
// reminder for the same task and threshold before sending another.
const urgentDedupWindow = 2 * time.Hour

// UrgentChecker scans for tasks approaching their due date and emails the
// owner a reminder per crossed threshold.
type UrgentChecker struct {
	tasks    TaskStore
	users    UserStore
	log      NotificationLog
	email    EmailChannel
	renderer *email.Renderer
	logger   *slog.Logger
}

// NewUrgentChecker creates an urgent reminder checker.
func NewUrgentChecker(
	tasks TaskStore,
	users UserStore,
	log NotificationLog,
	emailCh EmailChannel,
	renderer *email.Renderer,
	logger *slog.Logger,
) *UrgentChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &UrgentChecker{
		tasks:    tasks,
		users:    users,
		log:      log,
		email:    emailCh,
		renderer: renderer,
		logger:   logger,
	}
}

// Run scans all thresholds once. Per-task failures are logged and counted
// but never abort the scan. Returns the number of reminders sent.
func (c *UrgentChecker) Run(ctx context.Context, now time.Time) (sent int, errs int) {
	for _, threshold := range urgentThresholdsHours {
		tasks, err := c.tasks.FindDueSoon(ctx, now, threshold)
		if err != nil {
			c.logger.Error("urgent scan failed to list due-soon tasks",
				"threshold_hours", threshold,
				"error", err,
			)
			errs++
			continue
		}

		for i := range tasks {
			ok, err := c.remind(ctx, &tasks[i], threshold, now)
			if err != nil {
				c.logger.Error("urgent reminder failed",
					"task_id", tasks[i].ID,
					"threshold_hours", threshold,
					"error", err,
				)
				errs++
				continue
			}
			if ok {
				sent++
			}
		}
	}

	c.logger.Info("urgent reminder scan complete", "sent", sent, "errors", errs)
	return sent, errs
}

// remind sends one reminder for a task at a threshold unless the owner is
// missing or an equivalent reminder went out recently. Urgent reminders
// ignore the digest email preference: a deadline warning always goes out.
func (c *UrgentChecker) remind(ctx context.Context, task *types.Task, thresholdHours int, now time.Time) (bool, error) {
	user, err := c.users.FindByID(ctx, task.UserID)
	if err != nil {
		return false, fmt.Errorf("fetching owner of task %s: %w", task.ID, err)
	}
	if user == nil {
		// Orphaned task, nothing to notify.
		return false, nil
	}

	already, err := c.log.ExistsUrgentSince(ctx, task.ID, thresholdHours, now.Add(-urgentDedupWindow))
	if err != nil {
		return false, fmt.Errorf("checking urgent dedup for task %s: %w", task.ID, err)
	}
	if already {
		return false, nil
	}

	rendered, err := c.renderer.Reminder(email.ReminderData{
		UserName:       user.FirstName(),
		TaskTitle:      task.Title,
		DueDate:        task.DueDate,
		ThresholdHours: thresholdHours,
	})
	if err != nil {
		return false, fmt.Errorf("rendering reminder for task %s: %w", task.ID, err)
	}
	if err := c.email.Send(ctx, user.RecipientEmail(), rendered.Subject, rendered.BodyHTML); err != nil {
		return false, fmt.Errorf("sending reminder to %s: %w", user.RecipientEmail(), err)
	}

	entry := &types.NotificationLogEntry{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		Type:    types.NotificationUrgentAlert,
		Title:   fmt.Sprintf("Task due in %d hours", thresholdHours),
		Message: fmt.Sprintf("%q (%s) is due on %s.", task.Title, task.Subject, task.DueDate.Format("Jan 2 15:04")),
		Payload: types.NotificationPayload{
			Urgent: &types.UrgentPayload{
				TaskID:         task.ID,
				ThresholdHours: thresholdHours,
			},
		},
		CreatedAt: now,
	}
	if err := c.log.Create(ctx, entry); err != nil {
		return false, fmt.Errorf("recording urgent reminder for task %s: %w", task.ID, err)
	}

	return true, nil
}
