package scheduler

import (
	"context"
	"time"

	"taskstudy/internal/types"
)

// TaskStore is the read-only task query surface the engine consumes.
// Task CRUD lives elsewhere; the scheduler only ever reads.
type TaskStore interface {
	// FindPendingInRange returns the user's pending tasks with a due date in
	// [from, to], ordered by due date ascending then priority descending.
	FindPendingInRange(ctx context.Context, userID string, from, to time.Time) ([]types.Task, error)

	// FindDueSoon returns pending tasks (any user) whose due date falls
	// within ±30 minutes of now plus thresholdHours.
	FindDueSoon(ctx context.Context, now time.Time, thresholdHours int) ([]types.Task, error)

	// CountCreatedInRange counts the user's tasks created in [from, to).
	CountCreatedInRange(ctx context.Context, userID string, from, to time.Time) (int, error)

	// FindCompletedInRange returns the user's tasks completed in [from, to).
	FindCompletedInRange(ctx context.Context, userID string, from, to time.Time) ([]types.Task, error)
}

// UserStore is the read-only user query surface the engine consumes.
type UserStore interface {
	FindAll(ctx context.Context) ([]types.User, error)
	FindByID(ctx context.Context, id string) (*types.User, error)

	// FindByEmailOrNotificationEmail matches users whose account email or
	// notification email equals the given address, case-insensitively.
	FindByEmailOrNotificationEmail(ctx context.Context, email string) ([]types.User, error)
}

// NotificationLog is the engine-owned persistence surface for sent
// notifications. Entries are append-only.
type NotificationLog interface {
	Create(ctx context.Context, entry *types.NotificationLogEntry) error

	// ExistsSince reports whether any entry matches the user, one of the
	// kinds, and createdAt >= since.
	ExistsSince(ctx context.Context, userID string, kinds []types.NotificationType, since time.Time) (bool, error)

	// ExistsUrgentSince reports whether an URGENT_ALERT entry for the given
	// task and threshold was created at or after since.
	ExistsUrgentSince(ctx context.Context, taskID string, thresholdHours int, since time.Time) (bool, error)
}

// EmailChannel sends a rendered HTML email. Implementations own their
// timeouts; a send error is fatal for the current user's job.
type EmailChannel interface {
	Send(ctx context.Context, to, subject, html string) error
}

// TelegramChannel sends a plain-text Telegram message to a linked chat.
type TelegramChannel interface {
	Send(ctx context.Context, chatID, text string) error
}

// WhatsAppChannel sends a plain-text WhatsApp message. Availability is a
// capability resolved once at construction: an unconfigured relay reports
// Available() == false and the runners skip it without error.
type WhatsAppChannel interface {
	Available() bool
	Send(ctx context.Context, to, message string) error
}

// ReportKind distinguishes the calendar-gated report batches.
type ReportKind string

const (
	KindWeekly  ReportKind = "weekly"
	KindMonthly ReportKind = "monthly"
)

// ShouldRun decides whether a calendar-gated report batch runs at the given
// instant. A non-nil override wins outright; otherwise weekly reports run
// on Mondays and monthly reports on the first of the month.
func ShouldRun(kind ReportKind, now time.Time, override *bool) bool {
	if override != nil {
		return *override
	}
	switch kind {
	case KindWeekly:
		return now.Weekday() == time.Monday
	case KindMonthly:
		return now.Day() == 1
	default:
		return false
	}
}
