package scheduler

import (
	"context"
	"fmt"
	"time"

	"taskstudy/internal/types"
)

// DedupChecker answers "was a notification of one of these kinds already
// recorded for this user in the current period?". It is read-only: the log
// entry it consults is written only after a send has been attempted, so a
// positive answer means "attempted this period", not "succeeded".
type DedupChecker struct {
	log NotificationLog
}

// NewDedupChecker creates a DedupChecker backed by the given log store.
func NewDedupChecker(log NotificationLog) *DedupChecker {
	return &DedupChecker{log: log}
}

// HasNotification reports whether any entry matches the user, one of the
// kinds, and createdAt >= since. Callers pass the start of the current day,
// week, or month as since to scope "already sent this period".
func (d *DedupChecker) HasNotification(ctx context.Context, userID string, kinds []types.NotificationType, since time.Time) (bool, error) {
	exists, err := d.log.ExistsSince(ctx, userID, kinds, since)
	if err != nil {
		return false, fmt.Errorf("checking notification log for user %s: %w", userID, err)
	}
	return exists, nil
}
