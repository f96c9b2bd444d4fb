// Package digest transforms pending tasks into display-ready summary items
// for the daily digest: status labels, days remaining, priority scores, and
// criticality flags, all computed relative to a caller-supplied instant.
package digest

import (
	"fmt"
	"time"

	"taskstudy/internal/types"
)

// criticalWindow is how close to the due date a task must be to count as
// critical for highlight selection.
const criticalWindow = 48 * time.Hour

// dueDateFormat is the layout for the human-readable due date shown in
// digest emails.
const dueDateFormat = "Monday, Jan 2 2006 at 15:04"

// BuildItems maps a user's pending tasks into digest items relative to now.
// It is a pure transform: empty input yields empty output and there are no
// failure modes. Input order is preserved.
func BuildItems(tasks []types.Task, now time.Time) []Item {
	items := make([]Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, buildItem(task, now))
	}
	return items
}

func buildItem(task types.Task, now time.Time) Item {
	remaining := task.DueDate.Sub(now)
	overdue := remaining < 0

	days := 0
	if !overdue {
		days = int(remaining / (24 * time.Hour))
	}

	var label string
	switch {
	case overdue:
		label = "Overdue"
	case days == 0:
		label = "Due today"
	case days == 1:
		label = "1 day left"
	default:
		label = fmt.Sprintf("%d days left", days)
	}

	return Item{
		Title:            task.Title,
		Subject:          task.Subject,
		DueDate:          task.DueDate,
		FormattedDueDate: task.DueDate.Format(dueDateFormat),
		StatusLabel:      label,
		DaysRemaining:    days,
		PriorityLabel:    task.Priority.Label(),
		PriorityScore:    task.Priority.Score(),
		IsCritical:       remaining <= criticalWindow,
		IsOverdue:        overdue,
	}
}

// SelectHighlights picks up to limit items worth calling out at the top of
// a digest: critical or overdue items first, falling back to the first
// items in builder order when none qualify.
func SelectHighlights(items []Item, limit int) []Item {
	if limit <= 0 {
		return nil
	}

	var highlights []Item
	for _, item := range items {
		if item.IsCritical || item.IsOverdue {
			highlights = append(highlights, item)
			if len(highlights) == limit {
				return highlights
			}
		}
	}
	if len(highlights) > 0 {
		return highlights
	}

	if len(items) <= limit {
		limit = len(items)
	}
	return append([]Item(nil), items[:limit]...)
}
