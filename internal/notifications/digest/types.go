package digest

import "time"

// Item is a display-ready summary of one pending task, computed relative to
// a reference instant. Items are ephemeral: built fresh on every digest run
// and never persisted.
type Item struct {
	Title            string    `json:"title"`
	Subject          string    `json:"subject"`
	DueDate          time.Time `json:"due_date"`
	FormattedDueDate string    `json:"formatted_due_date"`

	// StatusLabel is one of "Overdue", "Due today", "1 day left", or
	// "N days left".
	StatusLabel string `json:"status_label"`

	// DaysRemaining is the number of whole days until the due date,
	// clamped at zero for overdue and same-day tasks.
	DaysRemaining int `json:"days_remaining"`

	PriorityLabel string `json:"priority_label"`
	PriorityScore int    `json:"priority_score"`

	// IsCritical marks tasks due within the critical window (two days),
	// overdue tasks included.
	IsCritical bool `json:"is_critical"`
	IsOverdue  bool `json:"is_overdue"`
}
