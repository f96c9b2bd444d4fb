package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType identifies the kind of notification recorded in the log.
type NotificationType string

const (
	// NotificationUrgentAlert marks a due-soon reminder for a single task.
	NotificationUrgentAlert NotificationType = "URGENT_ALERT"

	// NotificationDailyPending marks a daily pending-tasks digest.
	NotificationDailyPending NotificationType = "DAILY_PENDING_TASKS"

	// NotificationDailySummary is the legacy name for the daily digest.
	// Older log rows carry it, so dedup queries must match both.
	NotificationDailySummary NotificationType = "DAILY_SUMMARY"

	NotificationWeeklyReport  NotificationType = "WEEKLY_REPORT"
	NotificationMonthlyReport NotificationType = "MONTHLY_REPORT"
)

// DailyKinds are the notification types consulted by the daily dedup check.
// Both the current and the legacy daily type count as "already sent today".
var DailyKinds = []NotificationType{NotificationDailyPending, NotificationDailySummary}

// NotificationLogEntry is the per-send record written after a notification's
// channels have been attempted. Rows are append-only: the engine never
// updates or deletes them, and the dedup checker relies on their presence to
// make each scheduled job idempotent per period.
type NotificationLogEntry struct {
	ID        string              `json:"id" db:"id"`
	UserID    string              `json:"user_id" db:"user_id"`
	Type      NotificationType    `json:"type" db:"type"`
	Title     string              `json:"title" db:"title"`
	Message   string              `json:"message" db:"message"`
	Payload   NotificationPayload `json:"payload" db:"payload"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// NotificationPayload is a tagged union keyed by the entry's Type. Exactly
// one of the variant pointers is set; the zero value marshals to JSON null.
type NotificationPayload struct {
	Urgent *UrgentPayload `json:"-"`
	Daily  *DailyPayload  `json:"-"`
	Report *ReportPayload `json:"-"`

	// raw holds scanned-but-undecoded JSONB until DecodeAs is called with
	// the row's type column.
	raw []byte
}

// UrgentPayload records which task and threshold produced an URGENT_ALERT.
type UrgentPayload struct {
	TaskID         string `json:"task_id"`
	ThresholdHours int    `json:"threshold_hours"`
}

// DailyPayload snapshots the pending count and highlighted titles of a
// daily digest at send time.
type DailyPayload struct {
	Count      int      `json:"count"`
	Highlights []string `json:"highlights,omitempty"`
}

// ReportPayload carries the aggregate counters of a weekly or monthly
// report. The monthly-only fields stay nil on weekly entries.
type ReportPayload struct {
	Created        int     `json:"created"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`

	AverageCompletionHours *float64 `json:"average_completion_hours,omitempty"`
	BestDay                string   `json:"best_day,omitempty"`
}

// Compile-time interface assertions: NotificationPayload must round-trip
// through JSONB columns.
var (
	_ sql.Scanner   = (*NotificationPayload)(nil)
	_ driver.Valuer = NotificationPayload{}
)

// variant returns whichever payload variant is set, or nil.
func (p NotificationPayload) variant() any {
	switch {
	case p.Urgent != nil:
		return p.Urgent
	case p.Daily != nil:
		return p.Daily
	case p.Report != nil:
		return p.Report
	default:
		return nil
	}
}

// MarshalJSON emits the set variant directly, without a wrapper object.
// The owning entry's Type field is the discriminator.
func (p NotificationPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.variant())
}

// Value implements driver.Valuer for writing the payload as JSONB.
func (p NotificationPayload) Value() (driver.Value, error) {
	v := p.variant()
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner. The raw JSON is retained; DecodeAs resolves
// it into the variant matching the entry's type.
func (p *NotificationPayload) Scan(value any) error {
	*p = NotificationPayload{}
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("notification payload: unsupported scan type %T", value)
	}
	p.raw = append([]byte(nil), data...)
	return nil
}

// DecodeAs resolves scanned JSONB into the variant for the given type.
// Entries with no payload (or unknown types) decode to the empty union.
func (p *NotificationPayload) DecodeAs(t NotificationType) error {
	data := p.raw
	*p = NotificationPayload{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch t {
	case NotificationUrgentAlert:
		p.Urgent = &UrgentPayload{}
		return json.Unmarshal(data, p.Urgent)
	case NotificationDailyPending, NotificationDailySummary:
		p.Daily = &DailyPayload{}
		return json.Unmarshal(data, p.Daily)
	case NotificationWeeklyReport, NotificationMonthlyReport:
		p.Report = &ReportPayload{}
		return json.Unmarshal(data, p.Report)
	default:
		return nil
	}
}
