package types

import (
	"strings"
	"time"
)

// User is the account entity consumed by the notification engine. The engine
// never mutates users; registration and profile editing live in the account
// layer.
type User struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`

	// NotificationEmail overrides Email as the delivery address when set.
	NotificationEmail string `json:"notification_email,omitempty" db:"notification_email"`
	Phone             string `json:"phone,omitempty" db:"phone"`

	// ConsentGiven gates every non-essential channel. Per-channel opt-ins
	// below have no effect while it is false.
	ConsentGiven     bool   `json:"consent_given" db:"consent_given"`
	NotifyByEmail    bool   `json:"notify_by_email" db:"notify_by_email"`
	NotifyByTelegram bool   `json:"notify_by_telegram" db:"notify_by_telegram"`
	NotifyByWhatsApp bool   `json:"notify_by_whatsapp" db:"notify_by_whatsapp"`
	TelegramChatID   string `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecipientEmail returns the address notifications should be delivered to:
// the explicit notification email when present, else the account email.
func (u *User) RecipientEmail() string {
	if addr := strings.TrimSpace(u.NotificationEmail); addr != "" {
		return addr
	}
	return u.Email
}

// FirstName returns the first word of the user's name for informal greetings.
func (u *User) FirstName() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return name
	}
	if idx := strings.IndexByte(name, ' '); idx > 0 {
		return name[:idx]
	}
	return name
}

// TelegramEnabled reports whether a Telegram send should be attempted for
// this user: consent given, channel opted in, and a linked chat ID present.
func (u *User) TelegramEnabled() bool {
	return u.ConsentGiven && u.NotifyByTelegram && strings.TrimSpace(u.TelegramChatID) != ""
}

// WhatsAppEnabled reports whether a WhatsApp send should be attempted for
// this user: consent given, channel opted in, and a phone number present.
func (u *User) WhatsAppEnabled() bool {
	return u.ConsentGiven && u.NotifyByWhatsApp && strings.TrimSpace(u.Phone) != ""
}

// Task is the unit of schoolwork being tracked. The engine reads tasks to
// build digests and reminders; task CRUD lives in the task layer.
type Task struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Subject     string     `json:"subject" db:"subject"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      TaskStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// CompletedAt is set when Status transitions to completed. Used by the
	// monthly report to compute average completion time.
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Priority ranks how important a task is to the student.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Score maps the priority onto a fixed numeric scale used for sorting
// digest items: high=3, medium=2, low=1. Unknown values rank lowest.
func (p Priority) Score() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Label returns the display label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return string(p)
	}
}

// TaskStatus represents the completion state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)
