package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"taskstudy/internal/core"
	"taskstudy/internal/types"
)

// defaultNotificationLimit caps the notification center page size when the
// client does not ask for one.
const defaultNotificationLimit = 50

// maxNotificationLimit is the hard ceiling on page size.
const maxNotificationLimit = 200

// NotificationReader provides read access to the notification log.
// Mirrors the concrete db.NotificationRepository methods used here.
type NotificationReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]types.NotificationLogEntry, error)
}

// NotificationUserStore resolves users for the notification center.
type NotificationUserStore interface {
	FindByID(ctx context.Context, id string) (*types.User, error)
}

// TelegramSender abstracts the Telegram channel for operator test sends.
type TelegramSender interface {
	Send(ctx context.Context, chatID, text string) error
}

// NotificationItem is the notification center DTO: the log entry with its
// payload decoded according to the entry type.
type NotificationItem struct {
	ID        string                 `json:"id"`
	Type      types.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   any                    `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// TestTelegramRequest is the body for the operator test-send endpoint.
// Both fields are optional: an empty chat ID falls back to the configured
// default chat and an empty message gets a canned test text.
type TestTelegramRequest struct {
	ChatID  string `json:"chat_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// NotificationsHandler serves the notification center listing and the
// Telegram test-send endpoint.
type NotificationsHandler struct {
	log      NotificationReader
	users    NotificationUserStore
	telegram TelegramSender
	logger   *slog.Logger
}

// NewNotificationsHandler creates the notifications handler.
func NewNotificationsHandler(
	log NotificationReader,
	users NotificationUserStore,
	telegram TelegramSender,
	logger *slog.Logger,
) *NotificationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationsHandler{log: log, users: users, telegram: telegram, logger: logger}
}

// RegisterRoutes mounts the notification endpoints.
func (h *NotificationsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Post("/notifications/test-telegram", h.HandleTestTelegram)
}

// HandleList returns a user's recent notifications, newest first.
// GET /v1/notifications?user_id=...&limit=...
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField, "user_id query parameter is required", nil))
		return
	}

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidParam, "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if user == nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil))
		return
	}

	entries, err := h.log.ListRecent(r.Context(), userID, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	items := make([]NotificationItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, NotificationItem{
			ID:        entry.ID,
			Type:      entry.Type,
			Title:     entry.Title,
			Message:   entry.Message,
			Payload:   decodedPayload(&entry),
			CreatedAt: entry.CreatedAt,
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: items})
}

// decodedPayload decodes the entry's payload by its type, falling back to
// nil when the payload is empty or undecodable (old rows with free-form
// payloads stay listed, just without structured detail).
func decodedPayload(entry *types.NotificationLogEntry) any {
	if err := entry.Payload.DecodeAs(entry.Type); err != nil {
		return nil
	}
	switch {
	case entry.Payload.Urgent != nil:
		return entry.Payload.Urgent
	case entry.Payload.Daily != nil:
		return entry.Payload.Daily
	case entry.Payload.Report != nil:
		return entry.Payload.Report
	default:
		return nil
	}
}

// HandleTestTelegram sends a test message through the Telegram channel so
// operators can verify bot credentials and chat wiring.
// POST /v1/notifications/test-telegram
func (h *NotificationsHandler) HandleTestTelegram(w http.ResponseWriter, r *http.Request) {
	var req TestTelegramRequest
	if r.ContentLength > 0 {
		if err := core.DecodeJSON(w, r, &req); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	message := req.Message
	if message == "" {
		message = "TaskStudy test notification. If you can read this, the Telegram channel works."
	}

	if err := h.telegram.Send(r.Context(), req.ChatID, message); err != nil {
		h.logger.Error("telegram test send failed", "error", err)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: map[string]string{"status": "sent"},
	})
}
