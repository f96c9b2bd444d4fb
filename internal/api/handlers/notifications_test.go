package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskstudy/internal/types"
)

// =============================================================================
// Mock Implementations for Notifications Handler
// =============================================================================

// mockNotificationReader implements NotificationReader for testing.
type mockNotificationReader struct {
	listFn func(ctx context.Context, userID string, limit int) ([]types.NotificationLogEntry, error)

	capturedUserID string
	capturedLimit  int
}

func (m *mockNotificationReader) ListRecent(ctx context.Context, userID string, limit int) ([]types.NotificationLogEntry, error) {
	m.capturedUserID = userID
	m.capturedLimit = limit
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return nil, nil
}

// mockUserFinder implements NotificationUserStore for testing.
type mockUserFinder struct {
	findFn func(ctx context.Context, id string) (*types.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*types.User, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return &types.User{ID: id, Name: "Ana Souza", Email: "ana@example.com"}, nil
}

// mockTelegramSender implements TelegramSender for testing.
type mockTelegramSender struct {
	sendFn func(ctx context.Context, chatID, text string) error

	capturedChatID string
	capturedText   string
}

func (m *mockTelegramSender) Send(ctx context.Context, chatID, text string) error {
	m.capturedChatID = chatID
	m.capturedText = text
	if m.sendFn != nil {
		return m.sendFn(ctx, chatID, text)
	}
	return nil
}

func newNotificationsRouter(log NotificationReader, users NotificationUserStore, tg TelegramSender) *chi.Mux {
	r := chi.NewRouter()
	NewNotificationsHandler(log, users, tg, testHandlerLogger()).RegisterRoutes(r)
	return r
}

// scannedEntry builds a log entry whose payload arrived through the JSONB
// scan path, the way repository rows do.
func scannedEntry(t *testing.T, id string, kind types.NotificationType, payloadJSON string) types.NotificationLogEntry {
	t.Helper()
	entry := types.NotificationLogEntry{
		ID:        id,
		UserID:    "user_1",
		Type:      kind,
		Title:     "Title",
		Message:   "Message",
		CreatedAt: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	if payloadJSON != "" {
		require.NoError(t, entry.Payload.Scan([]byte(payloadJSON)))
	}
	return entry
}

func TestNotificationsHandler_HandleList(t *testing.T) {
	t.Run("missing user_id", func(t *testing.T) {
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeValidationMissingField))
	})

	t.Run("invalid limit", func(t *testing.T) {
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_1&limit=-2", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeValidationInvalidParam))
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mockUserFinder{findFn: func(_ context.Context, _ string) (*types.User, error) {
			return nil, nil
		}}
		router := newNotificationsRouter(&mockNotificationReader{}, users, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeNotFoundUser))
	})

	t.Run("limit defaults and caps", func(t *testing.T) {
		reader := &mockNotificationReader{}
		router := newNotificationsRouter(reader, &mockUserFinder{}, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, defaultNotificationLimit, reader.capturedLimit)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_1&limit=9999", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxNotificationLimit, reader.capturedLimit)
	})

	t.Run("decodes payloads by type", func(t *testing.T) {
		reader := &mockNotificationReader{listFn: func(_ context.Context, _ string, _ int) ([]types.NotificationLogEntry, error) {
			return []types.NotificationLogEntry{
				scannedEntry(t, "n1", types.NotificationUrgentAlert, `{"task_id":"task_1","threshold_hours":24}`),
				scannedEntry(t, "n2", types.NotificationDailyPending, `{"count":3}`),
				scannedEntry(t, "n3", types.NotificationWeeklyReport, ""),
			}, nil
		}}
		router := newNotificationsRouter(reader, &mockUserFinder{}, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data []struct {
				ID      string          `json:"id"`
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data, 3)

		var urgent types.UrgentPayload
		require.NoError(t, json.Unmarshal(body.Data[0].Payload, &urgent))
		assert.Equal(t, "task_1", urgent.TaskID)
		assert.Equal(t, 24, urgent.ThresholdHours)

		var daily types.DailyPayload
		require.NoError(t, json.Unmarshal(body.Data[1].Payload, &daily))
		assert.Equal(t, 3, daily.Count)

		assert.Empty(t, body.Data[2].Payload, "payload-less entries omit the field")
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		reader := &mockNotificationReader{listFn: func(_ context.Context, _ string, _ int) ([]types.NotificationLogEntry, error) {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "query failed", errors.New("closed"))
		}}
		router := newNotificationsRouter(reader, &mockUserFinder{}, &mockTelegramSender{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?user_id=user_1", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestNotificationsHandler_HandleTestTelegram(t *testing.T) {
	t.Run("explicit chat and message", func(t *testing.T) {
		tg := &mockTelegramSender{}
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, tg)

		body := strings.NewReader(`{"chat_id": "chat_42", "message": "ping"}`)
		req := httptest.NewRequest(http.MethodPost, "/notifications/test-telegram", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "chat_42", tg.capturedChatID)
		assert.Equal(t, "ping", tg.capturedText)
		assert.Contains(t, rec.Body.String(), `"status":"sent"`)
	})

	t.Run("empty body falls back to defaults", func(t *testing.T) {
		tg := &mockTelegramSender{}
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, tg)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/test-telegram", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, tg.capturedChatID, "empty chat ID is resolved by the client's default")
		assert.Contains(t, tg.capturedText, "test notification")
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		tg := &mockTelegramSender{}
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, tg)

		req := httptest.NewRequest(http.MethodPost, "/notifications/test-telegram", strings.NewReader(`{"chat_id":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, tg.capturedText, "nothing must be sent on a bad request")
	})

	t.Run("send failure maps to upstream error", func(t *testing.T) {
		tg := &mockTelegramSender{sendFn: func(_ context.Context, _, _ string) error {
			return types.NewAppError(types.ErrCodeUpstreamTelegram, "bot unreachable", nil)
		}}
		router := newNotificationsRouter(&mockNotificationReader{}, &mockUserFinder{}, tg)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/test-telegram", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), string(types.ErrCodeUpstreamTelegram))
	})
}
