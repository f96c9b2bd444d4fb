package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskstudy/internal/types"
)

// userRow builds a row matching the userColumns order.
func userRow(id, name, email string, notificationEmail any, created time.Time) []any {
	return []any{
		id, name, email, notificationEmail, "+5511999990000",
		true, true, true, false,
		"chat_1", created, created,
	}
}

func TestUserRepository_FindAll_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewUserRepository(db)

	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		userRow("user_1", "Ana Souza", "ana@example.com", nil, created),
		userRow("user_2", "Bruno Lima", "bruno@example.com", "alerts@example.com", created.Add(time.Hour)),
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			assert.Contains(t, args.Get(1).(string), "ORDER BY u.created_at ASC")
		}).
		Return(rows, nil)

	users, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "user_1", users[0].ID)
	assert.Empty(t, users[0].NotificationEmail, "NULL notification_email scans to empty string")
	assert.Equal(t, "alerts@example.com", users[1].NotificationEmail)
	assert.True(t, users[0].ConsentGiven)
	assert.Equal(t, "chat_1", users[0].TelegramChatID)

	db.AssertExpectations(t)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewUserRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"user_missing"}).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	user, err := repo.FindByID(context.Background(), "user_missing")
	require.NoError(t, err, "a missing user is not an error")
	assert.Nil(t, user)
}

func TestUserRepository_FindByID_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewUserRepository(db)

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection reset")})

	_, err := repo.FindByID(context.Background(), "user_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestUserRepository_FindByEmailOrNotificationEmail(t *testing.T) {
	db := new(mockDBTX)
	repo := NewUserRepository(db)

	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		userRow("user_1", "Ana Souza", "ana@example.com", nil, created),
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), []any{"ANA@example.com"}).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "LOWER(u.email)")
			assert.Contains(t, sql, "LOWER(COALESCE(u.notification_email, ''))")
		}).
		Return(rows, nil)

	users, err := repo.FindByEmailOrNotificationEmail(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user_1", users[0].ID)

	db.AssertExpectations(t)
}
