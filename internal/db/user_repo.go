package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"taskstudy/internal/types"
)

// UserRepository provides read access to the users table. The notification
// engine never mutates users; profile edits belong to the account layer.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// userColumns defines the standard set of columns selected for user queries.
// Used consistently across all query methods to avoid column drift.
const userColumns = `u.id, u.name, u.email, u.notification_email, u.phone,
	u.consent_given, u.notify_by_email, u.notify_by_telegram, u.notify_by_whatsapp,
	u.telegram_chat_id, u.created_at, u.updated_at`

// scanUser scans a single user row into a types.User struct. The columns
// must match the order defined in userColumns. Uses nullable scan targets
// for columns that may be NULL in the database (notification_email, phone,
// telegram_chat_id).
func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var (
		notificationEmail *string
		phone             *string
		telegramChatID    *string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&notificationEmail,
		&phone,
		&u.ConsentGiven,
		&u.NotifyByEmail,
		&u.NotifyByTelegram,
		&u.NotifyByWhatsApp,
		&telegramChatID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notificationEmail != nil {
		u.NotificationEmail = *notificationEmail
	}
	if phone != nil {
		u.Phone = *phone
	}
	if telegramChatID != nil {
		u.TelegramChatID = *telegramChatID
	}
	return &u, nil
}

// collectUsers drains rows into a slice of users.
func collectUsers(rows pgx.Rows) ([]types.User, error) {
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindAll returns every user, ordered by creation time for stable batch
// iteration.
func (r *UserRepository) FindAll(ctx context.Context) ([]types.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users u ORDER BY u.created_at ASC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query users", err)
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan users", err)
	}
	return users, nil
}

// FindByID retrieves a user by ID. Returns (nil, nil) when no user exists,
// so callers can treat orphaned references as a skip rather than an error.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user", err)
	}
	return u, nil
}

// FindByEmailOrNotificationEmail returns users whose account email or
// notification email matches the given address, case-insensitively.
func (r *UserRepository) FindByEmailOrNotificationEmail(ctx context.Context, email string) ([]types.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 WHERE LOWER(u.email) = LOWER($1)
		    OR LOWER(COALESCE(u.notification_email, '')) = LOWER($1)
		 ORDER BY u.created_at ASC`,
		email,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query users by email", err)
	}

	users, err := collectUsers(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan users by email", err)
	}
	return users, nil
}
