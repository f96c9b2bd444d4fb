package db

import (
	"context"
	"time"

	"taskstudy/internal/types"
)

// NotificationRepository provides data access for the notification_log
// table. Rows are append-only: the engine inserts one row per completed
// send and the dedup queries rely on their presence to keep scheduled jobs
// idempotent per period.
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new NotificationRepository backed by
// the given database connection (pool or transaction).
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification log entry. The caller must set the ID
// and all required fields; CreatedAt falls back to NOW() when zero.
func (r *NotificationRepository) Create(ctx context.Context, entry *types.NotificationLogEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notification_log
		 (id, user_id, type, title, message, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		entry.ID,
		entry.UserID,
		string(entry.Type),
		entry.Title,
		entry.Message,
		entry.Payload,
		nilIfZeroTime(entry.CreatedAt),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create notification log entry", err)
	}
	return nil
}

// ExistsSince reports whether the user already has an entry of one of the
// given types created at or after the cutoff.
func (r *NotificationRepository) ExistsSince(ctx context.Context, userID string, kinds []types.NotificationType, since time.Time) (bool, error) {
	typeNames := make([]string, len(kinds))
	for i, kind := range kinds {
		typeNames[i] = string(kind)
	}

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM notification_log
		   WHERE user_id = $1 AND type = ANY($2) AND created_at >= $3
		 )`,
		userID, typeNames, since,
	).Scan(&exists)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check notification log", err)
	}
	return exists, nil
}

// ExistsUrgentSince reports whether an urgent alert for the given task and
// threshold was recorded at or after the cutoff. The task and threshold
// live inside the JSONB payload.
func (r *NotificationRepository) ExistsUrgentSince(ctx context.Context, taskID string, thresholdHours int, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM notification_log
		   WHERE type = $1
		     AND payload->>'task_id' = $2
		     AND (payload->>'threshold_hours')::int = $3
		     AND created_at >= $4
		 )`,
		string(types.NotificationUrgentAlert), taskID, thresholdHours, since,
	).Scan(&exists)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check urgent alerts", err)
	}
	return exists, nil
}

// ListRecent returns the user's most recent log entries, newest first,
// capped at limit.
func (r *NotificationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]types.NotificationLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, type, title, message, payload, created_at
		 FROM notification_log
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query notification log", err)
	}
	defer rows.Close()

	var entries []types.NotificationLogEntry
	for rows.Next() {
		var entry types.NotificationLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Type,
			&entry.Title,
			&entry.Message,
			&entry.Payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan notification log entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read notification log", err)
	}
	return entries, nil
}

// nilIfZeroTime converts the zero time to nil so COALESCE picks NOW().
func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
