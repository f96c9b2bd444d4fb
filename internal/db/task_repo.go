package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"taskstudy/internal/types"
)

// TaskRepository provides read access to the tasks table. The notification
// engine never mutates tasks; writes belong to the task CRUD layer.
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a new TaskRepository backed by the given
// database connection (pool or transaction).
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// taskColumns defines the standard set of columns selected for task queries.
// Used consistently across all query methods to avoid column drift.
const taskColumns = `t.id, t.user_id, t.title, t.description, t.subject,
	t.due_date, t.priority, t.status, t.created_at, t.updated_at, t.completed_at`

// scanTask scans a single task row into a types.Task struct. The columns
// must match the order defined in taskColumns.
func scanTask(row pgx.Row) (*types.Task, error) {
	var t types.Task
	var description *string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&description,
		&t.Subject,
		&t.DueDate,
		&t.Priority,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		t.Description = *description
	}
	return &t, nil
}

// collectTasks drains rows into a slice of tasks.
func collectTasks(rows pgx.Rows) ([]types.Task, error) {
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindPendingInRange returns the user's pending tasks whose due date falls
// inside [from, to), ordered by due date ascending with priority as the
// tiebreaker (high before medium before low). The exclusive upper bound
// keeps a task due exactly at a period boundary out of two adjacent
// report periods.
func (r *TaskRepository) FindPendingInRange(ctx context.Context, userID string, from, to time.Time) ([]types.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 WHERE t.user_id = $1
		   AND t.status = 'pending'
		   AND t.due_date >= $2
		   AND t.due_date < $3
		 ORDER BY t.due_date ASC,
		   CASE t.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query pending tasks", err)
	}

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan pending tasks", err)
	}
	return tasks, nil
}

// FindDueSoon returns pending tasks (across all users) whose due date falls
// within thirty minutes either side of now + thresholdHours.
func (r *TaskRepository) FindDueSoon(ctx context.Context, now time.Time, thresholdHours int) ([]types.Task, error) {
	target := now.Add(time.Duration(thresholdHours) * time.Hour)
	windowStart := target.Add(-30 * time.Minute)
	windowEnd := target.Add(30 * time.Minute)

	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 WHERE t.status = 'pending'
		   AND t.due_date >= $1
		   AND t.due_date <= $2
		 ORDER BY t.due_date ASC`,
		windowStart, windowEnd,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query due-soon tasks", err)
	}

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan due-soon tasks", err)
	}
	return tasks, nil
}

// CountCreatedInRange counts the user's tasks created in [from, to).
func (r *TaskRepository) CountCreatedInRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks t
		 WHERE t.user_id = $1 AND t.created_at >= $2 AND t.created_at < $3`,
		userID, from, to,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count created tasks", err)
	}
	return count, nil
}

// FindCompletedInRange returns the user's tasks completed in [from, to),
// ordered by completion time ascending.
func (r *TaskRepository) FindCompletedInRange(ctx context.Context, userID string, from, to time.Time) ([]types.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 WHERE t.user_id = $1
		   AND t.status = 'completed'
		   AND t.completed_at >= $2
		   AND t.completed_at < $3
		 ORDER BY t.completed_at ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query completed tasks", err)
	}

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan completed tasks", err)
	}
	return tasks, nil
}
