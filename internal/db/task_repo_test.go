package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskstudy/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- Mock Rows for Query ---

// mockRows implements pgx.Rows for testing Query results. Scan assigns
// row values by destination type; nil row values leave nullable targets
// nil.
type mockRows struct {
	data    [][]any
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func newMockRows(data [][]any) *mockRows {
	return &mockRows{data: data, idx: -1}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = row[i].(string)
		case **string:
			if row[i] == nil {
				*v = nil
			} else {
				s := row[i].(string)
				*v = &s
			}
		case *time.Time:
			*v = row[i].(time.Time)
		case **time.Time:
			if row[i] == nil {
				*v = nil
			} else {
				ts := row[i].(time.Time)
				*v = &ts
			}
		case *int:
			*v = row[i].(int)
		case *bool:
			*v = row[i].(bool)
		case *types.Priority:
			*v = row[i].(types.Priority)
		case *types.TaskStatus:
			*v = row[i].(types.TaskStatus)
		case *types.NotificationType:
			*v = row[i].(types.NotificationType)
		case *types.NotificationPayload:
			if err := v.Scan(row[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// taskRow builds a row matching the taskColumns order.
func taskRow(id, userID, title string, due time.Time, priority types.Priority, status types.TaskStatus, created time.Time, completed any) []any {
	return []any{
		id, userID, title, nil, "Math",
		due, priority, status, created, created, completed,
	}
}

// --- TaskRepository Tests ---

func TestTaskRepository_FindPendingInRange_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTaskRepository(db)

	from := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)

	rows := newMockRows([][]any{
		taskRow("task_1", "user_1", "Algebra homework", due, types.PriorityHigh, types.TaskStatusPending, from, nil),
		taskRow("task_2", "user_1", "History essay", due.Add(24*time.Hour), types.PriorityLow, types.TaskStatusPending, from, nil),
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), []any{"user_1", from, to}).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "t.status = 'pending'")
			assert.Contains(t, sql, "t.due_date < $3",
				"upper bound must be exclusive so a boundary due date lands in one period only")
			assert.NotContains(t, sql, "t.due_date <= $3")
			assert.Contains(t, sql, "ORDER BY t.due_date ASC")
		}).
		Return(rows, nil)

	tasks, err := repo.FindPendingInRange(context.Background(), "user_1", from, to)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "task_1", tasks[0].ID)
	assert.Equal(t, "Algebra homework", tasks[0].Title)
	assert.Equal(t, types.PriorityHigh, tasks[0].Priority)
	assert.Empty(t, tasks[0].Description, "NULL description scans to empty string")
	assert.Nil(t, tasks[0].CompletedAt)

	db.AssertExpectations(t)
}

func TestTaskRepository_FindPendingInRange_QueryError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTaskRepository(db)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err := repo.FindPendingInRange(context.Background(), "user_1", time.Now(), time.Now())
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestTaskRepository_FindDueSoon_WindowBounds(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTaskRepository(db)

	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	wantStart := now.Add(24*time.Hour - 30*time.Minute)
	wantEnd := now.Add(24*time.Hour + 30*time.Minute)

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), []any{wantStart, wantEnd}).
		Return(newMockRows(nil), nil)

	tasks, err := repo.FindDueSoon(context.Background(), now, 24)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	db.AssertExpectations(t)
}

func TestTaskRepository_CountCreatedInRange(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTaskRepository(db)

	row := &mockRow{scanFn: func(dest ...any) error {
		*(dest[0].(*int)) = 4
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(row)

	count, err := repo.CountCreatedInRange(context.Background(), "user_1", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestTaskRepository_FindCompletedInRange_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTaskRepository(db)

	created := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	completedAt := created.Add(20 * time.Hour)

	rows := newMockRows([][]any{
		taskRow("task_1", "user_1", "Algebra homework", created.Add(48*time.Hour),
			types.PriorityMedium, types.TaskStatusCompleted, created, completedAt),
	})

	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "t.status = 'completed'")
			assert.Contains(t, sql, "ORDER BY t.completed_at ASC")
		}).
		Return(rows, nil)

	tasks, err := repo.FindCompletedInRange(context.Background(), "user_1", created, created.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].CompletedAt)
	assert.Equal(t, completedAt, *tasks[0].CompletedAt)
}
