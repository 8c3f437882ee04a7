package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nsyout/overseer/internal/types"
)

const taskColumns = `id, parent_id, description, context, result, priority, completed, completed_at, started_at, created_at, updated_at, commit_sha, bookmark, start_commit`

func scanTask(row interface{ Scan(...interface{}) error }) (*types.Task, error) {
	var t types.Task
	var parentID, result, commitSHA, bookmark, startCommit sql.NullString
	var completedAtS, startedAtS sql.NullString
	var createdAtS, updatedAtS string
	var completed int

	err := row.Scan(
		&t.ID, &parentID, &t.Description, &t.Context, &result, &t.Priority, &completed,
		&completedAtS, &startedAtS, &createdAtS, &updatedAtS, &commitSHA, &bookmark, &startCommit,
	)
	if err != nil {
		return nil, err
	}

	t.ParentID = scanNullString(parentID)
	t.Result = scanNullString(result)
	t.CommitSHA = scanNullString(commitSHA)
	t.Bookmark = scanNullString(bookmark)
	t.StartCommit = scanNullString(startCommit)
	t.Completed = completed != 0

	if t.CompletedAt, err = scanNullTime(completedAtS); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	if t.StartedAt, err = scanNullTime(startedAtS); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAtS); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAtS); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &t, nil
}

// CreateTask inserts task as-is. The caller (task service) is responsible
// for id generation and default-value assignment; CreateTask only fills in
// CreatedAt/UpdatedAt if they are zero.
func (s *taskStore) CreateTask(ctx context.Context, task *types.Task) (*types.Task, error) {
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	_, err := s.exec.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID, nullString(task.ParentID), task.Description, task.Context, nullString(task.Result),
		task.Priority, boolToInt(task.Completed), nullTimeToArg(task.CompletedAt), nullTimeToArg(task.StartedAt),
		timeToArg(task.CreatedAt), timeToArg(task.UpdatedAt),
		nullString(task.CommitSHA), nullString(task.Bookmark), nullString(task.StartCommit),
	)
	if err != nil {
		return nil, wrapDBError("create task", err)
	}
	out := *task
	return &out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UpdateTask applies patch to task id and returns the updated row.
// updated_at is always bumped to now.
func (s *taskStore) UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToArg(time.Now())}

	if patch.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, nullString(*patch.ParentID))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Context != nil {
		sets = append(sets, "context = ?")
		args = append(args, *patch.Context)
	}
	if patch.Result != nil {
		sets = append(sets, "result = ?")
		args = append(args, nullString(*patch.Result))
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*patch.Completed))
	}
	if patch.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, nullTimeToArg(*patch.CompletedAt))
	}
	if patch.StartedAt != nil {
		sets = append(sets, "started_at = ?")
		args = append(args, nullTimeToArg(*patch.StartedAt))
	}
	if patch.CommitSHA != nil {
		sets = append(sets, "commit_sha = ?")
		args = append(args, nullString(*patch.CommitSHA))
	}
	if patch.Bookmark != nil {
		sets = append(sets, "bookmark = ?")
		args = append(args, nullString(*patch.Bookmark))
	}
	if patch.StartCommit != nil {
		sets = append(sets, "start_commit = ?")
		args = append(args, nullString(*patch.StartCommit))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("update task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, wrapDBError("update task", err)
	}
	if n == 0 {
		return nil, types.NewError(types.KindTaskNotFound, "task "+id+" not found", nil)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes task id. Cascade delete of descendants, learnings,
// and blocker edges is enforced by ON DELETE CASCADE foreign keys
// (spec §3 invariant 5).
func (s *taskStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.exec.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("delete task", err)
	}
	if n == 0 {
		return types.NewError(types.KindTaskNotFound, "task "+id+" not found", nil)
	}
	return nil
}

func (s *taskStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	row := s.exec.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.KindTaskNotFound, "task "+id+" not found", nil)
	}
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	return t, nil
}

// ListTasks returns tasks matching filter in stable order. Ready filtering
// is NOT applied here — the storage layer has no notion of effective
// blockage; callers that need ready-only results filter the task-service
// way, on top of this (spec §4.1).
func (s *taskStore) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	where := []string{}
	args := []interface{}{}
	if filter.ParentID != nil {
		where = append(where, "parent_id = ?")
		args = append(args, *filter.ParentID)
	}
	if filter.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY priority ASC, created_at ASC, id ASC"

	rows, err := s.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListRoots returns all milestone (parent_id IS NULL) tasks in stable order.
func (s *taskStore) ListRoots(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.exec.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE parent_id IS NULL
		ORDER BY priority ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, wrapDBError("list roots", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// GetChildrenOrdered returns the direct children of id in stable order.
func (s *taskStore) GetChildrenOrdered(ctx context.Context, id string) ([]*types.Task, error) {
	rows, err := s.exec.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE parent_id = ?
		ORDER BY priority ASC, created_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, wrapDBError("get children", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]*types.Task, error) {
	var out []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDBError("scan task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate tasks", err)
	}
	return out, nil
}

// HasPendingChildren reports whether id has any incomplete direct child
// (spec §4.1 "cheap guards").
func (s *taskStore) HasPendingChildren(ctx context.Context, id string) (bool, error) {
	var n int
	row := s.exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE parent_id = ? AND completed = 0`, id)
	if err := row.Scan(&n); err != nil {
		return false, wrapDBError("has pending children", err)
	}
	return n > 0, nil
}

// IsCompleted reports whether id is marked completed.
func (s *taskStore) IsCompleted(ctx context.Context, id string) (bool, error) {
	var completed int
	row := s.exec.QueryRowContext(ctx, `SELECT completed FROM tasks WHERE id = ?`, id)
	if err := row.Scan(&completed); err == sql.ErrNoRows {
		return false, types.NewError(types.KindTaskNotFound, "task "+id+" not found", nil)
	} else if err != nil {
		return false, wrapDBError("is completed", err)
	}
	return completed != 0, nil
}

// Search performs a case-insensitive substring match over description,
// context, and result, returned in stable order (spec §4.2 "Search").
func (s *taskStore) Search(ctx context.Context, query string) ([]*types.Task, error) {
	like := "%" + strings.ToLower(query) + "%"
	rows, err := s.exec.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE LOWER(description) LIKE ?
		   OR LOWER(context) LIKE ?
		   OR LOWER(COALESCE(result, '')) LIKE ?
		ORDER BY priority ASC, created_at ASC, id ASC
	`, like, like, like)
	if err != nil {
		return nil, wrapDBError("search tasks", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}
