package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nsyout/overseer/internal/types"
)

// AddLearning records content against taskID, attributed to sourceTaskID
// (the task whose completion produced it — itself for a direct learning,
// a descendant's id when bubbled up the parent chain). The unique index on
// (task_id, source_task_id, content) makes bubbling idempotent: re-running
// the same bubble step never duplicates a learning (spec §4.3).
func (s *taskStore) AddLearning(ctx context.Context, taskID, content, sourceTaskID string) (*types.Learning, error) {
	id := types.NewLearningID()
	now := time.Now()
	_, err := s.exec.ExecContext(ctx, `
		INSERT INTO learnings (id, task_id, content, source_task_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (task_id, source_task_id, content) DO NOTHING
	`, id, taskID, content, sourceTaskID, timeToArg(now))
	if err != nil {
		return nil, wrapDBError("add learning", err)
	}

	row := s.exec.QueryRowContext(ctx, `
		SELECT id, task_id, content, source_task_id, created_at
		FROM learnings WHERE task_id = ? AND source_task_id = ? AND content = ?
	`, taskID, sourceTaskID, content)
	return scanLearning(row)
}

// ImportLearning inserts l with its caller-supplied ID and CreatedAt
// intact, falling back to now only if CreatedAt is zero. The same
// (task_id, source_task_id, content) unique index applies, so replaying an
// export twice is a no-op rather than a duplicate row.
func (s *taskStore) ImportLearning(ctx context.Context, l *types.Learning) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := s.exec.ExecContext(ctx, `
		INSERT INTO learnings (id, task_id, content, source_task_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (task_id, source_task_id, content) DO NOTHING
	`, l.ID, l.TaskID, l.Content, l.SourceTaskID, timeToArg(l.CreatedAt))
	if err != nil {
		return wrapDBError("import learning", err)
	}
	return nil
}

// ListLearnings returns every learning attached to taskID, oldest first.
func (s *taskStore) ListLearnings(ctx context.Context, taskID string) ([]*types.Learning, error) {
	rows, err := s.exec.QueryContext(ctx, `
		SELECT id, task_id, content, source_task_id, created_at
		FROM learnings WHERE task_id = ? ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("list learnings", err)
	}
	defer rows.Close()

	var out []*types.Learning
	for rows.Next() {
		l, err := scanLearning(rows)
		if err != nil {
			return nil, wrapDBError("scan learning", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate learnings", err)
	}
	return out, nil
}

// DeleteLearning removes a single learning by id.
func (s *taskStore) DeleteLearning(ctx context.Context, id string) error {
	res, err := s.exec.ExecContext(ctx, `DELETE FROM learnings WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete learning", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("delete learning", err)
	}
	if n == 0 {
		return types.NewError(types.KindLearningNotFound, "learning "+id+" not found", nil)
	}
	return nil
}

func scanLearning(row interface{ Scan(...interface{}) error }) (*types.Learning, error) {
	var l types.Learning
	var createdAtS string
	if err := row.Scan(&l.ID, &l.TaskID, &l.Content, &l.SourceTaskID, &createdAtS); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewError(types.KindLearningNotFound, "learning not found", nil)
		}
		return nil, err
	}
	t, err := parseTime(createdAtS)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = t
	return &l, nil
}
