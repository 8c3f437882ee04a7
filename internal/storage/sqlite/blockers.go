package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nsyout/overseer/internal/types"
)

// AddBlocker records that task is blocked by blocker. The relation is
// idempotent: adding an existing edge is a no-op, not an error.
func (s *taskStore) AddBlocker(ctx context.Context, taskID, blockerID string) error {
	_, err := s.exec.ExecContext(ctx, `
		INSERT INTO blockers (task_id, blocker_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (task_id, blocker_id) DO NOTHING
	`, taskID, blockerID, timeToArg(time.Now()))
	if err != nil {
		if isConstraintViolation(err) {
			return types.NewError(types.KindInvalidBlocker, "invalid blocker relation between "+taskID+" and "+blockerID, err)
		}
		return wrapDBError("add blocker", err)
	}
	return nil
}

// RemoveBlocker deletes the taskID-blocked-by-blockerID edge if present.
func (s *taskStore) RemoveBlocker(ctx context.Context, taskID, blockerID string) error {
	_, err := s.exec.ExecContext(ctx, `
		DELETE FROM blockers WHERE task_id = ? AND blocker_id = ?
	`, taskID, blockerID)
	if err != nil {
		return wrapDBError("remove blocker", err)
	}
	return nil
}

// GetBlockers returns the ids of tasks that directly block taskID.
func (s *taskStore) GetBlockers(ctx context.Context, taskID string) ([]string, error) {
	rows, err := s.exec.QueryContext(ctx, `
		SELECT blocker_id FROM blockers WHERE task_id = ? ORDER BY blocker_id ASC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("get blockers", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// GetBlocking returns the ids of tasks that blockerID directly blocks.
func (s *taskStore) GetBlocking(ctx context.Context, blockerID string) ([]string, error) {
	rows, err := s.exec.QueryContext(ctx, `
		SELECT task_id FROM blockers WHERE blocker_id = ? ORDER BY task_id ASC
	`, blockerID)
	if err != nil {
		return nil, wrapDBError("get blocking", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate ids", err)
	}
	return out, nil
}
