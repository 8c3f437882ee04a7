package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// hasIncompleteBlocker reports whether id has any direct blocker that is
// not yet completed.
func hasIncompleteBlocker(ctx context.Context, ts storage.TaskStore, id string) (bool, error) {
	blockers, err := ts.GetBlockers(ctx, id)
	if err != nil {
		return false, err
	}
	for _, b := range blockers {
		done, err := ts.IsCompleted(ctx, b)
		if err != nil {
			return false, err
		}
		if !done {
			return true, nil
		}
	}
	return false, nil
}

// effectivelyBlocked reports whether t is effectively blocked: t or any
// ancestor of t has an incomplete blocker edge (spec §4.2 "Readiness and
// blockage" — blockage inherits down the parent tree, invariant 4
// "effective blockage monotonicity").
func effectivelyBlocked(ctx context.Context, ts storage.TaskStore, t *types.Task) (bool, error) {
	blocked, err := hasIncompleteBlocker(ctx, ts, t.ID)
	if err != nil {
		return false, err
	}
	if blocked {
		return true, nil
	}

	chain, err := ancestors(ctx, ts, t)
	if err != nil {
		return false, err
	}
	for _, a := range chain {
		blocked, err := hasIncompleteBlocker(ctx, ts, a.ID)
		if err != nil {
			return false, err
		}
		if blocked {
			return true, nil
		}
	}
	return false, nil
}

// EffectivelyBlocked reports whether id is effectively blocked, evaluated
// against ts. Exported so the workflow service can reuse the same check
// both standalone and inside an open transaction during auto-bubble
// completion (spec §4.3 step 6), without duplicating the ancestor walk.
func EffectivelyBlocked(ctx context.Context, ts storage.TaskStore, id string) (bool, error) {
	t, err := ts.GetTask(ctx, id)
	if err != nil {
		return false, err
	}
	return effectivelyBlocked(ctx, ts, t)
}

// isReady reports whether t is ready: not completed and not effectively
// blocked.
func isReady(ctx context.Context, ts storage.TaskStore, t *types.Task) (bool, error) {
	if t.Completed {
		return false, nil
	}
	blocked, err := effectivelyBlocked(ctx, ts, t)
	if err != nil {
		return false, err
	}
	return !blocked, nil
}

// checkBlockerCycle rejects adding the edge (taskID blocked by blockerID)
// if a DFS from blockerID along outgoing "blocked by" edges reaches
// taskID (spec §3 invariant 3, §4.2 "Blocker cycle prevention").
func checkBlockerCycle(ctx context.Context, ts storage.TaskStore, taskID, blockerID string) error {
	visited := map[string]bool{}
	var visit func(id string) error
	visit = func(id string) error {
		if id == taskID {
			return types.NewError(types.KindBlockerCycle, "adding blocker would close a cycle through "+id, nil)
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		blockers, err := ts.GetBlockers(ctx, id)
		if err != nil {
			return err
		}
		for _, b := range blockers {
			if err := visit(b); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(blockerID)
}

// checkBlockerSanity rejects a candidate blocker that is the task itself,
// an ancestor of it, or a descendant of it (spec §3 invariant 4).
func checkBlockerSanity(ctx context.Context, ts storage.TaskStore, task, blocker *types.Task) error {
	if task.ID == blocker.ID {
		return types.NewError(types.KindInvalidBlocker, "a task cannot block itself", nil)
	}

	chain, err := ancestors(ctx, ts, task)
	if err != nil {
		return err
	}
	for _, a := range chain {
		if a.ID == blocker.ID {
			return types.NewError(types.KindInvalidBlocker, "a task's ancestor cannot also be its blocker", nil)
		}
	}

	blockerChain, err := ancestors(ctx, ts, blocker)
	if err != nil {
		return err
	}
	for _, a := range blockerChain {
		if a.ID == task.ID {
			return types.NewError(types.KindInvalidBlocker, "a task's descendant cannot also be its blocker", nil)
		}
	}
	return nil
}
