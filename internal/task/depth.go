package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// ancestors returns the chain from t's immediate parent up to the root,
// nearest-first. An empty slice means t is already a root.
func ancestors(ctx context.Context, ts storage.TaskStore, t *types.Task) ([]*types.Task, error) {
	var chain []*types.Task
	cur := t
	for cur.ParentID != nil {
		parent, err := ts.GetTask(ctx, *cur.ParentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}

// depth returns t's distance from its root (0 for a milestone).
func depth(ctx context.Context, ts storage.TaskStore, t *types.Task) (int, error) {
	chain, err := ancestors(ctx, ts, t)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// checkParentCycle walks the chain starting at candidateParentID, rejecting
// if taskID is encountered (spec §3 invariant 2, §4.2 "Parent-chain
// checks"). The depth bound alone must not be relied on to detect this.
func checkParentCycle(ctx context.Context, ts storage.TaskStore, taskID, candidateParentID string) error {
	cur := candidateParentID
	for {
		if cur == taskID {
			return types.NewError(types.KindParentCycle, "setting parent would make "+taskID+" its own ancestor", nil)
		}
		node, err := ts.GetTask(ctx, cur)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		cur = *node.ParentID
	}
}
