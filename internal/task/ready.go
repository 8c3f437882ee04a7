package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// nextReadyFromNode implements the DFS of spec §4.2 "next_ready": a node
// already known not to be effectively blocked is either returned directly
// (childless, or every child done) or the search descends into each
// incomplete child in stable order until one yields a result.
func nextReadyFromNode(ctx context.Context, ts storage.TaskStore, n *types.Task) (*types.Task, error) {
	blocked, err := hasIncompleteBlocker(ctx, ts, n.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, nil
	}

	children, err := ts.GetChildrenOrdered(ctx, n.ID)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 {
		if !n.Completed {
			return n, nil
		}
		return nil, nil
	}

	allCompleted := true
	for _, c := range children {
		if !c.Completed {
			allCompleted = false
			break
		}
	}
	if allCompleted {
		if !n.Completed {
			return n, nil
		}
		return nil, nil
	}

	for _, c := range children {
		if c.Completed {
			continue
		}
		found, err := nextReadyFromNode(ctx, ts, c)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

// collectIncompleteLeaves walks root's subtree in stable order, returning
// every incomplete task with no children.
func collectIncompleteLeaves(ctx context.Context, ts storage.TaskStore, root *types.Task) ([]*types.Task, error) {
	children, err := ts.GetChildrenOrdered(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		if !root.Completed {
			return []*types.Task{root}, nil
		}
		return nil, nil
	}

	var leaves []*types.Task
	for _, c := range children {
		childLeaves, err := collectIncompleteLeaves(ctx, ts, c)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, childLeaves...)
	}
	return leaves, nil
}

// pathToRoot returns [leaf, parent, ..., root] inclusive.
func pathToRoot(ctx context.Context, ts storage.TaskStore, leaf *types.Task, rootID string) ([]*types.Task, error) {
	path := []*types.Task{leaf}
	cur := leaf
	for cur.ID != rootID {
		if cur.ParentID == nil {
			return path, nil
		}
		parent, err := ts.GetTask(ctx, *cur.ParentID)
		if err != nil {
			return nil, err
		}
		path = append(path, parent)
		cur = parent
	}
	return path, nil
}

// resolveStartTarget implements spec §4.2 "resolve_start_target": find a
// concrete startable task id reachable from rootID, recursing into
// blockers when rootID's leaves are all transitively blocked.
func resolveStartTarget(ctx context.Context, ts storage.TaskStore, rootID string, visited map[string]bool) (string, error) {
	if visited[rootID] {
		return "", types.NewError(types.KindBlockerCycle, "blocker chain from "+rootID+" closes a cycle", nil)
	}
	visited[rootID] = true
	// visited holds only the current recursion path, so a blocker reached
	// again through a different branch (a diamond) is not taken for a cycle.
	defer delete(visited, rootID)

	root, err := ts.GetTask(ctx, rootID)
	if err != nil {
		return "", err
	}

	leaves, err := collectIncompleteLeaves(ctx, ts, root)
	if err != nil {
		return "", err
	}

	for _, leaf := range leaves {
		path, err := pathToRoot(ctx, ts, leaf, root.ID)
		if err != nil {
			return "", err
		}

		var blockedNode *types.Task
		for _, node := range path {
			blocked, err := hasIncompleteBlocker(ctx, ts, node.ID)
			if err != nil {
				return "", err
			}
			if blocked {
				blockedNode = node
				break
			}
		}
		if blockedNode == nil {
			return leaf.ID, nil
		}

		blockerIDs, err := ts.GetBlockers(ctx, blockedNode.ID)
		if err != nil {
			return "", err
		}
		var incomplete []*types.Task
		for _, bID := range blockerIDs {
			done, err := ts.IsCompleted(ctx, bID)
			if err != nil {
				return "", err
			}
			if done {
				continue
			}
			b, err := ts.GetTask(ctx, bID)
			if err != nil {
				return "", err
			}
			incomplete = append(incomplete, b)
		}
		types.SortStable(incomplete)

		for _, b := range incomplete {
			target, err := resolveStartTarget(ctx, ts, b.ID, visited)
			if err != nil {
				if types.IsKind(err, types.KindBlockerCycle) {
					return "", err
				}
				continue
			}
			return target, nil
		}
	}

	return "", types.NewError(types.KindNoStartableTask, "no startable task reachable from "+rootID, nil)
}
