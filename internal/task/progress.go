package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// progress walks root's subtree (or every root, if root is nil) and
// aggregates totals in a single traversal (spec §4.2 "Progress
// aggregation").
func progress(ctx context.Context, ts storage.TaskStore, root *types.Task) (*types.Progress, error) {
	p := &types.Progress{}

	var roots []*types.Task
	if root != nil {
		roots = []*types.Task{root}
	} else {
		rs, err := ts.ListRoots(ctx)
		if err != nil {
			return nil, err
		}
		roots = rs
	}

	var walk func(t *types.Task) error
	walk = func(t *types.Task) error {
		p.All++
		if t.Completed {
			p.Completed++
		} else {
			p.Incomplete++
		}
		blocked, err := effectivelyBlocked(ctx, ts, t)
		if err != nil {
			return err
		}
		if blocked {
			p.Blocked++
		}
		if !t.Completed && !blocked {
			p.Ready++
		}

		children, err := ts.GetChildrenOrdered(ctx, t.ID)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return nil, err
		}
	}
	return p, nil
}
