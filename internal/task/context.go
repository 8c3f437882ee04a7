package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// assemble builds the enriched TaskWithContext envelope returned by Get and
// NextReady (spec §4.2 "Context and learning assembly").
func assemble(ctx context.Context, ts storage.TaskStore, t *types.Task) (*types.TaskWithContext, error) {
	chain, err := ancestors(ctx, ts, t)
	if err != nil {
		return nil, err
	}
	d := len(chain)

	blockedBy, err := ts.GetBlockers(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := ts.GetBlocking(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	out := &types.TaskWithContext{
		Task:      t,
		Depth:     d,
		BlockedBy: blockedBy,
		Blocks:    blocks,
		Context:   types.Context{Own: t.Context},
	}

	if d >= 1 {
		parent := chain[0]
		parentCtx := parent.Context
		out.Context.Parent = &parentCtx
		learnings, err := ts.ListLearnings(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		out.Learnings.Parent = learnings
	}
	if d >= 2 {
		root := chain[len(chain)-1]
		rootCtx := root.Context
		out.Context.Milestone = &rootCtx
		learnings, err := ts.ListLearnings(ctx, root.ID)
		if err != nil {
			return nil, err
		}
		out.Learnings.Milestone = learnings
	}

	return out, nil
}
