package task

import (
	"context"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// buildTree renders t and its descendants into a recursive TreeNode, purely
// a read over GetChildrenOrdered (spec §4.2 "Tree rendering").
func buildTree(ctx context.Context, ts storage.TaskStore, t *types.Task) (*types.TreeNode, error) {
	children, err := ts.GetChildrenOrdered(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	node := &types.TreeNode{Task: t}
	for _, c := range children {
		childNode, err := buildTree(ctx, ts, c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
