// Package contract defines the stable JSON shapes the CLI prints (spec §6
// "JSON envelope"): camel-cased task views enriched with depth, blockedBy,
// blocks, and — for get/next_ready — context and learnings, plus the error
// envelope for failures.
package contract

import (
	"context"
	"time"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// Task is the camel-cased JSON view of types.Task plus the derived fields
// every task carries in the contract (spec §6).
type Task struct {
	ID          string       `json:"id"`
	ParentID    *string      `json:"parentId,omitempty"`
	Description string       `json:"description"`
	Context     string       `json:"context"`
	Result      *string      `json:"result,omitempty"`
	Priority    int          `json:"priority"`
	Status      types.Status `json:"status"`
	Completed   bool         `json:"completed"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	CommitSHA   *string      `json:"commitSha,omitempty"`
	Bookmark    *string      `json:"bookmark,omitempty"`
	StartCommit *string      `json:"startCommit,omitempty"`
	Depth       int          `json:"depth"`
	BlockedBy   []string     `json:"blockedBy"`
	Blocks      []string     `json:"blocks"`
}

// Learning is the camel-cased JSON view of types.Learning.
type Learning struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	Content      string    `json:"content"`
	SourceTaskID string    `json:"sourceTaskId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Context is the camel-cased JSON view of types.Context.
type Context struct {
	Own       string  `json:"own"`
	Parent    *string `json:"parent,omitempty"`
	Milestone *string `json:"milestone,omitempty"`
}

// LearningContext is the camel-cased JSON view of types.LearningContext.
type LearningContext struct {
	Parent    []Learning `json:"parent,omitempty"`
	Milestone []Learning `json:"milestone,omitempty"`
}

// TaskWithContext is the flattened get/next_ready result: every Task field
// plus context and learnings as sibling keys (spec §6 "Example response for
// next_ready: either null or the TaskWithContext object").
type TaskWithContext struct {
	Task
	Context   Context         `json:"context"`
	Learnings LearningContext `json:"learnings"`
}

// Progress is the camel-cased JSON view of types.Progress.
type Progress struct {
	All        int `json:"all"`
	Completed  int `json:"completed"`
	Incomplete int `json:"incomplete"`
	Blocked    int `json:"blocked"`
	Ready      int `json:"ready"`
}

// TreeNode is the camel-cased, recursive JSON view of types.TreeNode.
type TreeNode struct {
	Task     Task       `json:"task"`
	Children []TreeNode `json:"children,omitempty"`
}

// FromTask converts t into its JSON view, looking up depth and blocker
// edges against ts.
func FromTask(ctx context.Context, ts storage.TaskStore, t *types.Task) (*Task, error) {
	blockedBy, err := ts.GetBlockers(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := ts.GetBlocking(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	depth, err := taskDepth(ctx, ts, t)
	if err != nil {
		return nil, err
	}
	return &Task{
		ID:          t.ID,
		ParentID:    t.ParentID,
		Description: t.Description,
		Context:     t.Context,
		Result:      t.Result,
		Priority:    t.Priority,
		Status:      types.TaskStatus(t),
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		StartedAt:   t.StartedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CommitSHA:   t.CommitSHA,
		Bookmark:    t.Bookmark,
		StartCommit: t.StartCommit,
		Depth:       depth,
		BlockedBy:   orEmpty(blockedBy),
		Blocks:      orEmpty(blocks),
	}, nil
}

// taskDepth walks t's parent chain to its root, without depending on the
// task package (which would make a cross-import cycle with its own
// dependency on storage); this mirrors internal/task/depth.go's ancestors
// walk exactly.
func taskDepth(ctx context.Context, ts storage.TaskStore, t *types.Task) (int, error) {
	depth := 0
	cur := t
	for cur.ParentID != nil {
		parent, err := ts.GetTask(ctx, *cur.ParentID)
		if err != nil {
			return 0, err
		}
		depth++
		cur = parent
	}
	return depth, nil
}

// FromTaskWithContext converts an enriched types.TaskWithContext into its
// JSON view.
func FromTaskWithContext(ctx context.Context, ts storage.TaskStore, tc *types.TaskWithContext) (*TaskWithContext, error) {
	task, err := FromTask(ctx, ts, tc.Task)
	if err != nil {
		return nil, err
	}
	return &TaskWithContext{
		Task: *task,
		Context: Context{
			Own:       tc.Context.Own,
			Parent:    tc.Context.Parent,
			Milestone: tc.Context.Milestone,
		},
		Learnings: LearningContext{
			Parent:    fromLearnings(tc.Learnings.Parent),
			Milestone: fromLearnings(tc.Learnings.Milestone),
		},
	}, nil
}

// FromProgress converts types.Progress into its JSON view.
func FromProgress(p *types.Progress) Progress {
	return Progress{All: p.All, Completed: p.Completed, Incomplete: p.Incomplete, Blocked: p.Blocked, Ready: p.Ready}
}

// FromTree converts a types.TreeNode into its JSON view.
func FromTree(ctx context.Context, ts storage.TaskStore, n *types.TreeNode) (*TreeNode, error) {
	task, err := FromTask(ctx, ts, n.Task)
	if err != nil {
		return nil, err
	}
	out := &TreeNode{Task: *task}
	for _, c := range n.Children {
		childNode, err := FromTree(ctx, ts, c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, *childNode)
	}
	return out, nil
}

func fromLearnings(ls []*types.Learning) []Learning {
	if len(ls) == 0 {
		return nil
	}
	out := make([]Learning, 0, len(ls))
	for _, l := range ls {
		out = append(out, Learning{ID: l.ID, TaskID: l.TaskID, Content: l.Content, SourceTaskID: l.SourceTaskID, CreatedAt: l.CreatedAt})
	}
	return out
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
