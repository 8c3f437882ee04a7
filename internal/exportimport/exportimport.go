// Package exportimport implements the full-graph JSONL snapshot named in
// spec §6's command surface table (SPEC_FULL.md section C): one JSON object
// per line, tasks before learnings before blocker edges, parent rows before
// their children. Import replays the same stream inside a single storage
// transaction, all-or-nothing, in the manner of
// tysonthomas9-beads/internal/importer/importer.go's ImportIssues.
package exportimport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// RecordKind discriminates one line of the export stream.
type RecordKind string

const (
	KindTask     RecordKind = "task"
	KindLearning RecordKind = "learning"
	KindBlocker  RecordKind = "blocker"
)

// Record is one JSONL line. Exactly one of Task, Learning, or Blocker is
// set, selected by Kind.
type Record struct {
	Kind     RecordKind      `json:"kind"`
	Task     *types.Task     `json:"task,omitempty"`
	Learning *types.Learning `json:"learning,omitempty"`
	Blocker  *BlockerEdge    `json:"blocker,omitempty"`
}

// BlockerEdge is one "taskID is blocked by blockerID" row (spec §3, the
// blocked_by relation).
type BlockerEdge struct {
	TaskID    string `json:"taskId"`
	BlockerID string `json:"blockerId"`
}

// Result summarizes a completed import.
type Result struct {
	TasksImported     int `json:"tasksImported"`
	LearningsImported int `json:"learningsImported"`
	BlockersImported  int `json:"blockersImported"`
}

// Export writes every task (parent before children, stable order), then
// every learning, then every blocker edge in ts as JSONL to w.
func Export(ctx context.Context, ts storage.TaskStore, w io.Writer) error {
	enc := json.NewEncoder(w)

	tasks, err := collectTasksTopological(ctx, ts)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := enc.Encode(Record{Kind: KindTask, Task: t}); err != nil {
			return types.Errorf(types.KindStoreError, err, "encode task %s", t.ID)
		}
	}

	for _, t := range tasks {
		learnings, err := ts.ListLearnings(ctx, t.ID)
		if err != nil {
			return err
		}
		for _, l := range learnings {
			if err := enc.Encode(Record{Kind: KindLearning, Learning: l}); err != nil {
				return types.Errorf(types.KindStoreError, err, "encode learning %s", l.ID)
			}
		}
	}

	for _, t := range tasks {
		blockers, err := ts.GetBlockers(ctx, t.ID)
		if err != nil {
			return err
		}
		for _, blockerID := range blockers {
			edge := BlockerEdge{TaskID: t.ID, BlockerID: blockerID}
			if err := enc.Encode(Record{Kind: KindBlocker, Blocker: &edge}); err != nil {
				return types.Errorf(types.KindStoreError, err, "encode blocker edge %s<-%s", t.ID, blockerID)
			}
		}
	}
	return nil
}

// collectTasksTopological returns every task in the store with each parent
// preceding its children, via a pre-order walk from the roots in their
// stable ListRoots/GetChildrenOrdered order (spec §3 invariant 8).
func collectTasksTopological(ctx context.Context, ts storage.TaskStore) ([]*types.Task, error) {
	roots, err := ts.ListRoots(ctx)
	if err != nil {
		return nil, err
	}
	var out []*types.Task
	var walk func(t *types.Task) error
	walk = func(t *types.Task) error {
		out = append(out, t)
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
	return out, nil
}

// Import replays src's JSONL stream into store inside one transaction: a
// task record whose parent_id has not yet appeared in the stream aborts the
// whole import with a StoreError (SPEC_FULL.md section C). Learnings use
// ImportLearning so ids and created_at survive the round trip; task rows
// already do since CreateTask only defaults zero-valued timestamps.
func Import(ctx context.Context, store storage.Storage, src io.Reader) (*Result, error) {
	var result Result
	err := store.RunInTransaction(ctx, func(tx storage.TaskStore) error {
		seenTasks := make(map[string]bool)

		scanner := bufio.NewScanner(src)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var rec Record
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return types.Errorf(types.KindStoreError, err, "parse export record")
			}

			switch rec.Kind {
			case KindTask:
				t := rec.Task
				if t == nil {
					return types.NewError(types.KindStoreError, "task record missing its task payload", nil)
				}
				if t.ParentID != nil && !seenTasks[*t.ParentID] {
					return types.Errorf(types.KindStoreError, nil,
						"task %s references parent %s before it appears in the export stream", t.ID, *t.ParentID)
				}
				if _, err := tx.CreateTask(ctx, t); err != nil {
					return err
				}
				seenTasks[t.ID] = true
				result.TasksImported++

			case KindLearning:
				l := rec.Learning
				if l == nil {
					return types.NewError(types.KindStoreError, "learning record missing its learning payload", nil)
				}
				if !seenTasks[l.TaskID] {
					return types.Errorf(types.KindStoreError, nil,
						"learning %s references task %s before it appears in the export stream", l.ID, l.TaskID)
				}
				if err := tx.ImportLearning(ctx, l); err != nil {
					return err
				}
				result.LearningsImported++

			case KindBlocker:
				b := rec.Blocker
				if b == nil {
					return types.NewError(types.KindStoreError, "blocker record missing its edge payload", nil)
				}
				if !seenTasks[b.TaskID] || !seenTasks[b.BlockerID] {
					return types.Errorf(types.KindStoreError, nil,
						"blocker edge %s<-%s references a task not yet seen in the export stream", b.TaskID, b.BlockerID)
				}
				if err := tx.AddBlocker(ctx, b.TaskID, b.BlockerID); err != nil {
					return err
				}
				result.BlockersImported++

			default:
				return types.Errorf(types.KindStoreError, nil, "unknown export record kind %q", rec.Kind)
			}
		}
		if err := scanner.Err(); err != nil {
			return types.Errorf(types.KindStoreError, err, "read export stream")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
