package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/nsyout/overseer/internal/types"
)

// runner abstracts process execution so jj.go's command construction can be
// unit tested without shelling out to a real jj binary, the same seam
// Mschirtzinger-jj-beads's JJExecutor interface provides around os/exec.
type runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "jj", args...)
	cmd.Dir = dir
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.String(), errBuf.String(), err
}

// JJ implements Backend by shelling out to the jj binary, the same
// architecture as Mschirtzinger-jj-beads's internal/orchestrator package:
// revset queries via `jj log -r <revset> --no-graph -T <template>`.
type JJ struct {
	repoRoot string
	run      runner
}

// NewJJ returns a jj-backed Backend rooted at repoRoot.
func NewJJ(repoRoot string) *JJ {
	return &JJ{repoRoot: repoRoot, run: execRunner{}}
}

const logTemplate = `commit_id ++ "\x1f" ++ description ++ "\x1e"`

func (j *JJ) Status(ctx context.Context) (Status, error) {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "status", "--no-pager")
	if err != nil {
		return Status{}, j.wrap("status", out, errOut, err)
	}
	if strings.Contains(out, "The working copy has no changes.") {
		return Status{Dirty: false}, nil
	}
	var changed []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Working copy") || strings.HasPrefix(line, "Parent commit") {
			continue
		}
		changed = append(changed, line)
	}
	return Status{Dirty: len(changed) > 0, Changed: changed}, nil
}

func (j *JJ) Log(ctx context.Context, revset string) ([]Commit, error) {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "log", "-r", revset, "--no-graph", "-T", logTemplate)
	if err != nil {
		return nil, j.wrap("log", out, errOut, err)
	}
	var commits []Commit
	for _, entry := range strings.Split(out, "\x1e") {
		entry = strings.Trim(entry, "\n")
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "\x1f", 2)
		c := Commit{ID: parts[0]}
		if len(parts) > 1 {
			c.Description = parts[1]
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func (j *JJ) Diff(ctx context.Context, revset string) (string, error) {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "diff", "-r", revset)
	if err != nil {
		return "", j.wrap("diff", out, errOut, err)
	}
	return out, nil
}

// Commit finalizes the current working-copy change with message. jj's
// every-edit-is-a-commit model means an empty working copy is not an
// error condition elsewhere in the CLI, but overseer still surfaces it as
// NothingToCommit so the workflow layer's idempotent-success rule
// (spec §4.3 "commit treats nothing to commit as success") has something
// to match against.
func (j *JJ) Commit(ctx context.Context, message string) (string, error) {
	status, err := j.Status(ctx)
	if err != nil {
		return "", err
	}
	if !status.Dirty {
		id, idErr := j.CurrentCommitID(ctx)
		if idErr != nil {
			return "", idErr
		}
		return id, types.NewError(types.KindNothingToCommit, "working copy has no changes to commit", nil)
	}

	out, errOut, err := j.run.Run(ctx, j.repoRoot, "commit", "-m", message)
	if err != nil {
		return "", j.wrap("commit", out, errOut, err)
	}
	return j.CurrentCommitID(ctx)
}

func (j *JJ) CurrentCommitID(ctx context.Context) (string, error) {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "log", "-r", "@", "--no-graph", "-T", "commit_id")
	if err != nil {
		return "", j.wrap("current commit id", out, errOut, err)
	}
	return strings.TrimSpace(out), nil
}

func (j *JJ) CreateBookmark(ctx context.Context, name, at string) error {
	args := []string{"bookmark", "create", name}
	if at != "" {
		args = append(args, "-r", at)
	}
	out, errOut, err := j.run.Run(ctx, j.repoRoot, args...)
	if err != nil {
		combined := out + errOut
		if strings.Contains(combined, "already exists") {
			return types.NewError(types.KindBookmarkExists, "bookmark "+name+" already exists", err)
		}
		return j.wrap("create bookmark", out, errOut, err)
	}
	return nil
}

func (j *JJ) DeleteBookmark(ctx context.Context, name string) error {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "bookmark", "delete", name)
	if err != nil {
		combined := out + errOut
		if strings.Contains(combined, "doesn't exist") || strings.Contains(combined, "not found") {
			return types.NewError(types.KindBookmarkNotFound, "bookmark "+name+" not found", err)
		}
		return j.wrap("delete bookmark", out, errOut, err)
	}
	return nil
}

// Checkout switches the working copy onto the commit named by name. A
// dirty working copy aborts unchanged (spec §4.3 step 4 "if this fails
// with DirtyWorkingCopy, surface the error unchanged").
func (j *JJ) Checkout(ctx context.Context, name string) error {
	status, err := j.Status(ctx)
	if err != nil {
		return err
	}
	if status.Dirty {
		return types.NewError(types.KindDirtyWorkingCopy, "working copy has uncommitted changes", nil)
	}
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "edit", name)
	if err != nil {
		return j.wrap("checkout", out, errOut, err)
	}
	return nil
}

func (j *JJ) ListBookmarks(ctx context.Context) ([]string, error) {
	out, errOut, err := j.run.Run(ctx, j.repoRoot, "bookmark", "list", "-T", `name ++ "\n"`)
	if err != nil {
		return nil, j.wrap("list bookmarks", out, errOut, err)
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (j *JJ) wrap(op, stdout, stderr string, err error) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	return types.Errorf(types.KindVCSError, err, "jj %s: %s", op, msg)
}
