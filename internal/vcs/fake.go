package vcs

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nsyout/overseer/internal/types"
)

// Fake is an in-memory Backend for exercising the workflow service without
// touching disk (spec §9 "keeps the workflow layer testable against an
// in-memory fake without touching on-disk state").
type Fake struct {
	mu sync.Mutex

	dirty     bool
	head      string // commit id the working copy currently sits on
	commitSeq int
	bookmarks map[string]string // name -> commit id
}

// NewFake returns a ready-to-use Fake with an initial empty-working-copy
// commit at HEAD.
func NewFake() *Fake {
	f := &Fake{bookmarks: make(map[string]string)}
	f.head = f.nextCommitID()
	return f
}

func (f *Fake) nextCommitID() string {
	f.commitSeq++
	return fmt.Sprintf("fake%06d", f.commitSeq)
}

// SetDirty lets a test simulate an uncommitted modification in the working
// copy, to exercise the DirtyWorkingCopy guard (spec example 6).
func (f *Fake) SetDirty(dirty bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirty = dirty
}

func (f *Fake) Status(ctx context.Context) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dirty {
		return Status{Dirty: true, Changed: []string{"modified-file"}}, nil
	}
	return Status{}, nil
}

func (f *Fake) Log(ctx context.Context, revset string) ([]Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if revset == "@" || revset == "" {
		return []Commit{{ID: f.head}}, nil
	}
	if id, ok := f.bookmarks[revset]; ok {
		return []Commit{{ID: id}}, nil
	}
	return nil, nil
}

func (f *Fake) Diff(ctx context.Context, revset string) (string, error) {
	return "", nil
}

func (f *Fake) Commit(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return f.head, types.NewError(types.KindNothingToCommit, "working copy has no changes to commit", nil)
	}
	f.head = f.nextCommitID()
	f.dirty = false
	return f.head, nil
}

func (f *Fake) CurrentCommitID(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *Fake) CreateBookmark(ctx context.Context, name, at string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.bookmarks[name]; exists {
		return types.NewError(types.KindBookmarkExists, "bookmark "+name+" already exists", nil)
	}
	target := at
	if target == "" || target == "@" || target == "HEAD" {
		target = f.head
	}
	f.bookmarks[name] = target
	return nil
}

func (f *Fake) DeleteBookmark(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.bookmarks[name]; !exists {
		return types.NewError(types.KindBookmarkNotFound, "bookmark "+name+" not found", nil)
	}
	delete(f.bookmarks, name)
	return nil
}

func (f *Fake) Checkout(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dirty {
		return types.NewError(types.KindDirtyWorkingCopy, "working copy has uncommitted changes", nil)
	}
	id, exists := f.bookmarks[name]
	if !exists {
		return types.NewError(types.KindBookmarkNotFound, "bookmark "+name+" not found", nil)
	}
	f.head = id
	return nil
}

func (f *Fake) ListBookmarks(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.bookmarks))
	for name := range f.bookmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
