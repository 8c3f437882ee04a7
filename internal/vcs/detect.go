package vcs

import (
	"os"
	"path/filepath"

	"github.com/nsyout/overseer/internal/types"
)

// Kind identifies which control directory a detected working copy uses.
type Kind string

const (
	KindJJ  Kind = "jj"
	KindGit Kind = "git"
)

// DetectRepoRoot walks from start upward looking for a .jj directory, then
// falling back to .git, mirroring beads's walk-up detection of .beads — the
// engine resolves the working copy from the current directory upward
// (spec §6 "Environment inputs").
func DetectRepoRoot(start string) (root string, kind Kind, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", "", types.Errorf(types.KindVCSError, err, "resolve %s", start)
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, ".jj")) {
			return dir, KindJJ, nil
		}
		if isDir(filepath.Join(dir, ".git")) {
			return dir, KindGit, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", types.NewError(types.KindNotARepository, "no .jj or .git directory found above "+abs, nil)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
