// Package config resolves the working copy and database location for a
// single overseer invocation: environment overrides first, an optional
// .overseer/config.yaml second, upward directory detection last (spec §6
// "Environment inputs").
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nsyout/overseer/internal/vcs"
)

const (
	// EnvDBPath and EnvRepoRoot are the documented override variables
	// (spec §6): redirect the database path or working-copy root for
	// testing without touching the current directory.
	EnvDBPath   = "OVERSEER_DB_PATH"
	EnvRepoRoot = "OVERSEER_REPO_ROOT"

	stateDirName = ".overseer"
	dbFileName   = "tasks.db"
)

// Config is the resolved location of a single overseer workspace.
type Config struct {
	RepoRoot string
	VCSKind  vcs.Kind
	DBPath   string
}

// Load resolves a Config starting from startDir: OVERSEER_REPO_ROOT (or
// OVERSEER_DB_PATH) env vars take precedence, then .overseer/config.yaml
// under the detected repo root, then the deterministic default
// <repo_root>/.overseer/tasks.db.
func Load(startDir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("overseer")
	v.AutomaticEnv()

	repoRoot := v.GetString("repo_root")
	var kind vcs.Kind
	if repoRoot == "" {
		root, k, err := vcs.DetectRepoRoot(startDir)
		if err != nil {
			return nil, err
		}
		repoRoot, kind = root, k
	} else if _, k, err := vcs.DetectRepoRoot(repoRoot); err == nil {
		kind = k
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, stateDirName))
	_ = v.ReadInConfig() // the file is optional; absence is not an error

	dbPath := v.GetString("db_path")
	if dbPath == "" {
		dbPath = filepath.Join(repoRoot, stateDirName, dbFileName)
	}

	return &Config{RepoRoot: repoRoot, VCSKind: kind, DBPath: dbPath}, nil
}

// EnsureStateDir creates the directory holding DBPath if it does not
// already exist.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(filepath.Dir(c.DBPath), 0o755)
}
