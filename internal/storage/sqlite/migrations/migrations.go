// Package migrations holds forward-only, additive schema migrations for
// the sqlite backend. Each bump is a single function applied inside its
// own transaction; migrations never rewrite or drop existing columns, only
// add (spec §4.1 "A schema version counter drives forward-only
// migrations; each bump is an additive script applied inside a
// transaction").
package migrations

import (
	"database/sql"
	"fmt"
)

// Migration is one forward-only step.
type Migration struct {
	Version     int
	Description string
	Apply       func(*sql.Tx) error
}

// All is the ordered list of migrations beyond the baseline schema (version
// 0, created directly by schema.go on first open). Append-only: once a
// migration ships, its Version and Apply body are frozen.
var All = []Migration{
	{
		Version:     1,
		Description: "index commit_sha for VCS-coherence lookups",
		Apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_tasks_commit_sha ON tasks(commit_sha)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index bookmark for start/complete recovery lookups",
		Apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_tasks_bookmark ON tasks(bookmark)`)
			return err
		},
	},
}

// CurrentVersion returns the highest version any registered migration
// advances to.
func CurrentVersion() int {
	v := 0
	for _, m := range All {
		if m.Version > v {
			v = m.Version
		}
	}
	return v
}

// Run applies every migration with Version > from, in order, each inside
// its own transaction, and returns the new schema version.
func Run(db *sql.DB, from int) (int, error) {
	version := from
	for _, m := range All {
		if m.Version <= from {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return version, fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Apply(tx); err != nil {
			_ = tx.Rollback()
			return version, fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`UPDATE schema_meta SET value = ? WHERE key = 'schema_version'`, fmt.Sprintf("%d", m.Version)); err != nil {
			_ = tx.Rollback()
			return version, fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return version, fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
		version = m.Version
	}
	return version, nil
}
