package sqlite

// schema is applied once, unconditionally, on every open (CREATE TABLE IF
// NOT EXISTS / CREATE INDEX IF NOT EXISTS are idempotent). Forward-only
// changes to an already-deployed shape go through migrations/ instead —
// see runMigrations in store.go.
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	parent_id    TEXT REFERENCES tasks(id) ON DELETE CASCADE,
	description  TEXT NOT NULL CHECK(length(description) > 0),
	context      TEXT NOT NULL DEFAULT '',
	result       TEXT,
	priority     INTEGER NOT NULL DEFAULT 3 CHECK(priority BETWEEN 1 AND 5),
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at DATETIME,
	started_at   DATETIME,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	commit_sha   TEXT,
	bookmark     TEXT,
	start_commit TEXT,
	CHECK ((completed = 1 AND completed_at IS NOT NULL) OR (completed = 0 AND completed_at IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_tasks_parent_id ON tasks(parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
CREATE INDEX IF NOT EXISTS idx_tasks_order ON tasks(priority, created_at, id);

CREATE TABLE IF NOT EXISTS blockers (
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	blocker_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (task_id, blocker_id)
);

CREATE INDEX IF NOT EXISTS idx_blockers_blocker_id ON blockers(blocker_id);

CREATE TABLE IF NOT EXISTS learnings (
	id             TEXT PRIMARY KEY,
	task_id        TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	content        TEXT NOT NULL,
	source_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (task_id, source_task_id, content)
);

CREATE INDEX IF NOT EXISTS idx_learnings_task_id ON learnings(task_id);

-- Generic key/value table for schema_version and other internal metadata,
-- in the spirit of beads's config/metadata tables.
CREATE TABLE IF NOT EXISTS schema_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_meta (key, value) VALUES ('schema_version', '0');
`
