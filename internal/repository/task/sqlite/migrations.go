package sqlite

type migration struct {
	version int
	sql     string
}

// миграции применяются по порядку, номер версии только растёт;
// версию в schema_version записывает сам раннер
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	next_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	position     INTEGER NOT NULL,
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	priority     TEXT NOT NULL,
	status       TEXT NOT NULL,
	due_date     TEXT,
	created_at   TEXT NOT NULL,
	completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
`,
	},
}
