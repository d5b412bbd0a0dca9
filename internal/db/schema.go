package db

const schema = `
CREATE TABLE IF NOT EXISTS debates (
	id          TEXT PRIMARY KEY,
	topic       TEXT NOT NULL,
	mode        TEXT NOT NULL,
	difficulty  TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'active',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS participants (
	debate_id  TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	PRIMARY KEY (debate_id, position)
);

CREATE TABLE IF NOT EXISTS arguments (
	id          TEXT PRIMARY KEY,
	debate_id   TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	role        TEXT NOT NULL,
	participant TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (debate_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_arguments_debate ON arguments(debate_id, seq);

CREATE TABLE IF NOT EXISTS evaluations (
	debate_id   TEXT PRIMARY KEY REFERENCES debates(id) ON DELETE CASCADE,
	payload     TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
