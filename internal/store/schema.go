package store

import (
	"context"
	"database/sql"
)

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Timestamps are unix milliseconds so both backends store them the same way.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS llm_request_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sequence INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms INTEGER NOT NULL DEFAULT 0,
  success INTEGER NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_attempts (
  id TEXT PRIMARY KEY,
  sequence INTEGER NOT NULL,
  user_id TEXT NOT NULL,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL DEFAULT '',
  certificate_level TEXT NOT NULL DEFAULT '',
  total_questions INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  score REAL NOT NULL,
  passed INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  completed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_attempts_user ON quiz_attempts (user_id, sequence);

CREATE TABLE IF NOT EXISTS cooldowns (
  name TEXT PRIMARY KEY,
  last_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS llm_request_events (
  id BIGSERIAL PRIMARY KEY,
  sequence BIGINT NOT NULL,
  created_at BIGINT NOT NULL,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  purpose TEXT NOT NULL,
  input_tokens INTEGER NOT NULL DEFAULT 0,
  output_tokens INTEGER NOT NULL DEFAULT 0,
  latency_ms BIGINT NOT NULL DEFAULT 0,
  success BOOLEAN NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  request_body TEXT NOT NULL DEFAULT '',
  response_body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS quiz_attempts (
  id TEXT PRIMARY KEY,
  sequence BIGINT NOT NULL,
  user_id TEXT NOT NULL,
  topic TEXT NOT NULL,
  difficulty TEXT NOT NULL DEFAULT '',
  certificate_level TEXT NOT NULL DEFAULT '',
  total_questions INTEGER NOT NULL,
  correct_answers INTEGER NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  passed BOOLEAN NOT NULL,
  duration_ms BIGINT NOT NULL DEFAULT 0,
  completed_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_attempts_user ON quiz_attempts (user_id, sequence);

CREATE TABLE IF NOT EXISTS cooldowns (
  name TEXT PRIMARY KEY,
  last_at BIGINT NOT NULL
);
`
