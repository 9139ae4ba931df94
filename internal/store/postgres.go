package store

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

// OpenPostgres connects to PostgreSQL and creates the tables if needed.
func OpenPostgres(dsn string) (Backend, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqlStore{db: db, dollar: true}, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		state_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);

	CREATE TABLE IF NOT EXISTS results (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		winner TEXT NOT NULL,
		player_shots INTEGER NOT NULL,
		cpu_shots INTEGER NOT NULL,
		player_remaining INTEGER NOT NULL,
		cpu_remaining INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at);
	`

	_, err := db.Exec(schema)
	return err
}
