package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// sqlStore holds the queries shared by the SQLite and PostgreSQL backends.
// Queries are written with '?' placeholders; dollar rewrites them to $n for
// PostgreSQL.
type sqlStore struct {
	db     *sql.DB
	dollar bool
}

func (s *sqlStore) q(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save upserts the session as a JSON document.
func (s *sqlStore) Save(ctx context.Context, sess *game.Session) error {
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO sessions (id, phase, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			phase = excluded.phase,
			state_json = excluded.state_json,
			updated_at = excluded.updated_at`),
		sess.ID, string(sess.Phase), string(state), sess.CreatedAt.UTC(), sess.UpdatedAt.UTC(),
	)
	return err
}

func (s *sqlStore) Get(ctx context.Context, id string) (*game.Session, error) {
	var state string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT state_json FROM sessions WHERE id = ?`), id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess game.Session
	if err := json.Unmarshal([]byte(state), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *sqlStore) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE updated_at < ?`), before.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *sqlStore) RecordResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO results
			(session_id, winner, player_shots, cpu_shots, player_remaining, cpu_remaining, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		r.SessionID, string(r.Winner), r.PlayerShots, r.CPUShots, r.PlayerRemaining, r.CPURemaining,
		r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	return err
}

func (s *sqlStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(player_shots), 0)
		FROM results`), string(game.SidePlayer), string(game.SideCPU),
	).Scan(&sum.Games, &sum.PlayerWins, &sum.CPUWins, &sum.AvgPlayerShots)
	return sum, err
}

// Recent returns up to limit results, newest first.
func (s *sqlStore) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT session_id, winner, player_shots, cpu_shots, player_remaining, cpu_remaining, started_at, finished_at
		FROM results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?`), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var winner string
		if err := rows.Scan(&r.SessionID, &winner, &r.PlayerShots, &r.CPUShots,
			&r.PlayerRemaining, &r.CPURemaining, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Winner = game.Side(winner)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() error { return s.db.Close() }
