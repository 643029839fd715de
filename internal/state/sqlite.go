package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL,
			start_ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			engine TEXT NOT NULL,
			outcome TEXT NOT NULL,
			accepted INTEGER NOT NULL DEFAULT 0,
			query TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			attempt_ts TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);`,
		`CREATE TABLE IF NOT EXISTS exercise_progress (
			exercise_id TEXT PRIMARY KEY,
			attempts INTEGER NOT NULL DEFAULT 0,
			accepted_count INTEGER NOT NULL DEFAULT 0,
			best_duration_ms INTEGER NOT NULL DEFAULT 0,
			last_played_ts TEXT NOT NULL DEFAULT '',
			last_solved_ts TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS saved_progress (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			blob TEXT NOT NULL,
			updated_ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) StartSession(ctx context.Context, sess Session) error {
	start := sess.StartTS
	if start.IsZero() {
		start = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, engine, start_ts) VALUES(?,?,?)`,
		sess.ID,
		strings.TrimSpace(sess.Engine),
		start.UTC().Format(timeLayout),
	)
	return err
}

// RecordAttempt appends the attempt and folds it into exercise_progress.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, a Attempt) (err error) {
	exerciseID := strings.TrimSpace(a.ExerciseID)
	if exerciseID == "" {
		return nil
	}
	ts := a.TS
	if ts.IsZero() {
		ts = time.Now()
	}
	playTS := ts.UTC().Format(timeLayout)
	solvedTS := ""
	bestMS := int64(0)
	if a.Accepted {
		solvedTS = playTS
		bestMS = max(0, a.DurationMS)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO attempts(session_id, exercise_id, engine, outcome, accepted, query, duration_ms, attempt_ts)
		VALUES(?,?,?,?,?,?,?,?)
	`, a.SessionID, exerciseID, a.Engine, a.Outcome, ifThen(a.Accepted, 1, 0), a.Query, max(0, a.DurationMS), playTS); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO exercise_progress(exercise_id, attempts, accepted_count, best_duration_ms, last_played_ts, last_solved_ts)
		VALUES(?, 1, ?, ?, ?, ?)
		ON CONFLICT(exercise_id) DO UPDATE SET
			attempts = exercise_progress.attempts + 1,
			accepted_count = exercise_progress.accepted_count + excluded.accepted_count,
			best_duration_ms = CASE
				WHEN excluded.best_duration_ms > 0 AND (exercise_progress.best_duration_ms = 0 OR excluded.best_duration_ms < exercise_progress.best_duration_ms) THEN excluded.best_duration_ms
				ELSE exercise_progress.best_duration_ms
			END,
			last_played_ts = excluded.last_played_ts,
			last_solved_ts = CASE
				WHEN excluded.last_solved_ts <> '' THEN excluded.last_solved_ts
				ELSE exercise_progress.last_solved_ts
			END
	`, exerciseID, ifThen(a.Accepted, 1, 0), bestMS, playTS, solvedTS); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveProgress(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_progress(id, blob, updated_ts) VALUES(1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_ts = excluded.updated_ts
	`, string(blob), time.Now().UTC().Format(timeLayout))
	return err
}

// LoadProgress returns the last saved blob, or nil when nothing was saved.
func (s *SQLiteStore) LoadProgress(ctx context.Context) ([]byte, error) {
	var blob string
	row := s.db.QueryRowContext(ctx, `SELECT blob FROM saved_progress WHERE id = 1`)
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(blob), nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions) AS sessions,
			COUNT(*) AS attempts,
			COALESCE(SUM(accepted), 0) AS accepted,
			COUNT(DISTINCT CASE WHEN accepted = 1 THEN exercise_id END) AS exercises
		FROM attempts
	`)
	if err := row.Scan(&out.Sessions, &out.Attempts, &out.Accepted, &out.Exercises); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) GetExerciseStats(ctx context.Context) (map[string]ExerciseStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exercise_id, attempts, accepted_count, best_duration_ms, last_played_ts, last_solved_ts
		FROM exercise_progress
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]ExerciseStats{}
	for rows.Next() {
		var (
			st         ExerciseStats
			lastPlayed string
			lastSolved string
		)
		if err := rows.Scan(&st.ExerciseID, &st.Attempts, &st.AcceptedCount, &st.BestDurationMS, &lastPlayed, &lastSolved); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, lastPlayed); err == nil {
			st.LastPlayedTS = t
		}
		if t, err := time.Parse(timeLayout, lastSolved); err == nil {
			st.LastSolvedTS = t
		}
		out[st.ExerciseID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
