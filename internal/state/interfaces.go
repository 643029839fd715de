package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	StartSession(ctx context.Context, sess Session) error
	RecordAttempt(ctx context.Context, attempt Attempt) error
	SaveProgress(ctx context.Context, blob []byte) error
	LoadProgress(ctx context.Context) ([]byte, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	GetSummary(ctx context.Context) (Summary, error)
	GetExerciseStats(ctx context.Context) (map[string]ExerciseStats, error)
	Close() error
}

type Session struct {
	ID      string
	Engine  string
	StartTS time.Time
}

type Attempt struct {
	SessionID  string
	ExerciseID string
	Engine     string
	Outcome    string
	Accepted   bool
	Query      string
	DurationMS int64
	TS         time.Time
}

type Summary struct {
	Sessions  int
	Attempts  int
	Accepted  int
	Exercises int
}

type ExerciseStats struct {
	ExerciseID     string
	Attempts       int
	AcceptedCount  int
	BestDurationMS int64
	LastPlayedTS   time.Time
	LastSolvedTS   time.Time
}
