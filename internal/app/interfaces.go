package app

import (
	"context"

	"ossql/internal/state"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	StartSession(ctx context.Context, sess state.Session) error
	RecordAttempt(ctx context.Context, attempt state.Attempt) error
	SaveProgress(ctx context.Context, blob []byte) error
	LoadProgress(ctx context.Context) ([]byte, error)
	SaveSettings(ctx context.Context, values map[string]string) error
	LoadSettings(ctx context.Context) (map[string]string, error)
	GetSummary(ctx context.Context) (state.Summary, error)
	GetExerciseStats(ctx context.Context) (map[string]state.ExerciseStats, error)
	Close() error
}
