package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ossql/content"
	"ossql/internal/catalog"
	"ossql/internal/engine"
	"ossql/internal/grading"
	"ossql/internal/progress"
	"ossql/internal/session"
	"ossql/internal/state"
	"ossql/internal/telemetry"
	"ossql/internal/ui"

	"golang.org/x/sync/errgroup"
)

const settingEngine = "engine"

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   Store
	catalog *catalog.Catalog
	engines map[engine.Kind]engine.Engine
	grader  *grading.Validator

	// mu guards session; UI callbacks arrive on their own goroutines.
	mu      sync.Mutex
	session *session.Session

	view ui.View
}

// New loads the catalog, opens the state store, populates both engines and
// restores the last saved progress. cfg is validated first, so paths left
// empty get their defaults.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.ContentFS(), content.Manifest)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	engines, err := loadEngines(ctx, cfg, cat)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	for kind := range engines {
		logger.Info("engine.loaded", map[string]any{"engine": string(kind), "table": cat.Dataset.Table})
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		catalog: cat,
		engines: engines,
		grader:  grading.NewValidator(grading.Options{RequireFrom: cfg.RequireFrom, Logger: logger}),
	}

	prog := a.restoreProgress(ctx)
	kind := a.startEngine(ctx)
	sess, err := session.New(cat, engines, a.grader, prog, session.Options{Engine: kind, Recorder: a})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = sess

	if err := store.StartSession(ctx, state.Session{ID: sess.ID, Engine: string(kind), StartTS: time.Now().UTC()}); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// loadEngines opens every engine kind and loads the catalog dataset into
// each one concurrently. Any failure closes whatever was opened.
func loadEngines(ctx context.Context, cfg Config, cat *catalog.Catalog) (map[engine.Kind]engine.Engine, error) {
	kinds := engine.Kinds()
	opened := make([]engine.Engine, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			eng, err := engine.Open(kind, engine.Options{Timeout: cfg.QueryTimeout})
			if err != nil {
				return fmt.Errorf("open %s: %w", kind, err)
			}
			opened[i] = eng
			return eng.Load(gctx, cat.FS(), cat.Dataset.Path, cat.Dataset.Table)
		})
	}
	if err := g.Wait(); err != nil {
		for _, eng := range opened {
			if eng != nil {
				_ = eng.Close()
			}
		}
		return nil, err
	}

	engines := make(map[engine.Kind]engine.Engine, len(kinds))
	for i, kind := range kinds {
		engines[kind] = opened[i]
	}
	return engines, nil
}

func (a *App) restoreProgress(ctx context.Context) *progress.State {
	prog := progress.New(a.catalog.Len())
	blob, err := a.store.LoadProgress(ctx)
	if err != nil {
		a.logger.Warn("progress.load_failed", map[string]any{"error": err.Error()})
		return prog
	}
	if blob == nil {
		return prog
	}
	if err := prog.Restore(blob); err != nil {
		a.logger.Warn("progress.restore_rejected", map[string]any{"error": err.Error()})
		return progress.New(a.catalog.Len())
	}
	a.logger.Info("progress.restored", map[string]any{"solved": prog.SolvedCount, "total": prog.Total})
	return prog
}

// startEngine prefers the configured engine, then the one saved in
// settings, then SQLite.
func (a *App) startEngine(ctx context.Context) engine.Kind {
	if a.cfg.Engine != "" {
		if kind, err := engine.ParseKind(a.cfg.Engine); err == nil {
			return kind
		}
	}
	settings, err := a.store.LoadSettings(ctx)
	if err == nil {
		if kind, err := engine.ParseKind(settings[settingEngine]); err == nil {
			return kind
		}
	}
	return engine.KindSQLite
}

// Run starts the terminal UI and blocks until it exits.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{"session": a.session.ID, "engine": string(a.session.Engine())})

	if a.view == nil {
		root := ui.New(ui.Options{ASCIIOnly: a.cfg.ASCIIOnly, Debug: a.cfg.DebugLayout, StyleVariant: a.cfg.UI.StyleVariant})
		a.view = root
	}
	a.view.SetController(a)
	a.refreshChrome()
	a.view.SetIntro(a.catalog.Intro)
	a.view.SetScreen(ui.ScreenIntro)

	err := a.view.Run()
	a.logger.Info("app.stop", map[string]any{"session": a.session.ID})
	return err
}

func (a *App) Close() {
	for _, eng := range a.engines {
		_ = eng.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Close()
}

// Session exposes the learner session for CLI commands. Callers must not use
// it concurrently with a running UI.
func (a *App) Session() *session.Session { return a.session }

func (a *App) Catalog() *catalog.Catalog { return a.catalog }

func (a *App) Store() Store { return a.store }

// RecordSubmission stores every evaluated attempt and persists progress
// whenever the frontier moves.
func (a *App) RecordSubmission(ctx context.Context, sub session.Submission) {
	fields := map[string]any{
		"session":     sub.SessionID,
		"exercise":    sub.ExerciseID,
		"engine":      string(sub.Engine),
		"outcome":     string(sub.Outcome.Kind),
		"duration_ms": sub.Elapsed.Milliseconds(),
	}
	if len(sub.Outcome.Missing) > 0 {
		fields["missing"] = sub.Outcome.Missing
	}
	a.logger.Info("submission.evaluated", fields)

	err := a.store.RecordAttempt(ctx, state.Attempt{
		SessionID:  sub.SessionID,
		ExerciseID: sub.ExerciseID,
		Engine:     string(sub.Engine),
		Outcome:    string(sub.Outcome.Kind),
		Accepted:   sub.Outcome.Accepted(),
		Query:      sub.Query,
		DurationMS: sub.Elapsed.Milliseconds(),
		TS:         time.Now().UTC(),
	})
	if err != nil {
		a.logger.Error("state.record_attempt_failed", map[string]any{"error": err.Error()})
	}
	if sub.Advanced {
		a.persistProgress(ctx)
	}
}

func (a *App) persistProgress(ctx context.Context) {
	blob, err := a.session.ExportProgress()
	if err == nil {
		err = a.store.SaveProgress(ctx, blob)
	}
	if err != nil {
		a.logger.Error("progress.save_failed", map[string]any{"error": err.Error()})
	}
}

// ExportProgress writes the progress blob to path.
func (a *App) ExportProgress(path string) error {
	a.mu.Lock()
	blob, err := a.session.ExportProgress()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, append(blob, '\n'), 0o644); err != nil {
		return err
	}
	a.logger.Info("progress.exported", map[string]any{"path": path})
	return nil
}

// ImportProgress replaces progress with the blob at path and stores it as
// the saved progress. A corrupt file leaves everything unchanged.
func (a *App) ImportProgress(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.ImportProgress(data); err != nil {
		a.logger.Warn("progress.import_rejected", map[string]any{"path": path, "error": err.Error()})
		return err
	}
	a.persistProgress(ctx)
	a.logger.Info("progress.imported", map[string]any{"path": path, "solved": a.session.Progress().SolvedCount})
	return nil
}

// Check runs one submission for exerciseID on kind through the session so
// attempts are recorded and progress advances as in the UI.
func (a *App) Check(ctx context.Context, exerciseID string, kind engine.Kind, query string) (grading.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.session.Select(exerciseID); err != nil {
		return grading.Result{}, err
	}
	if kind != "" {
		if err := a.session.UseEngine(kind); err != nil {
			return grading.Result{}, err
		}
	}
	started := time.Now()
	out, err := a.session.Submit(ctx, query)
	if err != nil {
		return grading.Result{}, err
	}
	return grading.NewResult(exerciseID, a.session.Engine(), out, time.Since(started)), nil
}
