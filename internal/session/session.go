package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ossql/internal/catalog"
	"ossql/internal/engine"
	"ossql/internal/grading"
	"ossql/internal/progress"

	"github.com/google/uuid"
)

var (
	ErrEmptySubmission = errors.New("empty submission")
	ErrLocked          = errors.New("exercise is locked")
	ErrNoEngine        = errors.New("engine not available")
)

// Recorder receives every evaluated submission.
type Recorder interface {
	RecordSubmission(ctx context.Context, sub Submission)
}

type Submission struct {
	SessionID  string
	ExerciseID string
	Engine     engine.Kind
	Query      string
	Outcome    grading.Outcome
	Elapsed    time.Duration
	Advanced   bool
}

type Options struct {
	Engine   engine.Kind
	Recorder Recorder
	Now      func() time.Time
}

// Session holds one learner's context: the selected exercise and engine,
// the last outcome and progress. It is not safe for concurrent use.
type Session struct {
	ID string

	catalog   *catalog.Catalog
	engines   map[engine.Kind]engine.Engine
	evaluator grading.Evaluator
	progress  *progress.State
	recorder  Recorder
	now       func() time.Time

	current     string
	engineKind  engine.Kind
	lastOutcome *grading.Outcome
}

func New(cat *catalog.Catalog, engines map[engine.Kind]engine.Engine, evaluator grading.Evaluator, prog *progress.State, opts Options) (*Session, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.New("catalog has no exercises")
	}
	if len(engines) == 0 {
		return nil, ErrNoEngine
	}
	if prog == nil {
		prog = progress.New(cat.Len())
	}
	if prog.Total != cat.Len() {
		return nil, fmt.Errorf("progress covers %d exercises, catalog has %d", prog.Total, cat.Len())
	}
	kind := opts.Engine
	if kind == "" {
		kind = engine.KindSQLite
	}
	if _, ok := engines[kind]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEngine, kind)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		ID:         uuid.NewString(),
		catalog:    cat,
		engines:    engines,
		evaluator:  evaluator,
		progress:   prog,
		recorder:   opts.Recorder,
		now:        now,
		engineKind: kind,
	}
	s.current = s.frontier().ID
	return s, nil
}

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

func (s *Session) Progress() progress.State { return *s.progress }

func (s *Session) Engine() engine.Kind { return s.engineKind }

func (s *Session) Current() catalog.Exercise {
	ex, _ := s.catalog.Get(s.current)
	return ex
}

func (s *Session) CurrentIndex() int { return s.catalog.Index(s.current) }

// LastOutcome is the outcome of the last submission on the current
// exercise, or nil.
func (s *Session) LastOutcome() *grading.Outcome { return s.lastOutcome }

// Unlocked lists the exercises the learner may open, in order.
func (s *Session) Unlocked() []catalog.Exercise {
	all := s.catalog.Exercises()
	return all[:s.progress.Unlocked()]
}

func (s *Session) Select(id string) error {
	idx := s.catalog.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownExercise, id)
	}
	if !s.progress.IsUnlocked(idx) {
		return fmt.Errorf("%w: %s", ErrLocked, id)
	}
	if id != s.current {
		s.current = id
		s.lastOutcome = nil
	}
	return nil
}

func (s *Session) UseEngine(kind engine.Kind) error {
	if _, ok := s.engines[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrNoEngine, kind)
	}
	s.engineKind = kind
	return nil
}

// Submit evaluates query against the current exercise. Accepting the
// frontier exercise unlocks the next one.
func (s *Session) Submit(ctx context.Context, query string) (grading.Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return grading.Outcome{}, ErrEmptySubmission
	}
	ex := s.Current()
	eng := s.engines[s.engineKind]

	start := s.now()
	out := s.evaluator.Evaluate(ctx, query, ex, eng)
	elapsed := s.now().Sub(start)

	advanced := false
	if out.Accepted() && s.catalog.Index(ex.ID) == s.progress.SolvedCount {
		s.progress.RecordSolved()
		advanced = true
	}
	s.lastOutcome = &out

	if s.recorder != nil {
		s.recorder.RecordSubmission(ctx, Submission{
			SessionID:  s.ID,
			ExerciseID: ex.ID,
			Engine:     s.engineKind,
			Query:      query,
			Outcome:    out,
			Elapsed:    elapsed,
			Advanced:   advanced,
		})
	}
	return out, nil
}

// Next selects the exercise after the current one when it is unlocked.
func (s *Session) Next() bool {
	ex, ok := s.catalog.At(s.CurrentIndex() + 1)
	if !ok {
		return false
	}
	return s.Select(ex.ID) == nil
}

func (s *Session) ExportProgress() ([]byte, error) {
	return s.progress.Serialize()
}

// ImportProgress replaces progress with data. On error nothing changes.
// When the current exercise becomes locked the frontier is selected.
func (s *Session) ImportProgress(data []byte) error {
	if err := s.progress.Restore(data); err != nil {
		return err
	}
	if !s.progress.IsUnlocked(s.CurrentIndex()) {
		s.current = s.frontier().ID
		s.lastOutcome = nil
	}
	return nil
}

func (s *Session) frontier() catalog.Exercise {
	ex, _ := s.catalog.At(s.progress.Unlocked() - 1)
	return ex
}
