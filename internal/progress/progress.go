package progress

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	Kind          = "ossql_progress"
	SchemaVersion = 1
)

var ErrCorruptProgress = errors.New("corrupt progress")

// State is the number of exercises solved in catalog order. SolvedCount
// never exceeds Total.
type State struct {
	SolvedCount int
	Total       int
}

type document struct {
	Kind          string `json:"kind"`
	SchemaVersion int    `json:"schema_version"`
	SolvedCount   *int   `json:"solved_count"`
}

func New(total int) *State {
	return &State{Total: max(0, total)}
}

// RecordSolved advances the frontier by one. It is a no-op once every
// exercise is solved.
func (s *State) RecordSolved() {
	if s.SolvedCount < s.Total {
		s.SolvedCount++
	}
}

// Unlocked is the number of exercises a learner may open.
func (s State) Unlocked() int {
	return min(s.SolvedCount+1, s.Total)
}

func (s State) IsUnlocked(index int) bool {
	return index >= 0 && index < s.Unlocked()
}

func (s State) Complete() bool {
	return s.Total > 0 && s.SolvedCount >= s.Total
}

func (s State) Serialize() ([]byte, error) {
	n := s.SolvedCount
	return json.Marshal(document{Kind: Kind, SchemaVersion: SchemaVersion, SolvedCount: &n})
}

// Deserialize parses data for a catalog of total exercises. Any problem is
// reported as ErrCorruptProgress.
func Deserialize(data []byte, total int) (State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptProgress, err)
	}
	if doc.Kind != Kind {
		return State{}, fmt.Errorf("%w: kind must be %q", ErrCorruptProgress, Kind)
	}
	if doc.SchemaVersion == 0 || doc.SchemaVersion > SchemaVersion {
		return State{}, fmt.Errorf("%w: unsupported schema_version %d", ErrCorruptProgress, doc.SchemaVersion)
	}
	if doc.SolvedCount == nil {
		return State{}, fmt.Errorf("%w: solved_count is required", ErrCorruptProgress)
	}
	n := *doc.SolvedCount
	if n < 0 {
		return State{}, fmt.Errorf("%w: solved_count %d is negative", ErrCorruptProgress, n)
	}
	if n > total {
		return State{}, fmt.Errorf("%w: solved_count %d exceeds %d exercises", ErrCorruptProgress, n, total)
	}
	return State{SolvedCount: n, Total: total}, nil
}

// Restore replaces the solved count with the one in data. s is left
// untouched on error.
func (s *State) Restore(data []byte) error {
	next, err := Deserialize(data, s.Total)
	if err != nil {
		return err
	}
	*s = next
	return nil
}
