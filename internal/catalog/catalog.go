package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrUnknownExercise  = errors.New("unknown exercise")
	ErrDuplicateID      = errors.New("duplicate exercise id")
)

// Exercise is immutable once registered.
type Exercise struct {
	ID            string
	Title         string
	Prompt        string
	ExpectedQuery string
	Mandatory     []string
	Hint          string
}

// Catalog is the ordered exercise collection. Registration order is unlock
// order. It is not safe for concurrent Register calls; after loading it is
// read-only.
type Catalog struct {
	fsys      fs.FS
	Title     string
	Intro     string
	Dataset   DatasetSpec
	exercises []Exercise
	index     map[string]int
}

// New returns an empty catalog resolving resource paths against fsys.
func New(fsys fs.FS) *Catalog {
	return &Catalog{fsys: fsys, index: map[string]int{}}
}

func (c *Catalog) Register(id, promptPath, expectedQueryPath string, mandatory []string, hint string) (Exercise, error) {
	if _, ok := c.index[id]; ok {
		return Exercise{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	prompt, err := c.readResource(promptPath)
	if err != nil {
		return Exercise{}, err
	}
	expected, err := c.readResource(expectedQueryPath)
	if err != nil {
		return Exercise{}, err
	}
	ex := Exercise{
		ID:            id,
		Title:         id,
		Prompt:        prompt,
		ExpectedQuery: flattenQuery(expected),
		Mandatory:     append([]string(nil), mandatory...),
		Hint:          hint,
	}
	c.index[id] = len(c.exercises)
	c.exercises = append(c.exercises, ex)
	return ex, nil
}

func (c *Catalog) Get(id string) (Exercise, error) {
	i, ok := c.index[id]
	if !ok {
		return Exercise{}, fmt.Errorf("%w: %s", ErrUnknownExercise, id)
	}
	return c.exercises[i], nil
}

func (c *Catalog) Exercises() []Exercise {
	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Index returns the unlock position of id, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

func (c *Catalog) Len() int { return len(c.exercises) }

// At returns the exercise at unlock position i.
func (c *Catalog) At(i int) (Exercise, bool) {
	if i < 0 || i >= len(c.exercises) {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

func (c *Catalog) FS() fs.FS { return c.fsys }

func (c *Catalog) readResource(path string) (string, error) {
	if c.fsys == nil || path == "" {
		return "", fmt.Errorf("%w: %q", ErrResourceNotFound, path)
	}
	b, err := fs.ReadFile(c.fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return "", fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// flattenQuery joins a multi-line query into one line.
func flattenQuery(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
