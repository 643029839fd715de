package catalog

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Load reads the manifest at manifestPath from fsys and registers every
// exercise in manifest order.
func Load(fsys fs.FS, manifestPath string) (*Catalog, error) {
	m, err := readManifest(fsys, manifestPath)
	if err != nil {
		return nil, err
	}
	c := New(fsys)
	c.Title = m.Title
	c.Dataset = m.Dataset
	if m.Intro != "" {
		intro, err := c.readResource(m.Intro)
		if err != nil {
			return nil, fmt.Errorf("load %s: intro: %w", manifestPath, err)
		}
		c.Intro = intro
	}
	if _, err := fs.Stat(fsys, m.Dataset.Path); err != nil {
		return nil, fmt.Errorf("load %s: dataset: %w: %s", manifestPath, ErrResourceNotFound, m.Dataset.Path)
	}
	for _, ref := range m.Exercises {
		if _, err := c.Register(ref.ID, ref.Prompt, ref.Result, ref.Mandatory, ref.Hint); err != nil {
			return nil, fmt.Errorf("load %s: exercise %s: %w", manifestPath, ref.ID, err)
		}
		if ref.Title != "" {
			c.exercises[c.index[ref.ID]].Title = ref.Title
		}
	}
	return c, nil
}

func readManifest(fsys fs.FS, path string) (Manifest, error) {
	var m Manifest
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("validate %s: %w", path, err)
	}
	return m, nil
}
