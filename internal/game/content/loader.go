package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the shape of a single content YAML file. Any section may be
// omitted; a catalog is usually split across several files.
type Document struct {
	StarterMask string   `yaml:"starter_mask"`
	Moves       []*Move  `yaml:"moves"`
	Enemies     []*Enemy `yaml:"enemies"`
	Masks       []*Mask  `yaml:"masks"`
	Floors      []*Floor `yaml:"floors"`
}

// Add registers every definition in doc.
//
// Postcondition: Returns the first registration error, or nil.
func (r *Registry) Add(doc Document) error {
	for _, m := range doc.Moves {
		if err := r.RegisterMove(m); err != nil {
			return err
		}
	}
	for _, e := range doc.Enemies {
		if err := r.RegisterEnemy(e); err != nil {
			return err
		}
	}
	for _, m := range doc.Masks {
		if err := r.RegisterMask(m); err != nil {
			return err
		}
	}
	for _, f := range doc.Floors {
		if err := r.RegisterFloor(f); err != nil {
			return err
		}
	}
	if doc.StarterMask != "" {
		if err := r.SetStarterMask(doc.StarterMask); err != nil {
			return err
		}
	}
	return nil
}

// LoadBytes parses a single content document from raw YAML and registers it.
// The registry is not resolved; call Resolve after the last document.
func (r *Registry) LoadBytes(data []byte) error {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing content YAML: %w", err)
	}
	return r.Add(doc)
}

// LoadDir reads every *.yaml file in dir in lexicographic order, registers
// their contents, and resolves cross-references.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a resolved Registry, or an error naming the first
// failing file; on error the partial registry is discarded.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	reg := NewRegistry()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := reg.LoadBytes(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	if err := reg.Resolve(); err != nil {
		return nil, err
	}
	return reg, nil
}
