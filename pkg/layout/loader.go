package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formengine/pkg/model"
)

// ErrLayoutNotFound is returned when a store has no layout for an id.
var ErrLayoutNotFound = errors.New("layout: not found")

// Store keeps the parsed layouts keyed by id. It is safe for concurrent
// readers when treated as immutable after construction.
type Store struct {
	layouts map[string]model.Layout
	sources map[string]string
}

// NewStore builds a store from in-memory layouts. Layout ids must be unique
// and non-empty.
func NewStore(layouts ...model.Layout) (*Store, error) {
	store := newStore()
	for _, raw := range layouts {
		if err := store.add(raw.ID, raw, "memory"); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadFS walks the provided filesystem and parses JSON/YAML layout files.
// When fsys is nil or no layout files are present, the returned store is
// empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := newStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isLayoutFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("layout: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for id, raw := range doc.Layouts {
			if err := store.add(id, raw, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Layout returns the layout registered under id.
func (s *Store) Layout(id string) (model.Layout, bool) {
	if s == nil {
		return model.Layout{}, false
	}
	layout, ok := s.layouts[id]
	return layout, ok
}

// Lookup returns the layout registered under id or an error wrapping
// ErrLayoutNotFound.
func (s *Store) Lookup(id string) (model.Layout, error) {
	layout, ok := s.Layout(id)
	if !ok {
		return model.Layout{}, fmt.Errorf("%w: %q", ErrLayoutNotFound, id)
	}
	return layout, nil
}

// Source reports the file a layout was loaded from.
func (s *Store) Source(id string) string {
	if s == nil {
		return ""
	}
	return s.sources[id]
}

// IDs returns the sorted layout ids held by the store.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.layouts))
	for id := range s.layouts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any layouts.
func (s *Store) Empty() bool {
	return s == nil || len(s.layouts) == 0
}

type documentFile struct {
	Layouts map[string]model.Layout `json:"layouts" yaml:"layouts"`
}

func newStore() *Store {
	return &Store{
		layouts: make(map[string]model.Layout),
		sources: make(map[string]string),
	}
}

func (s *Store) add(rawID string, raw model.Layout, source string) error {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return fmt.Errorf("layout: file %s defines an empty layout id", source)
	}
	if _, exists := s.layouts[id]; exists {
		return fmt.Errorf("layout: duplicate layout %q (file %s, first defined in %s)", id, source, s.sources[id])
	}
	normalised, err := normaliseLayout(raw, id, source)
	if err != nil {
		return err
	}
	s.layouts[id] = normalised
	s.sources[id] = source
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("layout: file %s is empty", source)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("layout: parse %s: %w", source, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("layout: parse %s: %w", source, err)
		}
	}
	return doc, nil
}

func normaliseLayout(raw model.Layout, id, source string) (model.Layout, error) {
	layout := raw.Normalize()
	layout.ID = id

	sections := make(map[string]struct{}, len(layout.Sections))
	for idx, section := range layout.Sections {
		sectionID := strings.TrimSpace(section.ID)
		if sectionID == "" {
			return model.Layout{}, fmt.Errorf("layout: %q (file %s) section at index %d has an empty id", id, source, idx)
		}
		if _, exists := sections[sectionID]; exists {
			return model.Layout{}, fmt.Errorf("layout: %q (file %s) defines duplicate section %q", id, source, sectionID)
		}
		sections[sectionID] = struct{}{}
		layout.Sections[idx].ID = sectionID
	}

	fields := make(map[string]struct{}, len(layout.Fields))
	for idx, field := range layout.Fields {
		fieldID := strings.TrimSpace(field.ID)
		if fieldID == "" {
			return model.Layout{}, fmt.Errorf("layout: %q (file %s) field at index %d has an empty id", id, source, idx)
		}
		if _, exists := fields[fieldID]; exists {
			return model.Layout{}, fmt.Errorf("layout: %q (file %s) defines duplicate field %q", id, source, fieldID)
		}
		fields[fieldID] = struct{}{}
		layout.Fields[idx].ID = fieldID
		layout.Fields[idx].SectionID = strings.TrimSpace(field.SectionID)
		layout.Fields[idx].DataSource = strings.TrimSpace(field.DataSource)
	}

	return layout, nil
}

func isLayoutFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
