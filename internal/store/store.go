// Package store persists model records in a single JSON registry document.
// Every mutation is a whole-document read-modify-write guarded by a mutex so
// concurrent setup calls cannot clobber each other's saves.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/model"
)

// ErrNotFound is returned by Delete when no record exists for the name.
var ErrNotFound = errors.New("record not found")

// Store is the durable home of model records.
type Store struct {
	path string
	cat  *catalog.Catalog
	log  zerolog.Logger

	mu sync.Mutex
}

// New creates a store writing to path. The catalog is consulted when Get is
// asked for a name with no persisted record yet.
func New(path string, cat *catalog.Catalog, log zerolog.Logger) *Store {
	return &Store{path: path, cat: cat, log: log}
}

// Get returns the persisted record for name. If absent but the catalog knows
// the name, a fresh not_downloaded record is materialized, persisted and
// returned. The second result is false when the name is unknown everywhere.
func (s *Store) Get(name string) (*model.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	if p, ok := doc[name]; ok {
		return model.FromPersisted(p), true, nil
	}
	entry, ok := s.cat.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	desc, err := model.NewDescriptor(entry.Descriptor)
	if err != nil {
		return nil, false, fmt.Errorf("catalog entry %s: %w", name, err)
	}
	rec := model.NewRecord(desc)
	doc[name] = rec.ToPersisted()
	if err := s.write(doc); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Save upserts the record into the document and rewrites it wholesale.
func (s *Store) Save(rec *model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[rec.Name()] = rec.ToPersisted()
	return s.write(doc)
}

// All materializes every record currently present in the document, ordered by
// name for stable output.
func (s *Store) All() ([]*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*model.Record, 0, len(names))
	for _, name := range names {
		out = append(out, model.FromPersisted(doc[name]))
	}
	return out, nil
}

// Delete removes the record and best-effort removes its artifact directory.
// Artifact removal failure is logged but does not fail the delete.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	p, ok := doc[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(doc, name)
	if err := s.write(doc); err != nil {
		return err
	}
	if dir := p.Descriptor.LocalPath; dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			s.log.Warn().Err(err).Str("model", name).Str("dir", dir).Msg("artifact cleanup failed")
		}
	}
	return nil
}

// load reads the whole document. A missing file is an empty document.
func (s *Store) load() (map[string]model.Persisted, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.Persisted{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	doc := map[string]model.Persisted{}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return doc, nil
}

func (s *Store) write(doc map[string]model.Persisted) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("registry dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
