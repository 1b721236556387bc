package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/model"
	"llamad/pkg/types"
)

func testCatalog(t *testing.T, modelsDir string) *catalog.Catalog {
	t.Helper()
	return catalog.New([]types.RegistryEntry{
		{
			Descriptor: types.Descriptor{
				Name:      "llama-7b-chat",
				SourceID:  "meta-llama/Llama-2-7b-chat",
				Version:   "2.0",
				LocalPath: filepath.Join(modelsDir, "llama-7b-chat"),
				Kind:      types.KindTextGeneration,
				Artifacts: []string{"model.gguf"},
			},
			Popularity: 100,
			Verified:   true,
		},
	})
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	return New(path, testCatalog(t, dir), zerolog.Nop()), dir
}

func TestGetMaterializesFromCatalog(t *testing.T) {
	s, _ := newTestStore(t)
	rec, ok, err := s.Get("llama-7b-chat")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if rec.State() != model.StateNotDownloaded {
		t.Fatalf("expected not_downloaded, got %s", rec.State())
	}
	if rec.Descriptor().SourceID != "meta-llama/Llama-2-7b-chat" {
		t.Fatalf("descriptor not taken from catalog: %+v", rec.Descriptor())
	}
	// Materialization must have persisted the entry.
	b, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc map[string]model.Persisted
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if _, ok := doc["llama-7b-chat"]; !ok {
		t.Fatalf("document missing materialized entry")
	}
}

func TestGetUnknownNameAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok, err := s.Get("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected absent for unknown name")
	}
}

func TestSaveRoundTripEveryState(t *testing.T) {
	s, _ := newTestStore(t)
	mutations := map[string]func(*model.Record){
		"fresh":       func(r *model.Record) {},
		"downloading": func(r *model.Record) { _ = r.MarkDownloading() },
		"downloaded":  func(r *model.Record) { _ = r.MarkDownloading(); _ = r.MarkDownloaded() },
		"loaded": func(r *model.Record) {
			_ = r.MarkDownloading()
			_ = r.MarkDownloaded()
			_ = r.MarkLoading()
			_ = r.MarkLoaded()
		},
		"failed": func(r *model.Record) { _ = r.MarkDownloading(); _ = r.MarkError("connection reset") },
	}
	for name, mutate := range mutations {
		rec, ok, err := s.Get("llama-7b-chat")
		if err != nil || !ok {
			t.Fatalf("%s: get: %v", name, err)
		}
		mutate(rec)
		if err := s.Save(rec); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, ok, err := s.Get("llama-7b-chat")
		if err != nil || !ok {
			t.Fatalf("%s: reload: %v", name, err)
		}
		if got.State() != rec.State() {
			t.Fatalf("%s: state %s != %s", name, got.State(), rec.State())
		}
		if got.ErrorMessage() != rec.ErrorMessage() {
			t.Fatalf("%s: error %q != %q", name, got.ErrorMessage(), rec.ErrorMessage())
		}
		// reset for next case
		if err := s.Delete("llama-7b-chat"); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
	}
}

func TestAllListsOnlyPersistedRecords(t *testing.T) {
	s, _ := newTestStore(t)
	recs, err := s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty document, got %d records", len(recs))
	}
	if _, _, err := s.Get("llama-7b-chat"); err != nil {
		t.Fatalf("get: %v", err)
	}
	recs, err = s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(recs) != 1 || recs[0].Name() != "llama-7b-chat" {
		t.Fatalf("expected exactly the materialized record, got %v", recs)
	}
}

func TestDeleteRemovesRecordAndArtifacts(t *testing.T) {
	s, dir := newTestStore(t)
	rec, _, err := s.Get("llama-7b-chat")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	artifactDir := rec.Descriptor().LocalPath
	if err := os.MkdirAll(artifactDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(artifactDir, "model.gguf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if err := s.Delete("llama-7b-chat"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(artifactDir); !os.IsNotExist(err) {
		t.Fatalf("expected artifact dir removed, stat err=%v", err)
	}
	recs, err := s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty document after delete")
	}
	_ = dir
}

func TestDeleteUnknownFails(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Delete("nope"); err == nil {
		t.Fatalf("expected error deleting unknown record")
	}
}

func TestCorruptDocumentSurfacesError(t *testing.T) {
	s, _ := newTestStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := s.Get("llama-7b-chat"); err == nil {
		t.Fatalf("expected decode error")
	}
}
