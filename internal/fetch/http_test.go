package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"llamad/pkg/types"
)

func testDescriptor(dir string) types.Descriptor {
	return types.Descriptor{
		Name:      "m",
		SourceID:  "org/m",
		Version:   "1.0",
		LocalPath: filepath.Join(dir, "m"),
		Kind:      types.KindTextGeneration,
		Artifacts: []string{"model.gguf", "tokenizer.json"},
	}
}

func artifactServer(t *testing.T, payload map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payload[filepath.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestDownloadFetchesAllArtifacts(t *testing.T) {
	srv := artifactServer(t, map[string]string{
		"model.gguf":     "weights",
		"tokenizer.json": "{}",
	})
	defer srv.Close()

	dir := t.TempDir()
	desc := testDescriptor(dir)
	f := NewHTTP(srv.URL, zerolog.Nop())

	var trace []float64
	err := f.Download(context.Background(), desc, func(p float64) { trace = append(trace, p) })
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	for _, name := range desc.Artifacts {
		if _, err := os.Stat(filepath.Join(desc.LocalPath, name)); err != nil {
			t.Fatalf("artifact %s missing: %v", name, err)
		}
	}
	if len(trace) == 0 || trace[len(trace)-1] != 100 {
		t.Fatalf("expected final progress 100, got %v", trace)
	}
	for i := 1; i < len(trace); i++ {
		if trace[i] < trace[i-1] {
			t.Fatalf("progress regressed: %v", trace)
		}
	}
}

func TestDownloadMissingArtifactFails(t *testing.T) {
	srv := artifactServer(t, map[string]string{"model.gguf": "weights"})
	defer srv.Close()

	desc := testDescriptor(t.TempDir())
	f := NewHTTP(srv.URL, zerolog.Nop())
	if err := f.Download(context.Background(), desc, nil); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
	// No .part leftovers.
	entries, _ := os.ReadDir(desc.LocalPath)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".part" {
			t.Fatalf("partial file left behind: %s", e.Name())
		}
	}
}

func TestDownloadSkipsPresentArtifacts(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	desc := testDescriptor(t.TempDir())
	if err := os.MkdirAll(desc.LocalPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(desc.LocalPath, "model.gguf"), []byte("cached"), 0o644); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	f := NewHTTP(srv.URL, zerolog.Nop())
	if err := f.Download(context.Background(), desc, nil); err != nil {
		t.Fatalf("download: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected only the missing artifact fetched, got %d requests", requests)
	}
}

func TestProgressProbes(t *testing.T) {
	desc := testDescriptor(t.TempDir())
	f := NewHTTP("http://unused", zerolog.Nop())
	if f.IsDownloaded(desc) {
		t.Fatalf("expected not downloaded")
	}
	if p := f.Progress(desc); p != 0 {
		t.Fatalf("expected 0%%, got %v", p)
	}
	if err := os.MkdirAll(desc.LocalPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	os.WriteFile(filepath.Join(desc.LocalPath, "model.gguf"), []byte("x"), 0o644)
	if p := f.Progress(desc); p != 50 {
		t.Fatalf("expected 50%%, got %v", p)
	}
	os.WriteFile(filepath.Join(desc.LocalPath, "tokenizer.json"), []byte("x"), 0o644)
	if !f.IsDownloaded(desc) {
		t.Fatalf("expected downloaded after all artifacts present")
	}
}

func TestDownloadHonorsContext(t *testing.T) {
	srv := artifactServer(t, map[string]string{"model.gguf": "weights", "tokenizer.json": "{}"})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	desc := testDescriptor(t.TempDir())
	f := NewHTTP(srv.URL, zerolog.Nop())
	if err := f.Download(ctx, desc, nil); err == nil {
		t.Fatalf("expected context error")
	}
}
