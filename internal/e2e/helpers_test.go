package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/fetch"
	"llamad/internal/health"
	"llamad/internal/httpapi"
	"llamad/internal/service"
	"llamad/internal/store"
	"llamad/pkg/types"
)

// memoryRuntime stands in for the llama runtime so the full HTTP flow can run
// without native bindings.
type memoryRuntime struct {
	mu     sync.Mutex
	loaded map[string]bool
}

func newMemoryRuntime() *memoryRuntime {
	return &memoryRuntime{loaded: map[string]bool{}}
}

func (r *memoryRuntime) Load(ctx context.Context, desc types.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded[desc.Name] = true
	return nil
}

func (r *memoryRuntime) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaded, name)
	return nil
}

func (r *memoryRuntime) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	return types.GenerateResponse{
		Text:       "echo: " + req.Prompt,
		TokensUsed: len(req.Prompt),
		Timestamp:  time.Now().Unix(),
	}, nil
}

func (r *memoryRuntime) IsLoaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded[name]
}

func (r *memoryRuntime) LoadedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.loaded))
	for n := range r.loaded {
		names = append(names, n)
	}
	return names
}

// newMirror serves one fake artifact per model under /<source-id>/<artifact>.
func newMirror(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for _, n := range names {
		mux.HandleFunc(fmt.Sprintf("/mirror/%s/model.gguf", n), func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("weights"))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEntries(dir string, names ...string) []types.RegistryEntry {
	entries := make([]types.RegistryEntry, 0, len(names))
	for i, n := range names {
		entries = append(entries, types.RegistryEntry{
			Descriptor: types.Descriptor{
				Name:        n,
				SourceID:    "mirror/" + n,
				Version:     "1",
				Description: "test model " + n,
				LocalPath:   filepath.Join(dir, n),
				Kind:        types.KindTextGeneration,
				Artifacts:   []string{"model.gguf"},
			},
			Popularity: 100 - i,
			Verified:   true,
		})
	}
	return entries
}

// newDaemon wires the full stack behind an httptest server: real catalog,
// store, fetcher and orchestrator with the in-memory runtime.
func newDaemon(t *testing.T, names ...string) (*httptest.Server, *memoryRuntime) {
	t.Helper()
	dir := t.TempDir()
	mirror := newMirror(t, names...)

	logger := zerolog.Nop()
	cat := catalog.New(testEntries(dir, names...))
	st := store.New(filepath.Join(dir, "registry.json"), cat, logger)
	fetcher := fetch.NewHTTP(mirror.URL, logger)
	rt := newMemoryRuntime()

	svc := service.New(service.Config{
		Store:   st,
		Catalog: cat,
		Fetcher: fetcher,
		Runtime: rt,
		Logger:  logger,
	})
	reporter := health.New(svc, health.ReporterConfig{})

	srv := httptest.NewServer(httpapi.NewMux(svc, reporter))
	t.Cleanup(srv.Close)
	return srv, rt
}
