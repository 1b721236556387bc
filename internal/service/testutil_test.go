package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/fetch"
	"llamad/internal/runtime"
	"llamad/internal/store"
	"llamad/pkg/types"
)

// The fakes must keep satisfying the collaborator interfaces.
var (
	_ fetch.Fetcher   = (*fakeFetcher)(nil)
	_ runtime.Runtime = (*fakeRuntime)(nil)
)

// fakeFetcher tracks download calls and simulates artifact presence without
// touching the network.
type fakeFetcher struct {
	mu         sync.Mutex
	downloaded map[string]bool
	downloads  int
	failWith   error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{downloaded: make(map[string]bool)}
}

func (f *fakeFetcher) Download(ctx context.Context, desc types.Descriptor, onProgress fetch.ProgressFunc) error {
	f.mu.Lock()
	f.downloads++
	fail := f.failWith
	f.mu.Unlock()
	if onProgress != nil {
		onProgress(0)
		onProgress(50)
	}
	if fail != nil {
		return fail
	}
	if onProgress != nil {
		onProgress(100)
	}
	f.mu.Lock()
	f.downloaded[desc.Name] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeFetcher) IsDownloaded(desc types.Descriptor) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloaded[desc.Name]
}

func (f *fakeFetcher) Progress(desc types.Descriptor) float64 {
	if f.IsDownloaded(desc) {
		return 100
	}
	return 0
}

// fakeRuntime records load/unload calls and serves canned generations.
type fakeRuntime struct {
	mu       sync.Mutex
	loaded   map[string]bool
	loads    []string
	unloads  []string
	genCalls int
	failLoad error
	genErr   error
	genText  string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{loaded: make(map[string]bool), genText: "hello"}
}

func (r *fakeRuntime) Load(ctx context.Context, desc types.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, desc.Name)
	if r.failLoad != nil {
		return r.failLoad
	}
	r.loaded[desc.Name] = true
	return nil
}

func (r *fakeRuntime) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unloads = append(r.unloads, name)
	if !r.loaded[name] {
		return errors.New("not loaded: " + name)
	}
	delete(r.loaded, name)
	return nil
}

func (r *fakeRuntime) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genCalls++
	if r.genErr != nil {
		return types.GenerateResponse{}, r.genErr
	}
	return types.GenerateResponse{Text: r.genText, TokensUsed: 2, ProcessingMs: 1}, nil
}

func (r *fakeRuntime) IsLoaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded[name]
}

func (r *fakeRuntime) LoadedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.loaded))
	for n := range r.loaded {
		out = append(out, n)
	}
	return out
}

func testEntry(modelsDir, name string) types.RegistryEntry {
	return types.RegistryEntry{
		Descriptor: types.Descriptor{
			Name:      name,
			SourceID:  "org/" + name,
			Version:   "1.0",
			LocalPath: filepath.Join(modelsDir, name),
			Kind:      types.KindTextGeneration,
			Artifacts: []string{"model.gguf"},
		},
		Popularity: 1,
		Verified:   true,
	}
}

type testEnv struct {
	svc     *Service
	store   *store.Store
	fetcher *fakeFetcher
	rt      *fakeRuntime
	pub     *MemoryPublisher
}

func newTestEnv(t *testing.T, names ...string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	entries := make([]types.RegistryEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, testEntry(dir, n))
	}
	cat := catalog.New(entries)
	st := store.New(filepath.Join(dir, "registry.json"), cat, zerolog.Nop())
	env := &testEnv{
		store:   st,
		fetcher: newFakeFetcher(),
		rt:      newFakeRuntime(),
		pub:     NewMemoryPublisher(),
	}
	env.svc = New(Config{
		Store:     st,
		Catalog:   cat,
		Fetcher:   env.fetcher,
		Runtime:   env.rt,
		Logger:    zerolog.Nop(),
		Publisher: env.pub,
	})
	return env
}
