//go:build llama

package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	llama "github.com/go-skynet/go-llama.cpp"

	"llamad/pkg/types"
)

// llamaRuntime serves generation from llama.cpp models loaded in-process.
type llamaRuntime struct {
	ctxSize int
	threads int

	mu     sync.Mutex
	models map[string]*llama.LLama
}

// NewLlama builds the in-process llama.cpp runtime.
func NewLlama(ctxSize, threads int) Runtime {
	return &llamaRuntime{ctxSize: ctxSize, threads: threads, models: make(map[string]*llama.LLama)}
}

func (r *llamaRuntime) Load(ctx context.Context, desc types.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[desc.Name]; ok {
		return nil
	}
	path := ggufPath(desc)
	if path == "" {
		return errors.New("no gguf artifact in descriptor")
	}
	m, err := llama.New(path, llama.SetContext(r.ctxSize))
	if err != nil {
		return err
	}
	r.models[desc.Name] = m
	return nil
}

func (r *llamaRuntime) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[name]
	if !ok {
		return errors.New("not loaded: " + name)
	}
	m.Free()
	delete(r.models, name)
	return nil
}

func (r *llamaRuntime) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	r.mu.Lock()
	var name string
	var m *llama.LLama
	for n, lm := range r.models {
		name, m = n, lm
		break
	}
	r.mu.Unlock()
	if m == nil {
		return types.GenerateResponse{}, errors.New("no model loaded")
	}

	m.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	start := time.Now()
	text, err := m.Predict(req.Prompt, predictOptions(req, r.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return types.GenerateResponse{}, ctx.Err()
		}
		return types.GenerateResponse{}, err
	}
	return types.GenerateResponse{
		Text:         text,
		TokensUsed:   len(strings.Fields(req.Prompt)) + len(strings.Fields(text)),
		ProcessingMs: time.Since(start).Milliseconds(),
		ModelName:    name,
		Timestamp:    time.Now().Unix(),
	}, nil
}

func (r *llamaRuntime) IsLoaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.models[name]
	return ok
}

func (r *llamaRuntime) LoadedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.models))
	for n := range r.models {
		out = append(out, n)
	}
	return out
}

func ggufPath(desc types.Descriptor) string {
	for _, a := range desc.Artifacts {
		if strings.HasSuffix(strings.ToLower(a), ".gguf") {
			return filepath.Join(desc.LocalPath, a)
		}
	}
	return ""
}

func predictOptions(req types.GenerateRequest, threads int) []llama.PredictOption {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 128
	}
	if threads <= 0 {
		threads = 1
	}
	po := []llama.PredictOption{
		llama.SetTokens(maxTokens),
		llama.SetThreads(threads),
	}
	if req.Temperature > 0 {
		po = append(po, llama.SetTemperature(float32(req.Temperature)))
	}
	if req.TopP > 0 {
		po = append(po, llama.SetTopP(float32(req.TopP)))
	}
	if req.Seed != 0 {
		po = append(po, llama.SetSeed(int(req.Seed)))
	}
	if len(req.Stop) > 0 {
		po = append(po, llama.SetStopWords(req.Stop...))
	}
	return po
}
