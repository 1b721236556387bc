//go:build !llama

package runtime

// No-CGO stub compiled when the 'llama' build tag is not set, keeping default
// builds and CI CGO-free. It refuses to load rather than simulating a model.

import (
	"context"

	"llamad/pkg/types"
)

type llamaRuntime struct{}

// NewLlama returns a runtime that fails fast: llama support was not built.
func NewLlama(ctxSize, threads int) Runtime {
	return llamaRuntime{}
}

func (llamaRuntime) Load(ctx context.Context, desc types.Descriptor) error {
	return ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaRuntime) Unload(name string) error {
	return ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaRuntime) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	return types.GenerateResponse{}, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaRuntime) IsLoaded(name string) bool { return false }

func (llamaRuntime) LoadedNames() []string { return nil }
