// Package runtime turns downloaded artifacts into an in-memory handle that
// can serve generation. The real backend is llama.cpp behind the 'llama'
// build tag; default builds get a stub that fails fast instead of mocking.
package runtime

import (
	"context"

	"llamad/pkg/types"
)

// Runtime abstracts the model backend used by the orchestrator.
type Runtime interface {
	// Load materializes the model into memory. Idempotent for an already
	// loaded name.
	Load(ctx context.Context, desc types.Descriptor) error
	// Unload releases the handle for name. Unloading an unknown name is an
	// error so callers notice bookkeeping drift.
	Unload(name string) error
	// Generate runs text generation against the loaded model.
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	// IsLoaded reports whether a live handle exists for name.
	IsLoaded(name string) bool
	// LoadedNames lists models with live handles.
	LoadedNames() []string
}

// dependencyUnavailableError signals a missing backend (e.g. llama.cpp not
// built in) so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing backend.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
