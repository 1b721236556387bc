// Package fetch acquires model artifacts into local storage.
package fetch

import (
	"context"

	"llamad/pkg/types"
)

// ProgressFunc receives download progress as a percentage in [0,100].
// Implementations must tolerate a nil func.
type ProgressFunc func(percent float64)

// Fetcher downloads the artifacts a descriptor requires and answers
// idempotent presence probes against local storage.
type Fetcher interface {
	// Download fetches every required artifact into the descriptor's local
	// path. It returns an error when the minimum artifact set could not be
	// produced. Progress is best-effort and monotonically non-decreasing.
	Download(ctx context.Context, desc types.Descriptor, onProgress ProgressFunc) error
	// IsDownloaded reports whether every required artifact is present.
	IsDownloaded(desc types.Descriptor) bool
	// Progress reports the fraction of required artifacts present, in [0,100].
	Progress(desc types.Descriptor) float64
}
