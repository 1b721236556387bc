package model

import (
	"fmt"
	"strings"

	"llamad/pkg/types"
)

// invalidDescriptorError aggregates every missing required field so a caller
// sees the full validation failure in one error.
type invalidDescriptorError struct{ missing []string }

func (e invalidDescriptorError) Error() string {
	return "invalid descriptor: missing " + strings.Join(e.missing, ", ")
}

// IsInvalidDescriptor reports whether err came from descriptor validation.
func IsInvalidDescriptor(err error) bool {
	_, ok := err.(invalidDescriptorError)
	return ok
}

// NewDescriptor validates all required fields in one place and returns the
// descriptor by value. Name, source id, version, local path, kind and the
// artifact list must all be non-empty.
func NewDescriptor(d types.Descriptor) (types.Descriptor, error) {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.SourceID) == "" {
		missing = append(missing, "source_id")
	}
	if strings.TrimSpace(d.Version) == "" {
		missing = append(missing, "version")
	}
	if strings.TrimSpace(d.LocalPath) == "" {
		missing = append(missing, "local_path")
	}
	if d.Kind == "" {
		missing = append(missing, "kind")
	}
	if len(d.Artifacts) == 0 {
		missing = append(missing, "artifacts")
	}
	if len(missing) > 0 {
		return types.Descriptor{}, invalidDescriptorError{missing: missing}
	}
	switch d.Kind {
	case types.KindTextGeneration, types.KindTextToTextGeneration, types.KindFeatureExtraction:
	default:
		return types.Descriptor{}, fmt.Errorf("invalid descriptor: unknown kind %q", d.Kind)
	}
	return d, nil
}
