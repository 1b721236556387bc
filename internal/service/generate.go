package service

import (
	"context"
	"strings"

	"llamad/internal/runtime"
	"llamad/pkg/types"
)

// Generate serves a generation request from the active model. It fails with a
// no-active-model error when nothing is loaded and never lets a runtime fault
// escape unwrapped.
func (s *Service) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return types.GenerateResponse{}, generationError{msg: "prompt is required"}
	}
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil || !active.Ready() {
		return types.GenerateResponse{}, noActiveModelError{}
	}
	resp, err := s.rt.Generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return types.GenerateResponse{}, ctx.Err()
		}
		if runtime.IsDependencyUnavailable(err) {
			return types.GenerateResponse{}, err
		}
		return types.GenerateResponse{}, generationError{msg: "generation failed: " + err.Error()}
	}
	if resp.ModelName == "" {
		resp.ModelName = active.Name()
	}
	return resp, nil
}
