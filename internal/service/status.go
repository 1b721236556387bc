package service

import (
	"time"

	"llamad/internal/model"
	"llamad/pkg/types"
)

// Status is a pure read of the active-record state; no I/O.
func (s *Service) Status() types.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := types.StatusResponse{
		UptimeSeconds:  int64(time.Since(s.start).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if s.active != nil {
		resp.ActiveModel = s.active.Name()
		resp.State = string(s.active.State())
		resp.Ready = s.active.Ready()
	}
	return resp
}

// Records lists every persisted record as a status projection.
func (s *Service) Records() ([]types.ModelStatus, error) {
	recs, err := s.store.All()
	if err != nil {
		s.log.Error().Err(err).Msg("registry read failed")
		return nil, persistenceError{msg: err.Error()}
	}
	out := make([]types.ModelStatus, 0, len(recs))
	for _, r := range recs {
		ms := types.ModelStatus{
			Name:  r.Name(),
			State: string(r.State()),
			Error: r.ErrorMessage(),
		}
		if !r.ActivatedAt().IsZero() {
			ms.ActivatedAt = r.ActivatedAt().Unix()
		}
		out = append(out, ms)
	}
	return out, nil
}

// ReadyCount reports how many persisted records are in the loaded state.
func (s *Service) ReadyCount() int {
	recs, err := s.store.All()
	if err != nil {
		return 0
	}
	n := 0
	for _, r := range recs {
		if r.State() == model.StateLoaded {
			n++
		}
	}
	return n
}
