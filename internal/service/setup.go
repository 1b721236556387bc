package service

import (
	"context"

	"llamad/internal/model"
	"llamad/internal/runtime"
	"llamad/pkg/types"
)

// SetupResult reports the outcome of a Setup call. State is the record's
// final lifecycle state, also populated on failure.
type SetupResult struct {
	Model    string
	State    string
	Progress []types.ProgressUpdate
}

// progressSink clamps reported percentages so they never decrease within one
// Setup call and records the trace for verbose responses.
type progressSink struct {
	fn    func(types.ProgressUpdate)
	last  float64
	trace []types.ProgressUpdate
}

func (p *progressSink) emit(pct float64, phase string) {
	if pct < p.last {
		pct = p.last
	}
	if pct > 100 {
		pct = 100
	}
	p.last = pct
	u := types.ProgressUpdate{Percent: pct, Phase: phase}
	p.trace = append(p.trace, u)
	if p.fn != nil {
		p.fn(u)
	}
}

// Setup resolves the record for name and drives it to loaded: download if the
// artifacts are missing, then load and make it the active model. Every
// transition is persisted before the next step runs. onProgress is optional;
// reported percentages are monotonically non-decreasing and end at 100 on
// success. Concurrent Setup calls for the same name are serialized.
func (s *Service) Setup(ctx context.Context, name string, onProgress func(types.ProgressUpdate)) (SetupResult, error) {
	lock := s.lockName(name)
	lock.Lock()
	defer lock.Unlock()

	rec, ok, err := s.store.Get(name)
	if err != nil {
		s.log.Error().Err(err).Str("model", name).Msg("registry read failed")
		return SetupResult{Model: name}, persistenceError{msg: err.Error()}
	}
	if !ok {
		return SetupResult{Model: name}, ErrNotFound(name)
	}
	s.pub.Publish(Event{Name: "setup_start", Model: name})
	prog := &progressSink{fn: onProgress}
	fail := func(err error) (SetupResult, error) {
		s.pub.Publish(Event{Name: "setup_error", Model: name, Fields: map[string]any{"error": err.Error()}})
		return SetupResult{Model: name, State: string(rec.State()), Progress: prog.trace}, err
	}

	// Fast path: record loaded and the runtime still holds a live handle.
	// Re-activating costs nothing; no download or load is repeated.
	if rec.State() == model.StateLoaded && s.rt.IsLoaded(name) {
		if err := s.releasePrevious(name); err != nil {
			return fail(err)
		}
		s.setActive(rec)
		prog.emit(100, "ready")
		return SetupResult{Model: name, State: string(rec.State()), Progress: prog.trace}, nil
	}

	// A persisted in-flight state means a previous process died mid-step;
	// flag it so the strict state machine permits a retry.
	switch rec.State() {
	case model.StateDownloading, model.StateLoading:
		_ = rec.MarkError("interrupted before completion")
		if err := s.save(rec); err != nil {
			return fail(err)
		}
	}

	prog.emit(0, "initializing")
	desc := rec.Descriptor()

	if rec.State() == model.StateNotDownloaded ||
		(rec.State() == model.StateError && !s.fetcher.IsDownloaded(desc)) {
		if err := rec.MarkDownloading(); err != nil {
			return fail(err)
		}
		if err := s.save(rec); err != nil {
			return fail(err)
		}
		s.pub.Publish(Event{Name: "download_start", Model: name})
		// Acquisition occupies the [10,70] band of overall progress.
		prog.emit(10, "downloading")
		dlErr := s.fetcher.Download(ctx, desc, func(pct float64) {
			prog.emit(10+pct*0.6, "downloading")
		})
		if dlErr != nil {
			_ = rec.MarkError(dlErr.Error())
			if serr := s.save(rec); serr != nil {
				return fail(serr)
			}
			return fail(acquisitionError{msg: "download failed: " + dlErr.Error()})
		}
		if err := rec.MarkDownloaded(); err != nil {
			return fail(err)
		}
		if err := s.save(rec); err != nil {
			return fail(err)
		}
		s.pub.Publish(Event{Name: "download_done", Model: name})
	}

	// Load step. Reached with state downloaded, error after a failed load, or
	// loaded with no live handle (process restart) which resumes from here.
	prog.emit(70, "loading")
	if err := rec.MarkLoading(); err != nil {
		return fail(err)
	}
	if err := s.save(rec); err != nil {
		return fail(err)
	}
	if err := s.releasePrevious(name); err != nil {
		_ = rec.MarkError(err.Error())
		if serr := s.save(rec); serr != nil {
			return fail(serr)
		}
		return fail(err)
	}
	s.pub.Publish(Event{Name: "load_start", Model: name})
	if err := s.rt.Load(ctx, desc); err != nil {
		_ = rec.MarkError(err.Error())
		if serr := s.save(rec); serr != nil {
			return fail(serr)
		}
		if runtime.IsDependencyUnavailable(err) {
			return fail(err)
		}
		return fail(activationError{msg: "load failed: " + err.Error()})
	}
	if err := rec.MarkLoaded(); err != nil {
		return fail(err)
	}
	if err := s.save(rec); err != nil {
		return fail(err)
	}
	s.setActive(rec)
	prog.emit(100, "ready")
	s.pub.Publish(Event{Name: "setup_done", Model: name})
	s.log.Info().Str("model", name).Msg("model ready")
	return SetupResult{Model: name, State: string(rec.State()), Progress: prog.trace}, nil
}

// releasePrevious unloads the current active model when it differs from next.
// The active slot is only cleared if the runtime confirms the release, so the
// service never reports an active model the runtime has already discarded.
func (s *Service) releasePrevious(next string) error {
	s.mu.Lock()
	prev := s.active
	s.mu.Unlock()
	if prev == nil || prev.Name() == next {
		return nil
	}
	if err := s.rt.Unload(prev.Name()); err != nil {
		return activationError{msg: "release " + prev.Name() + ": " + err.Error()}
	}
	s.mu.Lock()
	if s.active == prev {
		s.active = nil
	}
	s.mu.Unlock()
	s.pub.Publish(Event{Name: "unload_done", Model: prev.Name()})
	return nil
}

func (s *Service) setActive(rec *model.Record) {
	s.mu.Lock()
	s.active = rec
	s.mu.Unlock()
}

// save persists the record and logs loudly on failure: in-memory and stored
// state have diverged, and the stored (stale) state wins on the next Get.
func (s *Service) save(rec *model.Record) error {
	if err := s.store.Save(rec); err != nil {
		s.log.Error().Err(err).Str("model", rec.Name()).Str("state", string(rec.State())).
			Msg("registry save failed; persisted state is now stale")
		return persistenceError{msg: err.Error()}
	}
	return nil
}
