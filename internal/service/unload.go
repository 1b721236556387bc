package service

import (
	"errors"

	"llamad/internal/store"
)

// UnloadActive releases the active model's runtime handle. A no-op success
// when nothing is active. The active slot is cleared only after the runtime
// confirms the release.
func (s *Service) UnloadActive() error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		return nil
	}
	if err := s.rt.Unload(active.Name()); err != nil {
		return activationError{msg: "release " + active.Name() + ": " + err.Error()}
	}
	s.mu.Lock()
	if s.active == active {
		s.active = nil
	}
	s.mu.Unlock()
	s.pub.Publish(Event{Name: "unload_done", Model: active.Name()})
	return nil
}

// Remove deletes the persisted record and its on-disk artifacts. The active
// model is released first when it is the one being removed.
func (s *Service) Remove(name string) error {
	lock := s.lockName(name)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	isActive := s.active != nil && s.active.Name() == name
	s.mu.RUnlock()
	if isActive {
		if err := s.UnloadActive(); err != nil {
			return err
		}
	}
	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound(name)
		}
		return persistenceError{msg: err.Error()}
	}
	s.pub.Publish(Event{Name: "remove_done", Model: name})
	return nil
}
