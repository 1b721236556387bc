package service

// notFoundError signals a name unknown to both store and catalog (404).
type notFoundError struct{ name string }

func (e notFoundError) Error() string { return "model not found: " + e.name }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(name string) error { return notFoundError{name: name} }

// IsNotFound reports whether err indicates an unknown model name.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// acquisitionError signals a failed artifact download.
type acquisitionError struct{ msg string }

func (e acquisitionError) Error() string { return e.msg }

// IsAcquisitionFailed reports whether err came from the download step.
func IsAcquisitionFailed(err error) bool {
	_, ok := err.(acquisitionError)
	return ok
}

// activationError signals a failed model load or handle release.
type activationError struct{ msg string }

func (e activationError) Error() string { return e.msg }

// IsActivationFailed reports whether err came from the load/unload step.
func IsActivationFailed(err error) bool {
	_, ok := err.(activationError)
	return ok
}

// noActiveModelError signals generation with nothing loaded (409).
type noActiveModelError struct{}

func (noActiveModelError) Error() string { return "no model loaded" }

// ErrNoActiveModel constructs a noActiveModelError.
func ErrNoActiveModel() error { return noActiveModelError{} }

// IsNoActiveModel reports whether err indicates an empty active slot.
func IsNoActiveModel(err error) bool {
	_, ok := err.(noActiveModelError)
	return ok
}

// generationError signals a runtime failure during generation.
type generationError struct{ msg string }

func (e generationError) Error() string { return e.msg }

// IsGenerationFailed reports whether err came from the generation call.
func IsGenerationFailed(err error) bool {
	_, ok := err.(generationError)
	return ok
}

// persistenceError signals a registry document read/write failure.
type persistenceError struct{ msg string }

func (e persistenceError) Error() string { return e.msg }

// IsPersistenceFailed reports whether err came from the record store.
func IsPersistenceFailed(err error) bool {
	_, ok := err.(persistenceError)
	return ok
}
