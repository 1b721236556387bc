package model

import (
	"time"

	"llamad/pkg/types"
)

// State represents the lifecycle state of a model record.
type State string

const (
	StateNotDownloaded State = "not_downloaded"
	StateDownloading   State = "downloading"
	StateDownloaded    State = "downloaded"
	StateLoading       State = "loading"
	StateLoaded        State = "loaded"
	StateError         State = "error"
)

// invalidTransitionError flags an out-of-order state transition instead of
// silently coercing state.
type invalidTransitionError struct {
	from, to State
}

func (e invalidTransitionError) Error() string {
	return "invalid transition: " + string(e.from) + " -> " + string(e.to)
}

// IsInvalidTransition reports whether err is a rejected state transition.
func IsInvalidTransition(err error) bool {
	_, ok := err.(invalidTransitionError)
	return ok
}

// Record is the mutable lifecycle wrapper around a descriptor. It is mutated
// only through the Mark* transition methods; the orchestrator owns all calls.
type Record struct {
	desc        types.Descriptor
	state       State
	errMsg      string
	activatedAt time.Time
}

// NewRecord creates a fresh record in the not_downloaded state.
func NewRecord(desc types.Descriptor) *Record {
	return &Record{desc: desc, state: StateNotDownloaded}
}

func (r *Record) Descriptor() types.Descriptor { return r.desc }
func (r *Record) Name() string                 { return r.desc.Name }
func (r *Record) State() State                 { return r.state }
func (r *Record) ErrorMessage() string         { return r.errMsg }
func (r *Record) ActivatedAt() time.Time       { return r.activatedAt }

// Ready reports whether the record can serve generation.
func (r *Record) Ready() bool { return r.state == StateLoaded }

// MarkDownloading is valid from not_downloaded or error; clears the error.
func (r *Record) MarkDownloading() error {
	if r.state != StateNotDownloaded && r.state != StateError {
		return invalidTransitionError{from: r.state, to: StateDownloading}
	}
	r.state = StateDownloading
	r.errMsg = ""
	r.activatedAt = time.Time{}
	return nil
}

// MarkDownloaded is valid from downloading.
func (r *Record) MarkDownloaded() error {
	if r.state != StateDownloading {
		return invalidTransitionError{from: r.state, to: StateDownloaded}
	}
	r.state = StateDownloaded
	r.errMsg = ""
	return nil
}

// MarkLoading is valid from downloaded or error, and from loaded when the
// runtime lost its handle (process restart) and the load step must be rerun.
// Clears the error and any previous activation timestamp.
func (r *Record) MarkLoading() error {
	if r.state != StateDownloaded && r.state != StateError && r.state != StateLoaded {
		return invalidTransitionError{from: r.state, to: StateLoading}
	}
	r.state = StateLoading
	r.errMsg = ""
	r.activatedAt = time.Time{}
	return nil
}

// MarkLoaded is valid from loading; stamps the activation time.
func (r *Record) MarkLoaded() error {
	if r.state != StateLoading {
		return invalidTransitionError{from: r.state, to: StateLoaded}
	}
	r.state = StateLoaded
	r.errMsg = ""
	r.activatedAt = time.Now()
	return nil
}

// MarkError is valid from any state except loaded. It records the message and
// keeps the activation timestamp untouched.
func (r *Record) MarkError(msg string) error {
	if r.state == StateLoaded {
		return invalidTransitionError{from: r.state, to: StateError}
	}
	r.state = StateError
	r.errMsg = msg
	return nil
}
