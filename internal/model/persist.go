package model

import (
	"time"

	"llamad/pkg/types"
)

// Persisted is the JSON shape of a record inside the registry document.
type Persisted struct {
	Descriptor  types.Descriptor `json:"descriptor"`
	State       State            `json:"state"`
	Error       string           `json:"error_message,omitempty"`
	ActivatedAt int64            `json:"activated_at,omitempty"`
}

// ToPersisted projects the record for storage.
func (r *Record) ToPersisted() Persisted {
	p := Persisted{Descriptor: r.desc, State: r.state, Error: r.errMsg}
	if !r.activatedAt.IsZero() {
		p.ActivatedAt = r.activatedAt.Unix()
	}
	return p
}

// FromPersisted reconstructs a record from its stored shape. Unknown states
// are preserved as-is; transition methods will reject them.
func FromPersisted(p Persisted) *Record {
	r := &Record{desc: p.Descriptor, state: p.State, errMsg: p.Error}
	if p.ActivatedAt != 0 {
		r.activatedAt = time.Unix(p.ActivatedAt, 0)
	}
	if r.state == "" {
		r.state = StateNotDownloaded
	}
	return r
}
