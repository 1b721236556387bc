package types

// SetupRequest asks the daemon to download and load a model.
type SetupRequest struct {
	// Model name from the registry.
	// example: gpt2-small
	Name string `json:"name" example:"gpt2-small"`
}

// SetupResponse reports the outcome of a setup call.
type SetupResponse struct {
	// Whether setup reached the loaded state.
	// example: true
	Success bool `json:"success" example:"true"`
	// Name of the model that was set up.
	// example: gpt2-small
	Model string `json:"model,omitempty" example:"gpt2-small"`
	// Final lifecycle state of the record.
	// example: loaded
	State string `json:"state,omitempty" example:"loaded"`
	// Error message when success is false.
	Error string `json:"error,omitempty"`
	// Progress trace captured during setup, present with ?verbose=1.
	Progress []ProgressUpdate `json:"progress,omitempty"`
}

// ProgressUpdate is one step of a setup progress trace.
type ProgressUpdate struct {
	// Overall completion percentage in [0,100].
	// example: 70
	Percent float64 `json:"percent" example:"70"`
	// Short phase label.
	// example: loading
	Phase string `json:"phase" example:"loading"`
}

// ModelStatus summarizes one persisted model record.
type ModelStatus struct {
	// Model name.
	// example: gpt2-small
	Name string `json:"name" example:"gpt2-small"`
	// Lifecycle state (not_downloaded, downloading, downloaded, loading, loaded, error).
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Error message, present when state is error.
	Error string `json:"error,omitempty"`
	// Time the model entered the loaded state (unix seconds), zero otherwise.
	// example: 1700000000
	ActivatedAt int64 `json:"activated_at,omitempty" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Name of the active model, empty when none.
	// example: gpt2-small
	ActiveModel string `json:"active_model,omitempty" example:"gpt2-small"`
	// Lifecycle state of the active model.
	// example: loaded
	State string `json:"state,omitempty" example:"loaded"`
	// True when the active model can serve generation.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ModelsResponse wraps the list of known model records.
type ModelsResponse struct {
	// Persisted model records.
	Models []ModelStatus `json:"models"`
}

// RegistryEntry is the catalog view of a model available for setup.
type RegistryEntry struct {
	// Descriptor for the model.
	Descriptor Descriptor `json:"descriptor"`
	// Searchable tags.
	// example: ["gpt2","small","english"]
	Tags []string `json:"tags,omitempty" example:"[\"gpt2\",\"small\",\"english\"]"`
	// Relative popularity, used only for display ordering.
	// example: 90
	Popularity int `json:"popularity" example:"90"`
	// Whether the entry has been verified by the maintainers.
	// example: true
	Verified bool `json:"verified" example:"true"`
}

// RegistryResponse wraps catalog entries returned by GET /registry.
type RegistryResponse struct {
	// Catalog entries ordered by popularity.
	Entries []RegistryEntry `json:"entries"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	// Aggregate health: healthy, degraded or unhealthy.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Heap in use as a fraction of the configured threshold base.
	// example: 0.12
	HeapRatio float64 `json:"heap_ratio" example:"0.12"`
	// Number of records currently in the loaded state.
	// example: 1
	ReadyModels int `json:"ready_models" example:"1"`
	// Last error recorded by any component, empty when none.
	LastError string `json:"last_error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: nope
	Error string `json:"error" example:"model not found: nope"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
