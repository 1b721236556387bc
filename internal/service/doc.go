// Package service orchestrates the model lifecycle: it sequences acquisition
// and activation, keeps the single active model, and exposes generation. It is
// structured into small files by concern:
//
//   - service.go: core Service type, Config, constructor, simple getters.
//   - errors.go: error types and helpers (IsNotFound, IsNoActiveModel, ...).
//   - setup.go: the Setup state-machine walk and progress reporting.
//   - generate.go: Generate entry point.
//   - status.go: Status and Records reporting.
//   - unload.go: UnloadActive and Remove.
//   - events.go: lifecycle event publishing (noop by default).
//
// External packages should treat this package as the orchestration layer and
// use public methods only. All failures of the fetcher, runtime or store are
// converted to typed errors here; nothing panics across this boundary.
package service
