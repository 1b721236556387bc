package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llamad/internal/catalog"
	"llamad/internal/service"
	"llamad/pkg/types"
)

// Service defines the orchestrator methods required by the HTTP layer.
type Service interface {
	Setup(ctx context.Context, name string, onProgress func(types.ProgressUpdate)) (service.SetupResult, error)
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Status() types.StatusResponse
	Records() ([]types.ModelStatus, error)
	Remove(name string) error
	Ready() bool
	Catalog() *catalog.Catalog
}

// Health defines the reporter consumed by /healthz.
type Health interface {
	Report() types.HealthResponse
}

// NewMux builds the router with all API routes and middlewares.
func NewMux(svc Service, health Health) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/setup", handleSetup(svc))
	r.Post("/generate", handleGenerate(svc))
	r.Get("/status", handleStatus(svc))
	r.Get("/models", handleModels(svc))
	r.Delete("/models/{name}", handleRemove(svc))
	r.Get("/registry", handleRegistry(svc))
	r.Get("/registry/search", handleRegistrySearch(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		report := health.Report()
		status := http.StatusOK
		if report.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no model loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleSetup downloads and loads a model.
//
// @Summary  Set up a model
// @Accept   json
// @Produce  json
// @Param    request body types.SetupRequest true "model to set up"
// @Param    verbose query bool false "include the progress trace"
// @Success  200 {object} types.SetupResponse
// @Failure  404 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Router   /setup [post]
func handleSetup(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SetupRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeJSONError(w, http.StatusBadRequest, "name is required")
			return
		}
		start := time.Now()
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Setup(ctx, req.Name, nil)
		countSetup(err)
		if err != nil {
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			logRequest(r, "setup", req.Name, status, start, err)
			return
		}
		resp := types.SetupResponse{Success: true, Model: res.Model, State: res.State}
		if r.URL.Query().Get("verbose") == "1" {
			resp.Progress = res.Progress
		}
		writeJSON(w, http.StatusOK, resp)
		logRequest(r, "setup", req.Name, http.StatusOK, start, nil)
	}
}

// handleGenerate runs text generation against the active model.
//
// @Summary  Generate text
// @Accept   json
// @Produce  json
// @Param    request body types.GenerateRequest true "generation request"
// @Success  200 {object} types.GenerateResponse
// @Failure  409 {object} types.ErrorResponse
// @Router   /generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		start := time.Now()
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Generate(ctx, req)
		countGeneration(err)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			logRequest(r, "generate", "", status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logRequest(r, "generate", resp.ModelName, http.StatusOK, start, nil)
	}
}

// handleStatus reports the active model.
//
// @Summary  Current status
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Router   /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

// handleModels lists persisted model records.
//
// @Summary  List model records
// @Produce  json
// @Success  200 {object} types.ModelsResponse
// @Router   /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.Records()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if recs == nil {
			recs = []types.ModelStatus{}
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: recs})
	}
}

// handleRemove deletes a record and its artifacts.
//
// @Summary  Remove a model
// @Produce  json
// @Param    name path string true "model name"
// @Success  204
// @Failure  404 {object} types.ErrorResponse
// @Router   /models/{name} [delete]
func handleRemove(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		start := time.Now()
		if err := svc.Remove(name); err != nil {
			status := statusForError(err)
			writeJSONError(w, status, err.Error())
			logRequest(r, "remove", name, status, start, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logRequest(r, "remove", name, http.StatusNoContent, start, nil)
	}
}

// handleRegistry lists catalog entries; ?tag= and ?verified=1 filter.
//
// @Summary  Browse the catalog
// @Produce  json
// @Param    tag query string false "filter by tag"
// @Param    verified query bool false "only verified entries"
// @Success  200 {object} types.RegistryResponse
// @Router   /registry [get]
func handleRegistry(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := svc.Catalog()
		var entries []types.RegistryEntry
		switch {
		case r.URL.Query().Get("tag") != "":
			entries = cat.ByTag(r.URL.Query().Get("tag"))
		case r.URL.Query().Get("verified") == "1":
			entries = cat.Verified()
		default:
			entries = cat.All()
		}
		if entries == nil {
			entries = []types.RegistryEntry{}
		}
		writeJSON(w, http.StatusOK, types.RegistryResponse{Entries: entries})
	}
}

// handleRegistrySearch searches the catalog.
//
// @Summary  Search the catalog
// @Produce  json
// @Param    q query string true "query"
// @Success  200 {object} types.RegistryResponse
// @Router   /registry/search [get]
func handleRegistrySearch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := svc.Catalog().Search(r.URL.Query().Get("q"))
		if entries == nil {
			entries = []types.RegistryEntry{}
		}
		writeJSON(w, http.StatusOK, types.RegistryResponse{Entries: entries})
	}
}

// decodeJSON enforces content type and body size, decoding into dst.
// It writes the error response itself and reports success.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing more we can do than note it.
		if zlog != nil {
			zlog.Error().Err(err).Msg("response encode failed")
		}
	}
}
