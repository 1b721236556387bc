package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"llamad/internal/catalog"
	"llamad/internal/common/fsutil"
	"llamad/internal/config"
	"llamad/internal/fetch"
	"llamad/internal/health"
	"llamad/internal/httpapi"
	"llamad/internal/runtime"
	"llamad/internal/service"
	"llamad/internal/store"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envOr("LLAMAD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	modelsDir := flag.String("models-dir", envOr("LLAMAD_MODELS_DIR", "~/models/llamad"), "Directory model artifacts are downloaded into")
	registryPath := flag.String("registry-path", envOr("LLAMAD_REGISTRY", ""), "Path of the model record document (default <models-dir>/registry.json)")
	artifactBase := flag.String("artifact-base-url", envOr("LLAMAD_ARTIFACT_BASE", "https://huggingface.co"), "Base URL artifacts are fetched from")
	defaultModel := flag.String("default-model", envOr("LLAMAD_DEFAULT_MODEL", ""), "Model to set up at startup (optional)")
	configPath := flag.String("config", envOr("LLAMAD_CONFIG", ""), "Optional config file (.yaml/.json/.toml); flags win over file values")
	pretty := flag.Bool("pretty-log", false, "Human-readable console log instead of JSON")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	var fileCfg config.Config
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		fileCfg = c
	}
	// File values only fill flags left at their defaults.
	flagSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagSet[f.Name] = true })
	if !flagSet["addr"] && fileCfg.Addr != "" {
		*addr = fileCfg.Addr
	}
	if !flagSet["models-dir"] && fileCfg.ModelsDir != "" {
		*modelsDir = fileCfg.ModelsDir
	}
	if !flagSet["registry-path"] && fileCfg.RegistryPath != "" {
		*registryPath = fileCfg.RegistryPath
	}
	if !flagSet["artifact-base-url"] && fileCfg.ArtifactBase != "" {
		*artifactBase = fileCfg.ArtifactBase
	}
	if !flagSet["default-model"] && fileCfg.DefaultModel != "" {
		*defaultModel = fileCfg.DefaultModel
	}

	dir, err := fsutil.ExpandHome(*modelsDir)
	if err != nil {
		log.Fatalf("models dir: %v", err)
	}
	regPath := *registryPath
	if regPath == "" {
		regPath = filepath.Join(dir, "registry.json")
	}

	cat := catalog.New(catalog.BuiltinEntries(dir))
	st := store.New(regPath, cat, logger)
	fetcher := fetch.NewHTTP(*artifactBase, logger)
	rt := runtime.NewLlama(fileCfg.LlamaContext, fileCfg.LlamaThreads)

	svc := service.New(service.Config{
		Store:   st,
		Catalog: cat,
		Fetcher: fetcher,
		Runtime: rt,
		Logger:  logger,
	})
	reporter := health.New(svc, health.ReporterConfig{
		HeapLimitBytes: uint64(fileCfg.HeapLimitMB) << 20,
		DegradedAt:     fileCfg.DegradedRatio,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger)

	if *defaultModel != "" {
		if _, err := svc.Setup(baseCtx, *defaultModel, nil); err != nil {
			reporter.RecordError(err.Error())
			logger.Error().Err(err).Str("model", *defaultModel).Msg("startup setup failed")
		}
	}

	mux := httpapi.NewMux(svc, reporter)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *addr).Str("models_dir", dir).Msg("llamad listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase() // aborts in-flight downloads and loads
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := svc.UnloadActive(); err != nil {
		logger.Warn().Err(err).Msg("unload on shutdown failed")
	}
}
