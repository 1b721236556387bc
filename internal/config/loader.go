package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr          string  `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir     string  `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	RegistryPath  string  `json:"registry_path" yaml:"registry_path" toml:"registry_path"`
	ArtifactBase  string  `json:"artifact_base_url" yaml:"artifact_base_url" toml:"artifact_base_url"`
	DefaultModel  string  `json:"default_model" yaml:"default_model" toml:"default_model"`
	HeapLimitMB   int     `json:"heap_limit_mb" yaml:"heap_limit_mb" toml:"heap_limit_mb"`
	DegradedRatio float64 `json:"degraded_ratio" yaml:"degraded_ratio" toml:"degraded_ratio"`
	LlamaContext  int     `json:"llama_context" yaml:"llama_context" toml:"llama_context"`
	LlamaThreads  int     `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
