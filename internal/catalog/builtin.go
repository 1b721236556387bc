package catalog

import (
	"path/filepath"

	"llamad/pkg/types"
)

// BuiltinEntries is the daemon's model phonebook. Local paths are rooted at
// modelsDir so the whole table relocates with one flag.
func BuiltinEntries(modelsDir string) []types.RegistryEntry {
	entry := func(name, source, version, desc string, kind types.GenerationKind, size int64, artifacts, tags []string, popularity int, verified bool) types.RegistryEntry {
		return types.RegistryEntry{
			Descriptor: types.Descriptor{
				Name:        name,
				SourceID:    source,
				Version:     version,
				Description: desc,
				LocalPath:   filepath.Join(modelsDir, name),
				Kind:        kind,
				SizeBytes:   size,
				Artifacts:   artifacts,
			},
			Tags:       tags,
			Popularity: popularity,
			Verified:   verified,
		}
	}
	return []types.RegistryEntry{
		entry("gpt2-small", "openai-community/gpt2", "1.0",
			"GPT-2 small, 124M parameters. Fast, good for testing.",
			types.KindTextGeneration, 548_105_171,
			[]string{"model.gguf", "tokenizer.json"},
			[]string{"gpt2", "small", "english"}, 90, true),
		entry("llama-7b-chat", "meta-llama/Llama-2-7b-chat", "2.0",
			"Llama 2 7B chat-tuned. General-purpose assistant model.",
			types.KindTextGeneration, 3_825_000_000,
			[]string{"model.gguf", "tokenizer.json"},
			[]string{"llama", "chat", "7b"}, 100, true),
		entry("tinyllama-1.1b", "TinyLlama/TinyLlama-1.1B-Chat-v1.0", "1.0",
			"TinyLlama 1.1B chat. Smallest usable chat model.",
			types.KindTextGeneration, 669_000_000,
			[]string{"model.gguf", "tokenizer.json"},
			[]string{"llama", "tiny", "chat"}, 80, true),
		entry("flan-t5-base", "google/flan-t5-base", "1.0",
			"FLAN-T5 base, instruction-tuned text-to-text model.",
			types.KindTextToTextGeneration, 990_000_000,
			[]string{"model.gguf", "tokenizer.json", "config.json"},
			[]string{"t5", "flan", "seq2seq"}, 60, true),
		entry("minilm-embed", "sentence-transformers/all-MiniLM-L6-v2", "1.0",
			"MiniLM sentence embeddings for feature extraction.",
			types.KindFeatureExtraction, 91_000_000,
			[]string{"model.gguf", "tokenizer.json"},
			[]string{"embeddings", "minilm"}, 50, false),
	}
}
