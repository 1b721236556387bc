package types

// Descriptor identifies a model and where to fetch and store it.
// It is immutable once constructed; validation happens in internal/model.
type Descriptor struct {
	// Unique model name used as the registry key.
	// example: gpt2-small
	Name string `json:"name" example:"gpt2-small"`
	// Identifier used by the acquirer to locate the artifacts upstream.
	// example: openai-community/gpt2
	SourceID string `json:"source_id" example:"openai-community/gpt2"`
	// Version string of the model.
	// example: 1.0
	Version string `json:"version" example:"1.0"`
	// Human-friendly description.
	// example: GPT-2 small, 124M parameters
	Description string `json:"description,omitempty" example:"GPT-2 small, 124M parameters"`
	// Directory on local disk where artifacts are stored.
	// example: /var/lib/llamad/models/gpt2-small
	LocalPath string `json:"local_path" example:"/var/lib/llamad/models/gpt2-small"`
	// Generation kind tag.
	// example: text-generation
	Kind GenerationKind `json:"kind" example:"text-generation"`
	// Declared size in bytes, zero when unknown.
	// example: 548105171
	SizeBytes int64 `json:"size_bytes,omitempty" example:"548105171"`
	// Ordered list of artifact filenames required for activation.
	// example: ["model.gguf","tokenizer.json"]
	Artifacts []string `json:"artifacts" example:"[\"model.gguf\",\"tokenizer.json\"]"`
}

// GenerationKind tags what a model produces.
type GenerationKind string

const (
	KindTextGeneration       GenerationKind = "text-generation"
	KindTextToTextGeneration GenerationKind = "text-to-text-generation"
	KindFeatureExtraction    GenerationKind = "feature-extraction"
)

// GenerateRequest is the payload for a text generation call.
type GenerateRequest struct {
	// Required prompt text.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Optional stop sequences.
	// example: ["\n\n","END"]
	Stop []string `json:"stop,omitempty" example:"[\"\\n\\n\",\"END\"]"`
	// Random seed; 0 lets the runtime choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}

// GenerateResponse is the result of a successful generation.
type GenerateResponse struct {
	// Generated text.
	// example: Salt wind over waves...
	Text string `json:"text" example:"Salt wind over waves..."`
	// Number of tokens consumed by prompt plus completion.
	// example: 42
	TokensUsed int `json:"tokens_used" example:"42"`
	// Wall-clock processing time in milliseconds.
	// example: 1250
	ProcessingMs int64 `json:"processing_time_ms" example:"1250"`
	// Name of the model that served the request.
	// example: gpt2-small
	ModelName string `json:"model" example:"gpt2-small"`
	// Server time the response was produced (unix seconds).
	// example: 1700000000
	Timestamp int64 `json:"timestamp" example:"1700000000"`
}
