package triptych

import (
	"context"

	"github.com/triptychhq/triptych/utils/stream"
)

// LanguageModel is the remote generation collaborator. A model is bound to a
// provider and model ID at construction; the pipeline treats both as opaque.
type LanguageModel interface {
	Provider() string
	ModelID() string
	// Generate performs a single-shot request and returns the final text.
	Generate(ctx context.Context, input *LanguageModelInput) (*ModelResponse, error)
	// Stream performs a streaming request. The returned stream yields delta
	// fragments whose concatenation is the final text; the stream terminating
	// without error signals completion.
	Stream(ctx context.Context, input *LanguageModelInput) (*LanguageModelStream, error)
}

// LanguageModelInput defines the input for a generation request.
type LanguageModelInput struct {
	// A system prompt is a way of providing context and instructions to the model.
	SystemPrompt *string `json:"system_prompt,omitempty"`
	// The user prompt text.
	Prompt string `json:"prompt"`
	// Amount of randomness injected into the response. Ranges from 0.0 to 2.0.
	// The variation flow raises this to diverge from the original artifact.
	Temperature *float64 `json:"temperature,omitempty"`
}

// ModelResponse represents the final response of a single-shot request.
type ModelResponse struct {
	Text  string      `json:"text"`
	Usage *ModelUsage `json:"usage,omitempty"`
}

// PartialModelResponse represents one streaming event. Text is a delta
// fragment to append, never a cumulative snapshot.
type PartialModelResponse struct {
	Text  string      `json:"text,omitempty"`
	Usage *ModelUsage `json:"usage,omitempty"`
}

// ModelUsage represents token usage reported by the provider.
type ModelUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates usage from another report.
func (u *ModelUsage) Add(other *ModelUsage) {
	if other == nil {
		return
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// LanguageModelStream is a lazy, finite, non-restartable sequence of partial
// responses terminating in either natural completion or an error.
type LanguageModelStream = stream.Stream[*PartialModelResponse]
