// Package googleapi holds the wire types for the Gemini generateContent API,
// trimmed to the text modality.
package googleapi

// Config for models.generate_content parameters.
type GenerateContentParameters struct {
	// Content of the request.
	Contents []Content `json:"contents"`
	// Instructions for the model to steer it toward better performance.
	SystemInstruction *Content `json:"systemInstruction,omitempty"`
	// Configuration that contains optional model parameters.
	GenerationConfig *GenerateContentConfig `json:"generationConfig,omitempty"`
}

// Contains the multi-part content of a message.
type Content struct {
	// List of parts that constitute a single message.
	Parts []Part `json:"parts,omitempty"`
	// Optional. The producer of the content. Must be either 'user' or 'model'.
	Role string `json:"role,omitempty"`
}

// A datatype containing media content. Only the text variant is used here.
type Part struct {
	// Optional. Text part (can be code).
	Text *string `json:"text,omitempty"`
}

// Optional model configuration parameters.
type GenerateContentConfig struct {
	// Value that controls the degree of randomness in token selection.
	Temperature *float64 `json:"temperature,omitempty"`
	// Number of response variations to return.
	CandidateCount *int `json:"candidateCount,omitempty"`
}

// Response message for the model prediction call.
type GenerateContentResponse struct {
	// Response variations returned by the model.
	Candidates []Candidate `json:"candidates,omitempty"`
	// Usage metadata about the response(s).
	UsageMetadata *GenerateContentResponseUsageMetadata `json:"usageMetadata,omitempty"`
}

// A response candidate generated from the model.
type Candidate struct {
	// Contains the multi-part content of the response.
	Content *Content `json:"content,omitempty"`
	// The reason why the model stopped generating tokens.
	FinishReason *string `json:"finishReason,omitempty"`
}

// Usage metadata about the response(s).
type GenerateContentResponseUsageMetadata struct {
	// Number of tokens in the prompt.
	PromptTokenCount *int `json:"promptTokenCount,omitempty"`
	// Number of tokens across all the generated response candidates.
	CandidatesTokenCount *int `json:"candidatesTokenCount,omitempty"`
	// Total token count for the request.
	TotalTokenCount *int `json:"totalTokenCount,omitempty"`
}
