// Package google implements the LanguageModel contract against the Gemini
// generateContent API.
package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	triptych "github.com/triptychhq/triptych"
	"github.com/triptychhq/triptych/google/googleapi"
	"github.com/triptychhq/triptych/internal/clientutils"
	"github.com/triptychhq/triptych/internal/tracing"
	"github.com/triptychhq/triptych/utils/ptr"
	"github.com/triptychhq/triptych/utils/stream"
)

const Provider = "google"

// APIKeyEnv is the environment variable consulted when no API key is
// configured explicitly.
const APIKeyEnv = "GEMINI_API_KEY"

type GoogleModelOptions struct {
	BaseURL    string
	APIKey     string
	APIVersion string
}

type GoogleModel struct {
	baseURL    string
	apiKey     string
	apiVersion string
	modelID    string
	client     *http.Client
}

// NewGoogleModel creates a Gemini-backed model. An empty APIKey falls back to
// the GEMINI_API_KEY environment variable; if neither is set, every call
// returns a missing credential error.
func NewGoogleModel(modelID string, options GoogleModelOptions) *GoogleModel {
	baseURL := "https://generativelanguage.googleapis.com"
	if options.BaseURL != "" {
		baseURL = options.BaseURL
	}
	apiVersion := "v1beta"
	if options.APIVersion != "" {
		apiVersion = options.APIVersion
	}
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}

	return &GoogleModel{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		modelID:    modelID,
		client:     &http.Client{},
	}
}

func (m *GoogleModel) Provider() string {
	return Provider
}

func (m *GoogleModel) ModelID() string {
	return m.modelID
}

func (m *GoogleModel) Generate(ctx context.Context, input *triptych.LanguageModelInput) (*triptych.ModelResponse, error) {
	return tracing.TraceGenerate(ctx, Provider, m.modelID, input, func(ctx context.Context) (*triptych.ModelResponse, error) {
		if m.apiKey == "" {
			return nil, triptych.NewMissingCredentialError(Provider, APIKeyEnv)
		}

		params := convertToGenerateContentParameters(input)

		response, err := clientutils.DoJSON[googleapi.GenerateContentResponse](ctx, m.client, clientutils.JSONRequestConfig{
			URL: fmt.Sprintf("%s/%s/models/%s:generateContent", m.baseURL, m.apiVersion, m.modelID),
			Headers: map[string]string{
				"x-goog-api-key": m.apiKey,
			},
			Body: params,
		})
		if err != nil {
			return nil, err
		}

		if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
			return nil, triptych.NewInvariantError(Provider, "no candidates returned")
		}

		var usage *triptych.ModelUsage
		if response.UsageMetadata != nil {
			usage = mapGoogleUsageMetadata(*response.UsageMetadata)
		}

		return &triptych.ModelResponse{
			Text:  contentText(*response.Candidates[0].Content),
			Usage: usage,
		}, nil
	})
}

func (m *GoogleModel) Stream(ctx context.Context, input *triptych.LanguageModelInput) (*triptych.LanguageModelStream, error) {
	return tracing.TraceStream(ctx, Provider, m.modelID, input, func(ctx context.Context) (*triptych.LanguageModelStream, error) {
		if m.apiKey == "" {
			return nil, triptych.NewMissingCredentialError(Provider, APIKeyEnv)
		}

		params := convertToGenerateContentParameters(input)

		sseStream, err := clientutils.DoSSE[googleapi.GenerateContentResponse](ctx, m.client, clientutils.SSERequestConfig{
			URL: fmt.Sprintf("%s/%s/models/%s:streamGenerateContent?alt=sse", m.baseURL, m.apiVersion, m.modelID),
			Headers: map[string]string{
				"x-goog-api-key": m.apiKey,
			},
			Body: params,
		})
		if err != nil {
			return nil, err
		}

		responseCh := make(chan *triptych.PartialModelResponse)
		errCh := make(chan error, 1)

		go func() {
			defer close(responseCh)
			defer close(errCh)
			defer sseStream.Close()

			for sseStream.Next() {
				streamEvent := sseStream.Current()
				if streamEvent == nil || len(streamEvent.Candidates) == 0 {
					continue
				}

				candidate := streamEvent.Candidates[0]
				if candidate.Content != nil {
					if text := contentText(*candidate.Content); text != "" {
						responseCh <- &triptych.PartialModelResponse{Text: text}
					}
				}

				if streamEvent.UsageMetadata != nil {
					responseCh <- &triptych.PartialModelResponse{
						Usage: mapGoogleUsageMetadata(*streamEvent.UsageMetadata),
					}
				}
			}

			if err := sseStream.Err(); err != nil {
				errCh <- err
			}
		}()

		return stream.New(responseCh, errCh), nil
	})
}

func convertToGenerateContentParameters(input *triptych.LanguageModelInput) *googleapi.GenerateContentParameters {
	params := &googleapi.GenerateContentParameters{
		Contents: []googleapi.Content{
			{
				Role:  "user",
				Parts: []googleapi.Part{{Text: ptr.To(input.Prompt)}},
			},
		},
	}

	if input.SystemPrompt != nil {
		params.SystemInstruction = &googleapi.Content{
			Parts: []googleapi.Part{{Text: input.SystemPrompt}},
		}
	}

	if input.Temperature != nil {
		params.GenerationConfig = &googleapi.GenerateContentConfig{
			Temperature: input.Temperature,
		}
	}

	return params
}

// contentText concatenates the text parts of a content block.
func contentText(content googleapi.Content) string {
	var text string
	for _, part := range content.Parts {
		if part.Text != nil {
			text += *part.Text
		}
	}
	return text
}

func mapGoogleUsageMetadata(metadata googleapi.GenerateContentResponseUsageMetadata) *triptych.ModelUsage {
	usage := &triptych.ModelUsage{}
	if metadata.PromptTokenCount != nil {
		usage.InputTokens = *metadata.PromptTokenCount
	}
	if metadata.CandidatesTokenCount != nil {
		usage.OutputTokens = *metadata.CandidatesTokenCount
	}
	return usage
}
