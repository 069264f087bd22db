// Package triptychtest provides a mock language model for testing pipelines
// without a live provider.
package triptychtest

import (
	"context"
	"errors"
	"sync"

	triptych "github.com/triptychhq/triptych"
	"github.com/triptychhq/triptych/utils/stream"
)

// MockGenerateResult is a result for a mocked `generate` call.
// It can either be a full response or an error.
type MockGenerateResult struct {
	Response *triptych.ModelResponse
	Error    error
}

// NewMockGenerateResultResponse constructs a generate result with a response.
func NewMockGenerateResultResponse(response triptych.ModelResponse) MockGenerateResult {
	return MockGenerateResult{
		Response: &response,
	}
}

// NewMockGenerateResultError constructs a generate result that yields an error.
func NewMockGenerateResultError(err error) MockGenerateResult {
	return MockGenerateResult{
		Error: err,
	}
}

// MockStreamResult is a result for a mocked `stream` call. Partials are
// emitted in order; if Error is set alongside partials the stream fails after
// emitting them, and if Error is set with no partials the call fails to start.
type MockStreamResult struct {
	Partials []triptych.PartialModelResponse
	Error    error
}

// NewMockStreamResultPartials constructs a stream result with partial responses.
func NewMockStreamResultPartials(partials []triptych.PartialModelResponse) MockStreamResult {
	return MockStreamResult{
		Partials: partials,
	}
}

// NewMockStreamResultError constructs a stream result that fails to start.
func NewMockStreamResultError(err error) MockStreamResult {
	return MockStreamResult{
		Error: err,
	}
}

// NewMockStreamResultTexts constructs a stream result emitting one partial
// per text fragment.
func NewMockStreamResultTexts(texts ...string) MockStreamResult {
	partials := make([]triptych.PartialModelResponse, len(texts))
	for i, text := range texts {
		partials[i] = triptych.PartialModelResponse{Text: text}
	}
	return MockStreamResult{
		Partials: partials,
	}
}

// MockLanguageModel is a mock language model for testing purposes
// that tracks inputs and returns predefined outputs. It is safe for
// concurrent use, since orchestrated tasks call Stream from multiple
// goroutines.
type MockLanguageModel struct {
	mu sync.Mutex

	mockedGenerateResults []MockGenerateResult
	mockedStreamResults   []MockStreamResult

	// streamHandler, when set, selects the stream result from the input
	// instead of dequeuing, so concurrent tasks get deterministic results.
	streamHandler func(input *triptych.LanguageModelInput) MockStreamResult

	trackedGenerateInputs []triptych.LanguageModelInput
	trackedStreamInputs   []triptych.LanguageModelInput

	provider string
	modelID  string
}

// NewMockLanguageModel constructs a mock language model instance.
func NewMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{
		mockedGenerateResults: []MockGenerateResult{},
		mockedStreamResults:   []MockStreamResult{},
		trackedGenerateInputs: []triptych.LanguageModelInput{},
		trackedStreamInputs:   []triptych.LanguageModelInput{},
		provider:              "mock",
		modelID:               "mock-model",
	}
}

// Provider returns the provider name of the mock language model.
func (m *MockLanguageModel) Provider() string {
	return m.provider
}

// SetProvider overrides the provider name returned by the mock model.
func (m *MockLanguageModel) SetProvider(provider string) {
	m.provider = provider
}

// ModelID returns the model identifier of the mock language model.
func (m *MockLanguageModel) ModelID() string {
	return m.modelID
}

// SetModelID overrides the model identifier returned by the mock model.
func (m *MockLanguageModel) SetModelID(modelID string) {
	m.modelID = modelID
}

// Generate returns the next mocked generate result, tracking the provided input.
func (m *MockLanguageModel) Generate(_ context.Context, input *triptych.LanguageModelInput) (*triptych.ModelResponse, error) {
	m.mu.Lock()
	if len(m.mockedGenerateResults) == 0 {
		m.mu.Unlock()
		return nil, errors.New("no mocked generate results available")
	}

	result := m.mockedGenerateResults[0]
	m.mockedGenerateResults = m.mockedGenerateResults[1:]
	m.trackedGenerateInputs = append(m.trackedGenerateInputs, *input)
	m.mu.Unlock()

	if result.Error != nil {
		return nil, result.Error
	}

	return result.Response, nil
}

// Stream returns the next mocked stream result as a LanguageModelStream,
// tracking the input. A configured stream handler takes precedence over the
// enqueued results.
func (m *MockLanguageModel) Stream(_ context.Context, input *triptych.LanguageModelInput) (*triptych.LanguageModelStream, error) {
	m.mu.Lock()
	var result MockStreamResult
	if m.streamHandler != nil {
		result = m.streamHandler(input)
	} else {
		if len(m.mockedStreamResults) == 0 {
			m.mu.Unlock()
			return nil, errors.New("no mocked stream results available")
		}
		result = m.mockedStreamResults[0]
		m.mockedStreamResults = m.mockedStreamResults[1:]
	}
	m.trackedStreamInputs = append(m.trackedStreamInputs, *input)
	m.mu.Unlock()

	if result.Error != nil && len(result.Partials) == 0 {
		return nil, result.Error
	}

	eventChan := make(chan *triptych.PartialModelResponse)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		for _, partial := range result.Partials {
			p := partial
			eventChan <- &p
		}

		if result.Error != nil {
			errChan <- result.Error
		}
	}()

	return stream.New(eventChan, errChan), nil
}

// EnqueueGenerateResult enqueues generate results to be returned sequentially.
func (m *MockLanguageModel) EnqueueGenerateResult(results ...MockGenerateResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockedGenerateResults = append(m.mockedGenerateResults, results...)
}

// EnqueueStreamResult enqueues stream results to be returned sequentially.
func (m *MockLanguageModel) EnqueueStreamResult(results ...MockStreamResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockedStreamResults = append(m.mockedStreamResults, results...)
}

// SetStreamHandler routes every Stream call through fn.
func (m *MockLanguageModel) SetStreamHandler(fn func(input *triptych.LanguageModelInput) MockStreamResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamHandler = fn
}

// TrackedGenerateInputs returns the list of inputs tracked from Generate calls.
func (m *MockLanguageModel) TrackedGenerateInputs() []triptych.LanguageModelInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]triptych.LanguageModelInput, len(m.trackedGenerateInputs))
	copy(out, m.trackedGenerateInputs)
	return out
}

// TrackedStreamInputs returns the list of inputs tracked from Stream calls.
func (m *MockLanguageModel) TrackedStreamInputs() []triptych.LanguageModelInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]triptych.LanguageModelInput, len(m.trackedStreamInputs))
	copy(out, m.trackedStreamInputs)
	return out
}

// Reset clears tracked inputs without touching enqueued results.
func (m *MockLanguageModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackedGenerateInputs = []triptych.LanguageModelInput{}
	m.trackedStreamInputs = []triptych.LanguageModelInput{}
}

// Restore clears enqueued results, the stream handler, and tracked inputs,
// returning the mock to its initial state.
func (m *MockLanguageModel) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockedGenerateResults = []MockGenerateResult{}
	m.mockedStreamResults = []MockStreamResult{}
	m.streamHandler = nil
	m.trackedGenerateInputs = []triptych.LanguageModelInput{}
	m.trackedStreamInputs = []triptych.LanguageModelInput{}
}
