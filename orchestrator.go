package triptych

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/triptychhq/triptych/utils/jsonscan"
	"github.com/triptychhq/triptych/utils/ptr"
	"github.com/triptychhq/triptych/utils/stream"
)

// ArtifactCount is the number of independent interpretations generated per
// submission, fixed at session creation.
const ArtifactCount = 3

// variationTemperature raises sampling variance for the variation flow so
// alternate takes diverge from the original artifact.
const variationTemperature = 1.0

// Orchestrator coordinates the generation pipeline: it fans a submission out
// into one label request plus one streaming generation task per artifact,
// feeds their results into the Store, and runs the variation flow. All entry
// points spawn their work and return quickly; progress is observed through
// Snapshot, Loading, and Variants.
type Orchestrator struct {
	model  LanguageModel
	store  *Store
	logger *slog.Logger

	// loading gates submissions: one may be initiated at a time. In-flight
	// work from an earlier submission is never cancelled; its updates keep
	// landing on its own session.
	loading atomic.Bool

	mu          sync.Mutex
	variants    []Variant
	variantsGen uint64 // bumps whenever the variant list is reset
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger used for per-task failure reporting.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator writing into store.
func NewOrchestrator(model LanguageModel, store *Store, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		model: model,
		store: store,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Submit creates a session for prompt and launches its generation tasks.
// It returns the new session ID immediately; ErrBusy if a previous submission
// has not settled yet. No failure past this point is fatal: the worst outcome
// is an artifact left in streaming status with partial content.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) (string, error) {
	if !o.loading.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	sessionID := o.store.CreateSession(prompt, ArtifactCount)
	go o.run(ctx, sessionID, prompt)
	return sessionID, nil
}

// run drives one submission to settlement: the label fetch plus all content
// tasks have finished or failed-and-stopped.
func (o *Orchestrator) run(ctx context.Context, sessionID, prompt string) {
	defer o.loading.Store(false)

	g := new(errgroup.Group)
	g.Go(func() error {
		o.fetchLabels(ctx, sessionID, prompt)
		return nil
	})
	for i := 0; i < ArtifactCount; i++ {
		i := i
		g.Go(func() error {
			o.generateArtifact(ctx, sessionID, i, prompt)
			return nil
		})
	}
	// Tasks report errors through the store and log; the group only joins.
	_ = g.Wait()
}

// fetchLabels requests descriptive style labels in a single shot. Failure is
// never surfaced: content generation proceeds with a fixed fallback set.
func (o *Orchestrator) fetchLabels(ctx context.Context, sessionID, prompt string) {
	labels := fallbackLabels(ArtifactCount)

	resp, err := o.model.Generate(ctx, &LanguageModelInput{
		Prompt: labelPrompt(prompt, ArtifactCount),
	})
	if err != nil {
		o.logger.Warn("label fetch failed, using fallback labels",
			"session_id", sessionID, "error", err)
	} else if parsed, ok := parseLabels(resp.Text); ok {
		labels = parsed
	} else {
		o.logger.Warn("label response unparsable, using fallback labels",
			"session_id", sessionID)
	}

	o.store.SetArtifactLabels(sessionID, labels)
}

// generateArtifact streams one artifact's content into the store. Increments
// are appended in production order; on success the accumulated text is
// post-processed once and finalized. On failure the artifact keeps whatever
// partial content was already committed and stays in streaming status.
func (o *Orchestrator) generateArtifact(ctx context.Context, sessionID string, index int, prompt string) {
	modelStream, err := o.model.Stream(ctx, &LanguageModelInput{
		SystemPrompt: ptr.To(generationSystemPrompt),
		Prompt:       artifactPrompt(prompt, index, ArtifactCount),
	})
	if err != nil {
		o.logger.Warn("generation task failed to start",
			"session_id", sessionID, "index", index, "error", err)
		return
	}

	var content strings.Builder
	err = consumeText(modelStream, func(delta string) {
		content.WriteString(delta)
		o.store.AppendArtifactContent(sessionID, index, delta)
	})
	if err != nil {
		o.logger.Warn("generation task failed mid-stream",
			"session_id", sessionID, "index", index, "error", err)
		return
	}

	o.store.FinalizeArtifact(sessionID, index, stripCodeFence(content.String()))
}

// GenerateVariations launches the variation flow for one artifact: a single
// streaming task over a prompt derived from the original session prompt,
// whose output is scanned for complete JSON objects as it arrives. Starting a
// new variation request discards the previous variant list and detaches any
// still-running variation stream.
func (o *Orchestrator) GenerateVariations(ctx context.Context, sessionID string, index int) error {
	session, ok := o.store.Session(sessionID)
	if !ok || index < 0 || index >= len(session.Artifacts) {
		return ErrNoSession
	}

	gen := o.resetVariants()
	go o.streamVariations(ctx, gen, sessionID, session.Prompt)
	return nil
}

func (o *Orchestrator) streamVariations(ctx context.Context, gen uint64, sessionID, prompt string) {
	temperature := variationTemperature
	modelStream, err := o.model.Stream(ctx, &LanguageModelInput{
		SystemPrompt: ptr.To(generationSystemPrompt),
		Prompt:       variationPrompt(prompt),
		Temperature:  &temperature,
	})
	if err != nil {
		o.logger.Warn("variation task failed to start",
			"session_id", sessionID, "error", err)
		return
	}

	extractor := jsonscan.New()
	err = consumeText(modelStream, func(delta string) {
		for _, raw := range extractor.Feed(delta) {
			var v Variant
			// Objects missing either field are expected noise, not errors.
			if json.Unmarshal(raw, &v) != nil || v.Label == "" || v.Content == "" {
				continue
			}
			o.appendVariant(gen, v)
		}
	})
	if err != nil {
		// Variants extracted before the failure remain available.
		o.logger.Warn("variation task failed mid-stream",
			"session_id", sessionID, "error", err)
	}
}

// ApplyVariant overwrites the target artifact with the chosen variant content
// and closes the variation view.
func (o *Orchestrator) ApplyVariant(sessionID string, index int, content string) {
	o.store.ReplaceArtifact(sessionID, index, content)
	o.CloseVariations()
}

// CloseVariations discards the variant list. A variation stream still in
// flight keeps running but its remaining output is dropped.
func (o *Orchestrator) CloseVariations() {
	o.resetVariants()
}

func (o *Orchestrator) resetVariants() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.variantsGen++
	o.variants = nil
	return o.variantsGen
}

func (o *Orchestrator) appendVariant(gen uint64, v Variant) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.variantsGen {
		return
	}
	o.variants = append(o.variants, v)
}

// Snapshot returns the current full session state for rendering.
func (o *Orchestrator) Snapshot() []Session {
	return o.store.Snapshot()
}

// Loading reports whether a submission is in flight, from session creation
// until every one of its tasks has finalized or failed-and-stopped.
func (o *Orchestrator) Loading() bool {
	return o.loading.Load()
}

// Variants returns the variants extracted so far for the active variation
// request, in extraction order.
func (o *Orchestrator) Variants() []Variant {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Variant, len(o.variants))
	copy(out, o.variants)
	return out
}

// consumeText drains a model stream, invoking fn for each non-empty delta
// fragment in order, and returns the stream's terminal error, if any.
func consumeText(s *stream.Stream[*PartialModelResponse], fn func(delta string)) error {
	for s.Next() {
		partial := s.Current()
		if partial == nil || partial.Text == "" {
			continue
		}
		fn(partial.Text)
	}
	return s.Err()
}

// fallbackLabels is the fixed label set used when the label fetch fails.
func fallbackLabels(count int) []string {
	labels := make([]string, count)
	for i := range labels {
		labels[i] = "Direction " + string(rune('A'+i))
	}
	return labels
}

// parseLabels decodes a JSON array of strings from model output, tolerating
// a wrapping code fence and surrounding prose.
func parseLabels(text string) ([]string, bool) {
	out := stripCodeFence(text)
	if start := strings.IndexByte(out, '['); start >= 0 {
		if end := strings.LastIndexByte(out, ']'); end > start {
			out = out[start : end+1]
		}
	}
	var labels []string
	if err := json.Unmarshal([]byte(out), &labels); err != nil || len(labels) == 0 {
		return nil, false
	}
	return labels, true
}
