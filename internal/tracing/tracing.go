// Package tracing wraps model calls in OpenTelemetry spans following the
// gen_ai semantic conventions.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	triptych "github.com/triptychhq/triptych"
	"github.com/triptychhq/triptych/utils/ptr"
	"github.com/triptychhq/triptych/utils/stream"
)

var tracer = otel.Tracer("github.com/triptychhq/triptych")

type lmSpan struct {
	provider  string
	modelID   string
	usage     *triptych.ModelUsage
	startTime time.Time
	// Time to first token, in seconds
	timeToFirstToken *float64
	temperature      *float64

	span trace.Span
}

func TraceGenerate(
	ctx context.Context,
	provider string,
	modelID string,
	input *triptych.LanguageModelInput,
	fn func(context.Context) (*triptych.ModelResponse, error),
) (*triptych.ModelResponse, error) {
	ctx, span := newLMSpan(ctx, provider, modelID, "generate", input)
	defer span.onEnd()

	response, err := fn(ctx)
	if err != nil {
		span.onError(err)
		return nil, err
	}

	if response != nil && response.Usage != nil {
		span.usage = response.Usage
	}

	return response, nil
}

func TraceStream(
	ctx context.Context,
	provider string,
	modelID string,
	input *triptych.LanguageModelInput,
	fn func(context.Context) (*triptych.LanguageModelStream, error),
) (*triptych.LanguageModelStream, error) {
	ctx, span := newLMSpan(ctx, provider, modelID, "stream", input)

	innerStream, err := fn(ctx)
	if err != nil {
		span.onError(err)
		span.onEnd()
		return nil, err
	}

	responseCh := make(chan *triptych.PartialModelResponse)
	errCh := make(chan error, 1)

	go func() {
		defer close(responseCh)
		defer close(errCh)
		defer span.onEnd()

		for innerStream.Next() {
			partial := innerStream.Current()
			if partial == nil {
				continue
			}

			span.onStreamPartial(partial)
			responseCh <- partial
		}

		if err := innerStream.Err(); err != nil {
			span.onError(err)
			errCh <- err
		}
	}()

	return stream.New(responseCh, errCh), nil
}

func newLMSpan(
	ctx context.Context,
	provider string,
	modelID string,
	method string,
	input *triptych.LanguageModelInput,
) (context.Context, *lmSpan) {
	spanCtx, otelSpan := tracer.Start(ctx, "triptych."+method)

	var temperature *float64
	if input != nil {
		temperature = input.Temperature
	}

	return spanCtx, &lmSpan{
		provider:    provider,
		modelID:     modelID,
		startTime:   time.Now(),
		temperature: temperature,
		span:        otelSpan,
	}
}

func (s *lmSpan) onStreamPartial(partial *triptych.PartialModelResponse) {
	if partial.Usage != nil {
		if s.usage == nil {
			s.usage = &triptych.ModelUsage{}
		}
		s.usage.Add(partial.Usage)
	}

	if partial.Text != "" && s.timeToFirstToken == nil {
		s.timeToFirstToken = ptr.To(time.Since(s.startTime).Seconds())
	}
}

func (s *lmSpan) onError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *lmSpan) onEnd() {
	s.span.SetAttributes(
		attribute.String("gen_ai.operation.name", "generate_content"),
		attribute.String("gen_ai.provider.name", s.provider),
		attribute.String("gen_ai.request.model", s.modelID),
	)

	if s.usage != nil {
		s.span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", s.usage.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", s.usage.OutputTokens),
		)
	}

	if s.timeToFirstToken != nil {
		s.span.SetAttributes(attribute.Float64("gen_ai.server.time_to_first_token", *s.timeToFirstToken))
	}

	if s.temperature != nil {
		s.span.SetAttributes(attribute.Float64("gen_ai.request.temperature", *s.temperature))
	}

	s.span.End()
}
