package deckchat

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Initialize the tracer lazily to allow user to have a chance to configure the global tracer provider
var tracer = otel.Tracer("github.com/optcg-tools/deckchat-go")

// turnSpan manages the span for one conversation turn.
type turnSpan struct {
	span trace.Span
}

func startTurnSpan(ctx context.Context, conversationID, runID string) (*turnSpan, context.Context) {
	newCtx, span := tracer.Start(ctx, "deckchat.send_message")
	span.SetAttributes(
		attribute.String("deckchat.conversation.id", conversationID),
		attribute.String("deckchat.run.id", runID),
	)
	return &turnSpan{span: span}, newCtx
}

// OnEnd ends the span with the final turn attributes.
func (s *turnSpan) OnEnd(eventCount int, finalized bool) {
	s.span.SetAttributes(
		attribute.Int("deckchat.turn.events", eventCount),
		attribute.Bool("deckchat.turn.finalized", finalized),
	)
	s.span.End()
}

// OnError records the failure that the session absorbed into a synthetic
// assistant message, then ends the span.
func (s *turnSpan) OnError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
	s.span.End()
}
