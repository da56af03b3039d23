package observability

import (
	"context"

	"commitverify/internal/models"
	"commitverify/internal/verify"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "commitverify/verify"

// InstrumentedVerifier wraps a verify.Verifier with a trace span, a latency
// histogram and an outcome counter for every verification.
type InstrumentedVerifier struct {
	inner    verify.Verifier
	tracer   trace.Tracer
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
}

var _ verify.Verifier = (*InstrumentedVerifier)(nil)

// NewInstrumentedVerifier uses the global tracer and meter providers, so call
// it after Setup.
func NewInstrumentedVerifier(inner verify.Verifier) (*InstrumentedVerifier, error) {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"verification.duration",
		metric.WithDescription("Duration of commit verifications in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := meter.Int64Counter(
		"verification.outcomes",
		metric.WithDescription("Number of commit verifications by outcome"),
		metric.WithUnit("{verification}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedVerifier{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		outcomes: outcomes,
	}, nil
}

func (v *InstrumentedVerifier) Verify(ctx context.Context, req *models.VerificationRequest) *models.VerificationResult {
	ctx, span := v.tracer.Start(ctx, "verify.Verify",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("verification.url", req.URL),
			attribute.String("verification.expected_commit", req.ExpectedCommit),
			attribute.String("verification.match_mode", req.MatchMode),
		),
	)
	defer span.End()

	result := v.inner.Verify(ctx, req)

	outcome := result.Outcome()
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("error_kind", string(result.ErrorKind)),
	)
	v.duration.Record(ctx, result.Duration.Seconds(), attrs)
	v.outcomes.Add(ctx, 1, attrs)

	span.SetAttributes(
		attribute.String("verification.outcome", outcome),
		attribute.String("verification.actual_commit", result.ActualCommit),
		attribute.Int("verification.exit_code", result.ExitCode),
	)
	switch {
	case result.Err != nil:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Message)
	case !result.Success:
		span.SetStatus(codes.Error, outcome)
	default:
		span.SetStatus(codes.Ok, "")
	}

	return result
}
