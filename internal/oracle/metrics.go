package oracle

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/a11ypipe/internal/oracle"

var (
	completionCounter  metric.Int64Counter
	completionDuration metric.Float64Histogram
)

// initMetrics initializes OpenTelemetry instruments for the oracle client.
// This is called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	completionCounter, err = meter.Int64Counter(
		"a11ypipe.oracle.completions",
		metric.WithDescription("Total number of oracle completion calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create completion counter: %v", err))
	}

	completionDuration, err = meter.Float64Histogram(
		"a11ypipe.oracle.completion.duration",
		metric.WithDescription("Duration of oracle completion calls including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create completion duration histogram: %v", err))
	}
}

func init() {
	initMetrics()
}

func recordCompletion(ctx context.Context, model string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	)
	completionCounter.Add(ctx, 1, attrs)
	completionDuration.Record(ctx, d.Seconds(), attrs)
}
