package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/a11ypipe/internal/orchestrator"

var (
	stageCounter      metric.Int64Counter
	stageDuration     metric.Float64Histogram
	gateDecisionCount metric.Int64Counter
)

// initMetrics initializes OpenTelemetry instruments for the pipeline engine.
// This is called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	stageCounter, err = meter.Int64Counter(
		"a11ypipe.pipeline.stage.executions",
		metric.WithDescription("Total number of pipeline stage executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create stage counter: %v", err))
	}

	stageDuration, err = meter.Float64Histogram(
		"a11ypipe.pipeline.stage.duration",
		metric.WithDescription("Duration of pipeline stage executions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create stage duration histogram: %v", err))
	}

	gateDecisionCount, err = meter.Int64Counter(
		"a11ypipe.pipeline.gate.decisions",
		metric.WithDescription("Number of critique gate decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create gate decision counter: %v", err))
	}
}

func init() {
	initMetrics()
}

func recordStage(ctx context.Context, name StageName, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("stage", string(name)))
	stageCounter.Add(ctx, 1, attrs)
	stageDuration.Record(ctx, d.Seconds(), attrs)
}

func recordGateDecision(ctx context.Context, decision Decision) {
	gateDecisionCount.Add(ctx, 1,
		metric.WithAttributes(attribute.String("decision", string(decision))))
}
