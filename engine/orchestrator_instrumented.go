package engine

import (
	"context"
	"log/slog"
	"time"

	"cartsync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedOrchestrator wraps an Orchestrator with tracing and metrics.
type InstrumentedOrchestrator struct {
	inner  *Orchestrator
	tracer trace.Tracer
	meter  metric.Meter
}

// NewInstrumentedOrchestrator decorates an orchestrator with observability.
func NewInstrumentedOrchestrator(inner *Orchestrator, tracer trace.Tracer, meter metric.Meter) *InstrumentedOrchestrator {
	return &InstrumentedOrchestrator{inner: inner, tracer: tracer, meter: meter}
}

// Run executes the run with full instrumentation.
func (o *InstrumentedOrchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	ctx, span := o.tracer.Start(ctx, "InstrumentedOrchestrator.Run", trace.WithAttributes(
		attribute.String("list_name", o.inner.cfg.ListName),
		attribute.Bool("dry_run", opts.DryRun),
	))
	defer span.End()

	runsCounter, _ := o.meter.Int64Counter("sync_runs_total",
		metric.WithDescription("Total number of sync runs started"))
	runsBlockedCounter, _ := o.meter.Int64Counter("sync_runs_blocked_total",
		metric.WithDescription("Total number of sync runs that halted on unresolved items"))
	runsFailedCounter, _ := o.meter.Int64Counter("sync_runs_failed_total",
		metric.WithDescription("Total number of sync runs that failed"))
	addsPlannedCounter, _ := o.meter.Int64Counter("cart_adds_planned_total",
		metric.WithDescription("Total number of cart adds planned"))
	addsFailedCounter, _ := o.meter.Int64Counter("cart_adds_failed_total",
		metric.WithDescription("Total number of cart adds that failed"))
	itemsDesiredGauge, _ := o.meter.Int64Gauge("items_desired_count",
		metric.WithDescription("Number of desired items in the latest run"))
	itemsBlockedGauge, _ := o.meter.Int64Gauge("items_blocked_count",
		metric.WithDescription("Number of blocking items in the latest run"))
	unexpectedGauge, _ := o.meter.Int64Gauge("cart_unexpected_count",
		metric.WithDescription("Number of unexpected cart entries in the latest audit"))
	runDurationHist, _ := o.meter.Float64Histogram("sync_run_duration_seconds",
		metric.WithDescription("Total duration of a sync run in seconds"))

	runsCounter.Add(ctx, 1)
	start := time.Now()

	result, err := o.inner.Run(ctx, opts)

	runDurationHist.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		runsFailedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "run failed")
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("final_state", string(result.State)))
	itemsDesiredGauge.Record(ctx, int64(len(result.Items)))
	itemsBlockedGauge.Record(ctx, int64(len(result.Blocked)))
	addsPlannedCounter.Add(ctx, int64(len(result.Plan.Adds)))

	failed := 0
	for _, rec := range result.Executed {
		if rec.Status != cartsync.AddOK {
			failed++
		}
	}
	addsFailedCounter.Add(ctx, int64(failed))

	if result.Audit != nil {
		unexpectedGauge.Record(ctx, int64(len(result.Audit.Unexpected)))
	}

	if result.State == StateBlocked {
		runsBlockedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "run blocked on unresolved items")
	}

	slog.Info("ORCHESTRATOR: Instrumented run finished",
		"run_id", result.RunID,
		"state", result.State,
		"duration", time.Since(start),
	)
	return result, nil
}
