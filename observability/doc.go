// Package observability provides OpenTelemetry tracing and metrics for
// diarization runs.
//
// Setup installs OTLP HTTP exporters when enabled and returns run metrics:
//
//	tel, err := observability.Setup(ctx, "diarize", version.Version, "development", cfg.Observability)
//	defer tel.Shutdown(ctx)
//
// Each run gets a span and run-level metrics:
//
//	rc := observability.NewRunContext("diarize", runID, tel.Metrics)
//	ctx, span := rc.StartRun(ctx)
//	defer func() { rc.EndRun(ctx, span, err) }()
//
// Stage spans use StartSpan with the Span* names.
package observability
