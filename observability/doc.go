// Package observability provides OpenTelemetry tracing and Prometheus metrics
// for huddle.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg.Tracing, "huddle", version.GetVersionInfo().Version)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscode)
//	defer span.End()
//
// Metrics:
//
//	metrics := observability.NewMetrics("huddle")
//	metrics.RecordOperation("deepgram", "transcribe", "ok", time.Since(start))
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package observability
