// Package telemetry provides observability instrumentation for vmweaver:
// structured logging with zerolog, Prometheus metrics, and OpenTelemetry
// tracing, plus redaction of sensitive parameter values before any
// parameter bag reaches a log stream.
//
// Initialize at startup:
//
//	logger, err := telemetry.NewLogger(cfg.Logging)
//	metrics, err := telemetry.NewMetrics(cfg.Metrics)
//	tracer, err := telemetry.NewTracer(ctx, cfg.Tracing)
//
// Component loggers carry domain fields:
//
//	log := logger.NewComponentLogger("orchestrator")
//	log.WithRequestID(reqID).WithProvider("aws").Info("provisioning")
package telemetry
