// Package operations runs the trip report pipeline as a sequence of
// registered steps.
//
// The pipeline has six steps, each depending on the one before it:
//
//	load -> clean -> enrich -> filter -> aggregate -> export
//
// A Manager orders the steps with the Registry, runs each one inside an
// OpenTelemetry span with its own timeout, and stops at the first failure.
// Steps after a failure are marked skipped. Because export is the last
// step, a failed run never writes report files.
//
// Stage outputs travel in OperationState as typed fields; each step also
// records its row counts in its StepState and in the run summary.
//
// Basic usage:
//
//	registry, err := operations.NewPipelineRegistry(logger, tracer.Metrics())
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger)
//	params, err := operations.ParamsFromConfig(cfg)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Params: params})
package operations
