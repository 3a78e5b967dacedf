package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripreport/internal/infrastructure"
)

// Manager orchestrates pipeline execution
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. A nil tracer disables spans
// and metrics.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer, _ = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// Execute runs every registered step in dependency order. It stops at the
// first failure and marks the remaining steps skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	state, err := m.Run(ctx, req)
	return m.createResponse(state), err
}

// Run is Execute returning the full run state, including stage outputs
// and the run summary.
func (m *Manager) Run(ctx context.Context, req OperationRequest) (*OperationState, error) {
	if req.ID != "" && infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, req.ID)
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	if req.ID == "" {
		req.ID = infrastructure.GetTraceID(ctx)
	}

	state := NewOperationState(req.ID, req.Params)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = fmt.Errorf("failed to get dependency order: %w", err)
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return state, err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req.Params)
	m.logOperationStart(ctx, req.ID, req.Params, len(steps))
	state.Start()

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), state.GetStatus())

	return state, err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logStageStart(ctx, state.ID, step.ID(), i+1, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage executes a single Step inside its own span and timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewExecutionError(step.ID(), fmt.Errorf("step state not found"))
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(state); err != nil {
		valErr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(valErr)
		return valErr
	}

	stageCtx, cancel := context.WithTimeout(ctx, m.config.GetStageTimeout(step.ID()))
	defer cancel()
	stageCtx, span := m.tracer.TraceStageExecution(stageCtx, state.ID, step.ID())

	stepState.Start()
	startTime := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(startTime)

	if err != nil {
		wrapped := WrapError(err, step.ID())
		stepState.Fail(wrapped)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, stepState, wrapped)
		return wrapped
	}

	stepState.Complete()
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), duration, stepState, nil)
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// skipRemaining marks every pending step in steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not found", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    state.Steps,
		Written:  state.Written,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}
