package operations

import (
	"sync"
	"time"

	"tripreport/pkg/contracts"
	"tripreport/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState is the state of one pipeline run. Each step reads the
// output of the step before it and stores its own; no step modifies an
// earlier step's output.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Settings for this run
	Params RunParams `json:"params"`

	// Stage outputs
	Raw      []domain.RawTrip      `json:"-"`
	Trips    []domain.Trip         `json:"-"`
	Enriched []domain.EnrichedTrip `json:"-"`
	Filtered []domain.EnrichedTrip `json:"-"`
	Report   *domain.Report        `json:"-"`
	Written  []string              `json:"written,omitempty"`

	// Summary accumulates per-stage counters
	Summary domain.RunSummary `json:"summary"`

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string, params RunParams) *OperationState {
	now := time.Now()
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: now,
		Steps:     make(map[string]*StepState),
		Params:    params,
		Summary: domain.RunSummary{
			RunID:       id,
			Version:     contracts.Version,
			TableFormat: contracts.TableFormatVersion,
			StartedAt:   now,
			InputDir:    params.InputDir,
		},
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
	p.Summary.StartedAt = p.StartTime
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStage updates the state of a specific Step
func (p *OperationState) SetStage(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

