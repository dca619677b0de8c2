package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// Orchestrator is the provisioning request entry point. It resolves the
// provider, validates parameters, synthesizes an identifier, persists the
// record, and produces the response envelope. It is safe for concurrent use.
type Orchestrator struct {
	registry ProviderRegistry
	store    Store
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
}

// NewOrchestrator wires an orchestrator. metrics may be nil.
func NewOrchestrator(registry ProviderRegistry, store Store, logger *telemetry.Logger, metrics *telemetry.Metrics) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		store:    store,
		logger:   logger.NewComponentLogger("orchestrator"),
		metrics:  metrics,
	}
}

// Provision processes a provisioning request end to end. Validation and
// resolution failures are recovered into an error envelope; nothing is
// persisted on those paths. A storage failure is the only internal-error
// outcome and is additionally returned as an error for the adapter layer.
func (o *Orchestrator) Provision(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	requestID := newRequestID()
	logger := o.logger.WithRequestID(requestID).WithProvider(string(req.Provider))

	logger.Info("provisioning request received")

	provider, err := o.registry.Resolve(req.Provider)
	if err != nil {
		logger.WithError(err).Warn("unknown provider token")
		o.metrics.RecordProvision(string(req.Provider), "error", time.Since(start))
		return o.errorResult(requestID, req.Provider, err), nil
	}

	if err := provider.Validate(req.Parameters); err != nil {
		logger.WithError(err).Warn("parameter validation failed")
		o.metrics.RecordProvision(string(req.Provider), "error", time.Since(start))
		return o.errorResult(requestID, req.Provider, err), nil
	}

	now := time.Now().UTC()
	vm := &VMRecord{
		ID:         provider.Synthesize(req.Parameters),
		Provider:   req.Provider,
		Status:     StatusPending,
		Parameters: req.Parameters.Clone(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := o.store.CreateVM(ctx, vm); err != nil {
		logger.WithError(err).WithVMID(vm.ID).Error("persisting VM record failed")
		o.metrics.RecordProvision(string(req.Provider), "error", time.Since(start))
		storageErr := NewStorageFailure("create", err)
		return Result{
			RequestID:    requestID,
			Status:       ResultError,
			ErrorMessage: "internal error: could not persist VM record",
			Provider:     req.Provider,
			Timestamp:    time.Now().UTC(),
		}, storageErr
	}

	logger.WithVMID(vm.ID).Infof("VM provisioned, parameters: %v", telemetry.RedactParameters(req.Parameters))
	o.metrics.RecordProvision(string(req.Provider), "success", time.Since(start))

	return Result{
		RequestID: requestID,
		Status:    ResultSuccess,
		VMID:      vm.ID,
		Provider:  req.Provider,
		Timestamp: time.Now().UTC(),
	}, nil
}

// errorResult recovers a classified error into the response envelope.
func (o *Orchestrator) errorResult(requestID string, t ProviderType, err error) Result {
	return Result{
		RequestID:    requestID,
		Status:       ResultError,
		ErrorMessage: errorMessage(err),
		Provider:     t,
		Timestamp:    time.Now().UTC(),
	}
}

// errorMessage strips the code prefix from classified errors so clients see
// only the human-readable message.
func errorMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return err.Error()
}

// GetVM retrieves a single VM record by id.
func (o *Orchestrator) GetVM(ctx context.Context, id string) (*VMRecord, error) {
	return o.store.GetVM(ctx, id)
}

// ListVMs returns VM records most-recent-first with pagination.
func (o *Orchestrator) ListVMs(ctx context.Context, limit, offset int) ([]*VMRecord, error) {
	return o.store.ListVMs(ctx, limit, offset)
}

// VMsByProvider returns VM records for a registered provider, optionally
// narrowed to a status. Unknown provider tokens fail with
// UNSUPPORTED_PROVIDER before the store is consulted.
func (o *Orchestrator) VMsByProvider(ctx context.Context, t ProviderType, status *VMStatus) ([]*VMRecord, error) {
	if _, err := o.registry.Resolve(t); err != nil {
		return nil, err
	}
	return o.store.ListVMsByProvider(ctx, t, status)
}

// VMsByStatus returns VM records in the given status.
func (o *Orchestrator) VMsByStatus(ctx context.Context, status VMStatus) ([]*VMRecord, error) {
	if !status.Valid() {
		return nil, &Error{
			Code:    ErrCodeMissingParameter,
			Message: fmt.Sprintf("unknown status: %s", status),
		}
	}
	return o.store.ListVMsByStatus(ctx, status)
}

// UpdateVMStatus applies a status transition and returns the updated record.
func (o *Orchestrator) UpdateVMStatus(ctx context.Context, id string, status VMStatus) (*VMRecord, error) {
	if !status.Valid() {
		return nil, &Error{
			Code:    ErrCodeInvalidTransition,
			Message: fmt.Sprintf("unknown status: %s", status),
		}
	}
	vm, err := o.store.UpdateVMStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	o.logger.WithVMID(id).Infof("status updated to %s", status)
	o.metrics.RecordStatusChange(string(vm.Provider), string(status))
	return vm, nil
}

// Summary aggregates all VM records.
func (o *Orchestrator) Summary(ctx context.Context) (*Summary, error) {
	return o.store.Summary(ctx, recentVMCount)
}

// Providers returns all registered providers for the discovery surface.
func (o *Orchestrator) Providers() []ProviderInfo {
	return o.registry.List()
}

// HealthCheck verifies the backing store is reachable.
func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	return o.store.HealthCheck(ctx)
}

// recentVMCount is the number of records included in Summary.Recent.
const recentVMCount = 10

// newRequestID generates a short unique request identifier.
func newRequestID() string {
	id := uuid.New()
	return fmt.Sprintf("req_%x", id[:4])
}
