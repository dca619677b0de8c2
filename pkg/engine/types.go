package engine

import (
	"time"
)

// ProviderType identifies a cloud target. The set is closed: it is extended
// only by registering a new provider implementation with the registry.
type ProviderType string

const (
	ProviderAWS       ProviderType = "aws"
	ProviderAzure     ProviderType = "azure"
	ProviderGCP       ProviderType = "gcp"
	ProviderOnPremise ProviderType = "on_premise"
)

// VMStatus represents the lifecycle state of a virtual machine record.
type VMStatus string

const (
	StatusPending    VMStatus = "pending"
	StatusRunning    VMStatus = "running"
	StatusStopped    VMStatus = "stopped"
	StatusTerminated VMStatus = "terminated"
)

// allowedTransitions is the explicit status transition table. Newly
// provisioned VMs start as pending; terminated is a terminal state.
var allowedTransitions = map[VMStatus][]VMStatus{
	StatusPending:    {StatusRunning, StatusTerminated},
	StatusRunning:    {StatusStopped, StatusTerminated},
	StatusStopped:    {StatusRunning, StatusTerminated},
	StatusTerminated: {},
}

// Valid reports whether s is a known VM status.
func (s VMStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition from s to next is permitted
// by the transition table. Same-status updates are not permitted.
func (s VMStatus) CanTransitionTo(next VMStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Parameters is the provider-specific parameter bag attached to a
// provisioning request. It is opaque to the orchestrator and interpreted
// only by the matching provider implementation.
type Parameters map[string]any

// Clone returns a shallow copy of the parameter bag.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// VMRecord is the durable entity representing a simulated virtual machine.
// ID and Provider are immutable after creation; Status changes only through
// the store's UpdateVMStatus operation, which also refreshes UpdatedAt.
type VMRecord struct {
	ID         string       `json:"id"`
	Provider   ProviderType `json:"provider_type"`
	Status     VMStatus     `json:"status"`
	Parameters Parameters   `json:"parameters"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Request is a provisioning request as submitted by a client.
type Request struct {
	Provider   ProviderType `json:"provider_type" validate:"required"`
	Parameters Parameters   `json:"parameters" validate:"required"`
}

// ResultStatus is the outcome discriminator of a provisioning result.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// Result is the uniform response envelope produced for every provisioning
// request. VMID is set only on success; ErrorMessage only on error.
type Result struct {
	RequestID    string       `json:"request_id"`
	Status       ResultStatus `json:"status"`
	VMID         string       `json:"vm_id,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Provider     ProviderType `json:"provider_type"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Summary is the aggregate view over all VM records. Total always equals
// the sum of ByProvider values and the sum of ByStatus values; it is
// computed in a single pass over the collection, never kept incrementally.
type Summary struct {
	Total      int                  `json:"total"`
	ByProvider map[ProviderType]int `json:"counts_by_provider"`
	ByStatus   map[VMStatus]int     `json:"counts_by_status"`
	Recent     []*VMRecord          `json:"recent"`
}
