// Package engine provides the core types and the provisioning orchestrator
// for the vmweaver multi-cloud VM engine. It defines the request/result
// envelope, the VM record lifecycle, the error taxonomy, and the contracts
// fulfilled by the provider registry and the persistence layer.
package engine
