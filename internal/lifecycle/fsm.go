// Where: internal/lifecycle/fsm.go
// What: Per-resource lifecycle state machine.
// Why: Explicit states replace ambient event-hook registration and stay testable
// without a real readiness event source.
package lifecycle

import (
	"sync"

	"github.com/seedbox-dev/seedbox/internal/topology"
)

// State is a lifecycle phase of one declared resource.
type State string

const (
	StateDeclared     State = "Declared"
	StateProvisioning State = "Provisioning"
	StateReady        State = "Ready"
	StateImporting    State = "Importing"
	StateCompleted    State = "Completed"
	StateFailed       State = "Failed"
)

// Machine tracks the lifecycle of one resource instance:
// Declared → Provisioning → Ready → Importing → {Completed, Failed}.
// Transitions are independent across machines; no machine ever touches
// another.
type Machine struct {
	mu       sync.Mutex
	resource topology.ResourceDescriptor
	state    State
	err      error
}

// NewMachine starts a machine in Declared.
func NewMachine(resource topology.ResourceDescriptor) *Machine {
	return &Machine{resource: resource, state: StateDeclared}
}

// Resource returns the descriptor this machine tracks.
func (m *Machine) Resource() topology.ResourceDescriptor {
	return m.resource
}

// State returns the current lifecycle phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error recorded by a Failed transition, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// NotifyProvisioning moves Declared → Provisioning. Other states ignore it.
func (m *Machine) NotifyProvisioning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDeclared {
		return false
	}
	m.state = StateProvisioning
	return true
}

// NotifyReady moves Declared/Provisioning → Ready. Signals arriving after
// the resource left those states are ignored.
func (m *Machine) NotifyReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDeclared && m.state != StateProvisioning {
		return false
	}
	m.state = StateReady
	return true
}

// beginImport moves Ready → Importing. Returning false means another caller
// already claimed the transition; invocation stays at-most-once per resource
// instance per process lifetime.
func (m *Machine) beginImport() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return false
	}
	m.state = StateImporting
	return true
}

// complete moves Importing → Completed. Partial per-item failures still
// count as completion; only unrecovered routine errors fail the machine.
func (m *Machine) complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateImporting {
		m.state = StateCompleted
	}
}

// fail moves Importing → Failed and records the cause.
func (m *Machine) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateImporting {
		m.state = StateFailed
		m.err = err
	}
}
