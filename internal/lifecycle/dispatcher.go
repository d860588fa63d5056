// Where: internal/lifecycle/dispatcher.go
// What: Binds resource readiness signals to import routines.
// Why: Each ready resource seeds exactly once, concurrently and independently.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seedbox-dev/seedbox/internal/telemetry"
	"github.com/seedbox-dev/seedbox/internal/topology"
)

// ImportRoutine seeds one ready resource. A non-nil error fails only the
// resource it ran for.
type ImportRoutine func(ctx context.Context, resource topology.ResourceDescriptor) error

// Dispatcher owns one state machine per declared resource and runs the bound
// routine when a readiness signal arrives. Routines for different resources
// run concurrently; a single resource never has more than one routine in
// flight because the Ready → Importing transition is claimed exactly once.
type Dispatcher struct {
	logger zerolog.Logger

	mu       sync.Mutex
	machines map[string]*Machine
	routines map[topology.Kind]ImportRoutine

	group errgroup.Group
}

// NewDispatcher declares machines for all resources.
func NewDispatcher(resources []topology.ResourceDescriptor, logger zerolog.Logger) *Dispatcher {
	machines := make(map[string]*Machine, len(resources))
	for _, res := range resources {
		machines[res.Key()] = NewMachine(res)
	}
	return &Dispatcher{
		logger:   telemetry.Component(logger, "lifecycle"),
		machines: machines,
		routines: map[topology.Kind]ImportRoutine{},
	}
}

// Bind registers the import routine for a resource kind.
func (d *Dispatcher) Bind(kind topology.Kind, routine ImportRoutine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routines[kind] = routine
}

// Machine returns the state machine for a resource key, or nil.
func (d *Dispatcher) Machine(key string) *Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machines[key]
}

// Machines returns all state machines.
func (d *Dispatcher) Machines() []*Machine {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Machine, 0, len(d.machines))
	for _, m := range d.machines {
		out = append(out, m)
	}
	return out
}

// MarkProvisioning records that provisioning started for a resource.
func (d *Dispatcher) MarkProvisioning(key string) {
	if m := d.Machine(key); m != nil {
		m.NotifyProvisioning()
	}
}

// NotifyReady delivers a readiness signal for one resource. The first signal
// transitions the machine to Ready and launches the bound routine with the
// given cancellation context; repeated signals for the same resource instance
// are no-ops.
func (d *Dispatcher) NotifyReady(ctx context.Context, key string) error {
	machine := d.Machine(key)
	if machine == nil {
		return fmt.Errorf("readiness signal for undeclared resource %s", key)
	}

	machine.NotifyReady()
	if !machine.beginImport() {
		d.logger.Debug().Str("resource", key).Msg("duplicate readiness signal ignored")
		return nil
	}

	d.mu.Lock()
	routine := d.routines[machine.Resource().Kind]
	d.mu.Unlock()
	if routine == nil {
		err := fmt.Errorf("no import routine bound for kind %s", machine.Resource().Kind)
		machine.fail(err)
		return err
	}

	d.logger.Info().Str("resource", key).Msg("resource ready, starting import")
	d.group.Go(func() error {
		if err := routine(ctx, machine.Resource()); err != nil {
			machine.fail(err)
			d.logger.Error().Err(err).
				Str("resource", key).
				Str("phase", "import").
				Msg("import routine failed")
			// Sibling resources keep their own state machines; routine
			// errors never propagate past this point.
			return nil
		}
		machine.complete()
		d.logger.Info().Str("resource", key).Msg("import completed")
		return nil
	})
	return nil
}

// Wait blocks until every launched routine has returned.
func (d *Dispatcher) Wait() {
	_ = d.group.Wait()
}
