// Where: internal/app/deps.go
// What: Injected dependency surfaces for CLI command execution.
// Why: Every collaborator arrives as an explicit parameter; nothing is
// resolved from ambient globals.
package app

import (
	"context"
	"io"
	"iter"

	"github.com/rs/zerolog"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/importer"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
	"github.com/seedbox-dev/seedbox/internal/seedenv"
	"github.com/seedbox-dev/seedbox/internal/topology"
)

// ConnectionResolver maps a declared resource to a connection target.
type ConnectionResolver interface {
	Resolve(ctx context.Context, resource topology.ResourceDescriptor) (resolver.ConnectionTarget, error)
}

// RecordGenerator produces the synthetic records a routine seeds.
type RecordGenerator interface {
	Generate(count int) iter.Seq[record.DomainRecord]
}

// DocumentBackend is a document store that can also receive item writes.
type DocumentBackend interface {
	ensure.DocumentStore
	importer.ItemWriter
}

// BlobBackend is a blob store that can also receive item writes.
type BlobBackend interface {
	ensure.BlobStore
	importer.ItemWriter
}

// QueueBackend is a queue store that can also receive item writes.
type QueueBackend interface {
	ensure.QueueStore
	importer.ItemWriter
}

// Backends builds store adapters from resolved targets. Each import routine
// asks for its own instance; nothing is shared between routines.
type Backends interface {
	Document(target resolver.ConnectionTarget, partitionKeyPath string) DocumentBackend
	Blob(target resolver.ConnectionTarget) BlobBackend
	Queue(target resolver.ConnectionTarget) QueueBackend
}

// EndpointWaiter blocks until an emulator endpoint answers.
type EndpointWaiter interface {
	Wait(ctx context.Context, endpoint string) error
}

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of various subsystems.
type Dependencies struct {
	Out       io.Writer
	Logger    zerolog.Logger
	Resolver  ConnectionResolver
	Backends  Backends
	Generator RecordGenerator
	Waiter    EndpointWaiter

	// Prompter may be nil in non-interactive runs; commands fall back to
	// their defaults.
	Prompter Prompter

	// LoadEnv defaults to seedenv.Load.
	LoadEnv func() (seedenv.Config, error)
}
