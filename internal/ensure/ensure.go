// Where: internal/ensure/ensure.go
// What: Idempotent namespace creation for document, blob, and queue targets.
// Why: Seeding must tolerate namespaces created by prior runs or concurrent actors.
package ensure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seedbox-dev/seedbox/internal/telemetry"
	"github.com/seedbox-dev/seedbox/internal/topology"
)

// ErrAlreadyExists marks a create that lost a race with another actor.
// Store adapters wrap their backend-specific conflict errors with it; the
// ensurer treats it as success.
var ErrAlreadyExists = errors.New("namespace already exists")

// NamespaceEnsureError reports a failed ensure. It aborts only the routine
// that raised it.
type NamespaceEnsureError struct {
	Namespace string
	Phase     string
	Err       error
}

func (e *NamespaceEnsureError) Error() string {
	return fmt.Sprintf("ensure namespace %s (%s): %v", e.Namespace, e.Phase, e.Err)
}

func (e *NamespaceEnsureError) Unwrap() error { return e.Err }

// NamespaceHandle identifies an ensured namespace a batch is written into.
type NamespaceHandle struct {
	Kind      topology.Kind
	Database  string
	Container string
}

// Path renders the namespace as database/container (or just the container
// for parentless kinds).
func (h NamespaceHandle) Path() string {
	if h.Database == "" {
		return h.Container
	}
	return h.Database + "/" + h.Container
}

// DocumentStore is the document-database surface the ensurer drives.
type DocumentStore interface {
	// EnsureDatabase confirms the database exists and is reachable.
	EnsureDatabase(ctx context.Context, database string) error
	ListContainers(ctx context.Context, database string) ([]string, error)
	CreateContainer(ctx context.Context, database, container, partitionKeyPath string) error
}

// BlobStore is the object-storage surface the ensurer drives.
type BlobStore interface {
	ListBuckets(ctx context.Context) ([]string, error)
	CreateBucket(ctx context.Context, name string) error
}

// QueueStore is the queue surface the ensurer drives.
type QueueStore interface {
	ListQueues(ctx context.Context) ([]string, error)
	CreateQueue(ctx context.Context, name string) error
}

// DocumentNamespaceSpec names a document namespace and its partition key.
type DocumentNamespaceSpec struct {
	Database         string
	Container        string
	PartitionKeyPath string
}

// Ensurer performs check-then-create namespace setup. Repeated calls with
// the same spec are no-ops after the first successful creation.
type Ensurer struct {
	Logger zerolog.Logger
}

// NewEnsurer creates an Ensurer logging through the given root logger.
func NewEnsurer(logger zerolog.Logger) *Ensurer {
	return &Ensurer{Logger: telemetry.Component(logger, "ensure")}
}

// EnsureDocumentNamespace ensures the database, then the container with its
// partition-key path, as two ordered steps. Container creation is never
// attempted before database existence is confirmed.
func (e *Ensurer) EnsureDocumentNamespace(
	ctx context.Context,
	store DocumentStore,
	spec DocumentNamespaceSpec,
) (NamespaceHandle, error) {
	handle := NamespaceHandle{
		Kind:      topology.KindDocumentContainer,
		Database:  spec.Database,
		Container: spec.Container,
	}
	if strings.TrimSpace(spec.Database) == "" || strings.TrimSpace(spec.Container) == "" {
		return NamespaceHandle{}, &NamespaceEnsureError{
			Namespace: handle.Path(), Phase: "validate",
			Err: errors.New("database and container names are required"),
		}
	}

	if err := store.EnsureDatabase(ctx, spec.Database); err != nil {
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "database", Err: err}
	}

	existing, err := store.ListContainers(ctx, spec.Database)
	if err != nil {
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "list containers", Err: err}
	}
	for _, name := range existing {
		if name == spec.Container {
			e.Logger.Debug().Str("namespace", handle.Path()).Msg("container already exists, skipping")
			return handle, nil
		}
	}

	if err := store.CreateContainer(ctx, spec.Database, spec.Container, spec.PartitionKeyPath); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			e.Logger.Debug().Str("namespace", handle.Path()).Msg("container created concurrently, skipping")
			return handle, nil
		}
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "create container", Err: err}
	}

	e.Logger.Info().Str("namespace", handle.Path()).Msg("created document namespace")
	return handle, nil
}

// EnsureBucket ensures a blob container exists.
func (e *Ensurer) EnsureBucket(ctx context.Context, store BlobStore, name string) (NamespaceHandle, error) {
	handle := NamespaceHandle{Kind: topology.KindBlobContainer, Container: name}
	if strings.TrimSpace(name) == "" {
		return NamespaceHandle{}, &NamespaceEnsureError{
			Namespace: handle.Path(), Phase: "validate", Err: errors.New("bucket name is required"),
		}
	}

	existing, err := store.ListBuckets(ctx)
	if err != nil {
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "list buckets", Err: err}
	}
	for _, b := range existing {
		if b == name {
			e.Logger.Debug().Str("namespace", handle.Path()).Msg("bucket already exists, skipping")
			return handle, nil
		}
	}

	if err := store.CreateBucket(ctx, name); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return handle, nil
		}
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "create bucket", Err: err}
	}

	e.Logger.Info().Str("namespace", handle.Path()).Msg("created bucket")
	return handle, nil
}

// EnsureQueue ensures a queue exists.
func (e *Ensurer) EnsureQueue(ctx context.Context, store QueueStore, name string) (NamespaceHandle, error) {
	handle := NamespaceHandle{Kind: topology.KindQueue, Container: name}
	if strings.TrimSpace(name) == "" {
		return NamespaceHandle{}, &NamespaceEnsureError{
			Namespace: handle.Path(), Phase: "validate", Err: errors.New("queue name is required"),
		}
	}

	existing, err := store.ListQueues(ctx)
	if err != nil {
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "list queues", Err: err}
	}
	for _, q := range existing {
		if q == name {
			e.Logger.Debug().Str("namespace", handle.Path()).Msg("queue already exists, skipping")
			return handle, nil
		}
	}

	if err := store.CreateQueue(ctx, name); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return handle, nil
		}
		return NamespaceHandle{}, &NamespaceEnsureError{Namespace: handle.Path(), Phase: "create queue", Err: err}
	}

	e.Logger.Info().Str("namespace", handle.Path()).Msg("created queue")
	return handle, nil
}
