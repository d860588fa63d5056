// Where: internal/importer/importer.go
// What: Batch import of generated records with per-item failure isolation.
// Why: One bad record must not lose the remainder of the batch.
package importer

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/telemetry"
)

// ItemWriter performs a single create-item write into an ensured namespace.
type ItemWriter interface {
	WriteItem(ctx context.Context, ns ensure.NamespaceHandle, rec record.DomainRecord) error
}

// ItemWriteError reports one failed item write.
type ItemWriteError struct {
	RecordID string
	Err      error
}

func (e *ItemWriteError) Error() string {
	return fmt.Sprintf("write item %s: %v", e.RecordID, e.Err)
}

func (e *ItemWriteError) Unwrap() error { return e.Err }

// ItemFailure pairs a record with the error that kept it out of the namespace.
type ItemFailure struct {
	Record record.DomainRecord
	Err    error
}

// Summary reports the outcome of one import run.
type Summary struct {
	Succeeded int
	Failed    []ItemFailure
}

// Executor writes generated records one by one.
type Executor struct {
	Writer     ItemWriter
	ImportedBy string
	Logger     zerolog.Logger

	// now and newID are seams for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewExecutor creates an Executor stamping records as importedBy.
func NewExecutor(writer ItemWriter, importedBy string, logger zerolog.Logger) *Executor {
	return &Executor{
		Writer:     writer,
		ImportedBy: importedBy,
		Logger:     telemetry.Component(logger, "importer"),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.NewString() },
	}
}

// ImportAll consumes records in order. Each record gets a fresh identifier,
// provenance stamps, and the shared partition key before a single create-item
// write. A failed write is recorded in the summary and does not halt the
// remaining records. Cancellation is checked before each write; once
// signalled no new writes are issued and the partial summary is returned
// alongside the context error.
func (e *Executor) ImportAll(
	ctx context.Context,
	ns ensure.NamespaceHandle,
	records iter.Seq[record.DomainRecord],
	partitionKey string,
) (Summary, error) {
	summary := Summary{}

	for rec := range records {
		if err := ctx.Err(); err != nil {
			e.Logger.Warn().
				Str("namespace", ns.Path()).
				Int("succeeded", summary.Succeeded).
				Msg("import cancelled, returning partial summary")
			return summary, fmt.Errorf("import into %s cancelled: %w", ns.Path(), err)
		}

		rec.ID = e.newID()
		rec.ImportedBy = e.ImportedBy
		rec.ImportedOn = e.now()
		rec.PartitionKey = partitionKey

		if err := e.Writer.WriteItem(ctx, ns, rec); err != nil {
			failure := &ItemWriteError{RecordID: rec.ID, Err: err}
			summary.Failed = append(summary.Failed, ItemFailure{Record: rec, Err: failure})
			e.Logger.Error().
				Err(failure).
				Str("namespace", ns.Path()).
				Str("record", rec.ID).
				Msg("item write failed, continuing with remaining records")
			continue
		}
		summary.Succeeded++
	}

	e.Logger.Info().
		Str("namespace", ns.Path()).
		Int("succeeded", summary.Succeeded).
		Int("failed", len(summary.Failed)).
		Msg("import finished")
	return summary, nil
}
