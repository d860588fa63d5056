// Where: internal/app/up.go
// What: Up command: wait for declared resources, then seed each one once.
// Why: The readiness-to-import binding is the reason this tool exists.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/importer"
	"github.com/seedbox-dev/seedbox/internal/lifecycle"
	"github.com/seedbox-dev/seedbox/internal/seedenv"
	"github.com/seedbox-dev/seedbox/internal/topology"
	"github.com/seedbox-dev/seedbox/internal/ui"
)

// runUp loads the topology, raises a readiness signal per resource, and
// drains the import routines. Routine failures are reported but never abort
// sibling resources.
func runUp(cli CLI, deps Dependencies, out io.Writer) int {
	if deps.Resolver == nil || deps.Backends == nil || deps.Generator == nil {
		fmt.Fprintln(out, "up: dependencies not configured")
		return 1
	}

	env, err := deps.LoadEnv()
	if err != nil {
		return exitWithError(out, err)
	}
	importPath, err := env.EnsureImportSource()
	if err != nil {
		return exitWithError(out, err)
	}

	manifest, err := topology.Load(cli.Manifest)
	if err != nil {
		return exitWithError(out, err)
	}
	resources := manifest.Descriptors()
	if len(resources) == 0 {
		fmt.Fprintln(out, "up: topology declares no resources")
		return 1
	}

	count := cli.Up.Count
	if count <= 0 {
		count = env.SeedCount
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := lifecycle.NewDispatcher(resources, deps.Logger)
	bindRoutines(dispatcher, deps, env, importPath, count)

	console := ui.New(out)
	console.Header("🌱", fmt.Sprintf("Seeding %s (%s)", manifest.Project, env.Environment))
	console.Item("Import source", importPath)
	console.Item("Records", count)

	signalReadiness(ctx, dispatcher, deps, cli.Up.NoWait, resources)
	dispatcher.Wait()

	failed := 0
	for _, machine := range dispatcher.Machines() {
		res := machine.Resource()
		switch machine.State() {
		case lifecycle.StateCompleted:
			console.Success(fmt.Sprintf("%s seeded", res.Key()))
		case lifecycle.StateFailed:
			failed++
			console.Failure(fmt.Sprintf("%s failed: %v", res.Key(), machine.Err()))
		default:
			failed++
			console.Failure(fmt.Sprintf("%s stuck in %s", res.Key(), machine.State()))
		}
	}

	if failed > 0 {
		console.Info(fmt.Sprintf("%d of %d resources not seeded", failed, len(resources)))
		return 1
	}
	console.Info("All resources seeded")
	return 0
}

// signalReadiness feeds the dispatcher: emulated resources are probed first,
// live resources (and --no-wait runs) are signalled immediately. Probes for
// different resources run concurrently.
func signalReadiness(
	ctx context.Context,
	dispatcher *lifecycle.Dispatcher,
	deps Dependencies,
	noWait bool,
	resources []topology.ResourceDescriptor,
) {
	var probes sync.WaitGroup
	for _, res := range resources {
		endpoint := ""
		if res.Parent != nil {
			endpoint = res.Parent.Endpoint
		}
		if noWait || !res.IsEmulator || endpoint == "" || deps.Waiter == nil {
			_ = dispatcher.NotifyReady(ctx, res.Key())
			continue
		}

		dispatcher.MarkProvisioning(res.Key())
		probes.Add(1)
		go func(res topology.ResourceDescriptor, endpoint string) {
			defer probes.Done()
			if err := deps.Waiter.Wait(ctx, endpoint); err != nil {
				deps.Logger.Error().Err(err).
					Str("resource", res.Key()).
					Str("phase", "readiness").
					Msg("resource never became ready")
				return
			}
			_ = dispatcher.NotifyReady(ctx, res.Key())
		}(res, endpoint)
	}
	probes.Wait()
}

// bindRoutines attaches one import routine per resource kind. Each routine
// resolves its own connection, ensures its own namespace, and owns its own
// record sequence; nothing is shared across concurrently running routines.
func bindRoutines(
	dispatcher *lifecycle.Dispatcher,
	deps Dependencies,
	env seedenv.Config,
	importPath string,
	count int,
) {
	ensurer := ensure.NewEnsurer(deps.Logger)

	dispatcher.Bind(topology.KindDocumentContainer, func(ctx context.Context, res topology.ResourceDescriptor) error {
		target, err := deps.Resolver.Resolve(ctx, res)
		if err != nil {
			return err
		}
		backend := deps.Backends.Document(target, res.PartitionKeyPath)
		ns, err := ensurer.EnsureDocumentNamespace(ctx, backend, ensure.DocumentNamespaceSpec{
			Database:         res.Parent.Name,
			Container:        res.Name,
			PartitionKeyPath: res.PartitionKeyPath,
		})
		if err != nil {
			return err
		}
		return runImport(ctx, deps, env, backend, ns, importPath, count)
	})

	dispatcher.Bind(topology.KindBlobContainer, func(ctx context.Context, res topology.ResourceDescriptor) error {
		target, err := deps.Resolver.Resolve(ctx, res)
		if err != nil {
			return err
		}
		backend := deps.Backends.Blob(target)
		ns, err := ensurer.EnsureBucket(ctx, backend, res.Name)
		if err != nil {
			return err
		}
		return runImport(ctx, deps, env, backend, ns, importPath, count)
	})

	dispatcher.Bind(topology.KindQueue, func(ctx context.Context, res topology.ResourceDescriptor) error {
		target, err := deps.Resolver.Resolve(ctx, res)
		if err != nil {
			return err
		}
		backend := deps.Backends.Queue(target)
		ns, err := ensurer.EnsureQueue(ctx, backend, res.Name)
		if err != nil {
			return err
		}
		return runImport(ctx, deps, env, backend, ns, importPath, count)
	})
}

func runImport(
	ctx context.Context,
	deps Dependencies,
	env seedenv.Config,
	writer importer.ItemWriter,
	ns ensure.NamespaceHandle,
	importPath string,
	count int,
) error {
	executor := importer.NewExecutor(writer, env.ImportedBy, deps.Logger)
	summary, err := executor.ImportAll(ctx, ns, deps.Generator.Generate(count), importPath)
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 {
		deps.Logger.Warn().
			Str("namespace", ns.Path()).
			Int("succeeded", summary.Succeeded).
			Int("failed", len(summary.Failed)).
			Msg("batch finished with per-item failures")
	}
	return nil
}
