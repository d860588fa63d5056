// Where: cmd/seedbox/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"io"
	"os"

	"github.com/seedbox-dev/seedbox/internal/app"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
	"github.com/seedbox-dev/seedbox/internal/seedenv"
	"github.com/seedbox-dev/seedbox/internal/store"
	"github.com/seedbox-dev/seedbox/internal/telemetry"
)

var newDockerClient = resolver.NewDockerClient

// resolverSettings maps the parsed environment onto the resolver's inputs.
// All environment reading happens in seedenv; the resolver only ever sees
// these values.
func resolverSettings(env seedenv.Config) resolver.Settings {
	return resolver.Settings{
		Region:         env.Region,
		ComposeProject: env.ComposeProject,
		Ports: resolver.PortOverrides{
			Document: env.DatabasePort,
			Blob:     env.StoragePort,
			Queue:    env.QueuePort,
		},
		Credentials: resolver.EmulatorCredentials{
			DatabaseAccessKey: env.DatabaseAccessKey,
			DatabaseSecretKey: env.DatabaseSecretKey,
			StorageAccessKey:  env.StorageAccessKey,
			StorageSecretKey:  env.StorageSecretKey,
		},
	}
}

// awsBackends builds SDK-backed stores from resolved connection targets.
type awsBackends struct{}

func (awsBackends) Document(target resolver.ConnectionTarget, partitionKeyPath string) app.DocumentBackend {
	return store.NewDynamoDocumentStore(target, partitionKeyPath)
}

func (awsBackends) Blob(target resolver.ConnectionTarget) app.BlobBackend {
	return store.NewS3BlobStore(target)
}

func (awsBackends) Queue(target resolver.ConnectionTarget) app.QueueBackend {
	return store.NewSQSQueueStore(target)
}

// buildDependencies constructs all runtime dependencies required by the CLI.
// Port discovery degrades gracefully: without a reachable Docker daemon the
// resolver still honours declared endpoints and environment overrides.
func buildDependencies() (app.Dependencies, io.Closer, error) {
	env, err := seedenv.Load()
	if err != nil {
		return app.Dependencies{}, nil, err
	}

	logger := telemetry.NewLogger(os.Stderr, env.LogLevel, env.LogFormat)

	var ports resolver.PortResolver
	var closer io.Closer
	if client, err := newDockerClient(); err != nil {
		logger.Debug().Err(err).Msg("docker unavailable, skipping published-port discovery")
	} else {
		ports = resolver.NewDockerPortResolver(client)
		if c, ok := client.(io.Closer); ok {
			closer = c
		}
	}

	generator, err := record.NewGenerator(record.DefaultOptions())
	if err != nil {
		return app.Dependencies{}, nil, err
	}

	deps := app.Dependencies{
		Out:       os.Stdout,
		Logger:    logger,
		Resolver:  resolver.New(resolverSettings(env), ports, logger),
		Backends:  awsBackends{},
		Generator: generator,
		Waiter:    app.NewEndpointWaiter(env.WaitTimeout),
		Prompter:  app.HuhPrompter{},
		LoadEnv:   seedenv.Load,
	}
	return deps, closer, nil
}
