// Where: cmd/seedbox/cli_test.go
// What: Tests for CLI dependency wiring.
package main

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"

	"github.com/seedbox-dev/seedbox/internal/resolver"
	"github.com/seedbox-dev/seedbox/internal/seedenv"
)

type fakeDockerClient struct{}

func (fakeDockerClient) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return nil, nil
}

func TestBuildDependenciesSuccess(t *testing.T) {
	orig := newDockerClient
	t.Cleanup(func() { newDockerClient = orig })
	newDockerClient = func() (resolver.DockerClient, error) {
		return fakeDockerClient{}, nil
	}

	deps, closer, err := buildDependencies()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deps.Resolver == nil || deps.Backends == nil || deps.Generator == nil || deps.Waiter == nil {
		t.Fatal("expected fully wired dependencies")
	}
	if closer != nil {
		_ = closer.Close()
	}
}

func TestResolverSettingsMapsParsedEnvironment(t *testing.T) {
	env := seedenv.Config{
		Region:            "us-west-2",
		ComposeProject:    "devstack",
		DatabasePort:      18001,
		StoragePort:       19000,
		QueuePort:         19324,
		DatabaseAccessKey: "db-key",
		StorageSecretKey:  "store-secret",
	}

	settings := resolverSettings(env)
	if settings.Region != "us-west-2" || settings.ComposeProject != "devstack" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if settings.Ports != (resolver.PortOverrides{Document: 18001, Blob: 19000, Queue: 19324}) {
		t.Fatalf("unexpected port overrides: %+v", settings.Ports)
	}
	if settings.Credentials.DatabaseAccessKey != "db-key" || settings.Credentials.StorageSecretKey != "store-secret" {
		t.Fatalf("unexpected credentials: %+v", settings.Credentials)
	}
}

func TestBuildDependenciesWithoutDocker(t *testing.T) {
	orig := newDockerClient
	t.Cleanup(func() { newDockerClient = orig })
	newDockerClient = func() (resolver.DockerClient, error) {
		return nil, errors.New("no docker socket")
	}

	deps, closer, err := buildDependencies()
	if err != nil {
		t.Fatalf("docker absence must not fail wiring: %v", err)
	}
	if deps.Resolver == nil {
		t.Fatal("expected resolver without port discovery")
	}
	if closer != nil {
		t.Fatal("expected no closer without a docker client")
	}
}
