// Where: internal/resolver/ports_test.go
// What: Tests for port resolution helpers.
// Why: Configured overrides, Docker discovery, and defaults must layer predictably.
package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
)

type fakePortResolver struct {
	port  int
	err   error
	calls int
}

func (f *fakePortResolver) Resolve(_ context.Context, _ PortRequest) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.port, nil
}

func TestResolvePortUsesOverride(t *testing.T) {
	resolver := &fakePortResolver{port: 9999}

	port, ok := resolvePort(context.Background(), 8001, 8000, PortRequest{}, resolver)
	if !ok {
		t.Fatalf("expected port to resolve")
	}
	if port != 8001 {
		t.Fatalf("unexpected port: %d", port)
	}
	if resolver.calls != 0 {
		t.Fatalf("expected resolver not called")
	}
}

func TestResolvePortUsesResolverWithoutOverride(t *testing.T) {
	resolver := &fakePortResolver{port: 9002}

	port, ok := resolvePort(context.Background(), 0, 9000, PortRequest{}, resolver)
	if !ok {
		t.Fatalf("expected port to resolve")
	}
	if port != 9002 {
		t.Fatalf("unexpected port: %d", port)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected resolver called once")
	}
}

func TestResolvePortFallsBackToDefault(t *testing.T) {
	resolver := &fakePortResolver{err: errors.New("not found")}

	port, ok := resolvePort(context.Background(), 0, 9000, PortRequest{}, resolver)
	if !ok {
		t.Fatalf("expected port to resolve")
	}
	if port != 9000 {
		t.Fatalf("unexpected port: %d", port)
	}
}

type fakeDockerClient struct {
	containers []container.Summary
	err        error
}

func (f fakeDockerClient) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.err
}

func TestDockerPortResolverFindsPublishedPort(t *testing.T) {
	client := fakeDockerClient{containers: []container.Summary{
		{
			Labels: map[string]string{
				composeProjectLabel: "seedbox",
				composeServiceLabel: "database",
			},
			Ports: []container.Port{
				{PrivatePort: 8000, PublicPort: 32801},
			},
		},
	}}
	r := NewDockerPortResolver(client)

	port, err := r.Resolve(context.Background(), PortRequest{
		Project:       "seedbox",
		Service:       "database",
		ContainerPort: 8000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port != 32801 {
		t.Fatalf("unexpected port: %d", port)
	}
}

func TestDockerPortResolverRejectsIncompleteRequest(t *testing.T) {
	r := NewDockerPortResolver(fakeDockerClient{})
	if _, err := r.Resolve(context.Background(), PortRequest{Project: "seedbox"}); err == nil {
		t.Fatal("expected error for missing service")
	}
}
