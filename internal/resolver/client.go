// Where: internal/resolver/client.go
// What: Docker client factory.
// Why: Shared construction point for the port-discovery client.
package resolver

import "github.com/docker/docker/client"

// NewDockerClient creates a Docker API client from the environment.
func NewDockerClient() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}
