// Where: internal/resolver/ports.go
// What: Port resolution helpers for emulator services.
// Why: Discover dynamic ports when Docker Compose assigns them.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// PortRequest identifies a published container port by compose labels.
type PortRequest struct {
	Project       string
	Service       string
	ContainerPort int
}

// PortResolver discovers the published host port for a request.
type PortResolver interface {
	Resolve(ctx context.Context, request PortRequest) (int, error)
}

// DockerClient is the subset of the Docker SDK used for port discovery.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

type dockerPortResolver struct {
	Client DockerClient
}

// NewDockerPortResolver returns a PortResolver backed by the Docker API.
func NewDockerPortResolver(client DockerClient) PortResolver {
	return dockerPortResolver{Client: client}
}

func (r dockerPortResolver) Resolve(ctx context.Context, request PortRequest) (int, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("docker client is nil")
	}
	if strings.TrimSpace(request.Project) == "" {
		return 0, fmt.Errorf("compose project is required")
	}
	if strings.TrimSpace(request.Service) == "" {
		return 0, fmt.Errorf("compose service is required")
	}
	if request.ContainerPort <= 0 {
		return 0, fmt.Errorf("container port is required")
	}

	labelFilter := filters.NewArgs()
	labelFilter.Add("label", fmt.Sprintf("%s=%s", composeProjectLabel, request.Project))

	containers, err := r.Client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: labelFilter,
	})
	if err != nil {
		return 0, err
	}

	for _, ctr := range containers {
		if ctr.Labels == nil || ctr.Labels[composeProjectLabel] != request.Project {
			continue
		}
		if ctr.Labels[composeServiceLabel] != request.Service {
			continue
		}
		for _, port := range ctr.Ports {
			if int(port.PrivatePort) != request.ContainerPort {
				continue
			}
			if port.PublicPort > 0 {
				return int(port.PublicPort), nil
			}
		}
	}

	return 0, fmt.Errorf("published port not found for %s:%d", request.Service, request.ContainerPort)
}

// resolvePort picks the effective port: a configured override wins, then
// Docker discovery, then the declared default.
func resolvePort(
	ctx context.Context,
	override int,
	defaultPort int,
	request PortRequest,
	resolver PortResolver,
) (int, bool) {
	if override > 0 {
		return override, true
	}

	if resolver != nil {
		if resolved, err := resolver.Resolve(ctx, request); err == nil && resolved > 0 {
			return resolved, true
		}
	}
	if defaultPort > 0 {
		return defaultPort, true
	}
	return 0, false
}
