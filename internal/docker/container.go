// container.go implements container lifecycle operations for the
// dockhand CLI: creating the prod/dev containers with published ports and
// management labels, and listing/starting/stopping/removing them.
//
// All managed containers carry the "dockhand.managed-by" label, which is
// the discovery mechanism for status, stop, restart, and clean.
package docker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// RunSpec describes the container created for one environment.
type RunSpec struct {
	// Name is the fixed container name.
	Name string

	// Image is the image reference to run.
	Image string

	// Ports are the published port mappings.
	Ports []model.PortMapping

	// Env holds container environment variables as KEY=value strings.
	Env []string

	// Labels is the dockhand management label set.
	Labels map[string]string
}

// CreateAndStart creates a container from the spec and starts it,
// returning the new container ID. Port bindings publish on all host
// interfaces, matching what `docker run -p host:container` does.
func CreateAndStart(ctx context.Context, cli *Client, spec RunSpec) (string, error) {
	exposed := make(nat.PortSet, len(spec.Ports))
	bindings := make(nat.PortMap, len(spec.Ports))
	for _, pm := range spec.Ports {
		proto := pm.Protocol
		if proto == "" {
			proto = "tcp"
		}
		port := nat.Port(fmt.Sprintf("%d/%s", pm.ContainerPort, proto))
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{
			HostPort: strconv.Itoa(pm.HostPort),
		}}
	}

	resp, err := cli.Inner().ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Env:          spec.Env,
			Labels:       spec.Labels,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
			// unless-stopped survives daemon restarts but respects an
			// explicit `dockhand stop`.
			RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		},
		nil, // network config
		nil, // platform
		spec.Name,
	)
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create container %q", spec.Name),
			err,
		)
	}

	if err := cli.Inner().ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", spec.Name),
			err,
		)
	}

	return resp.ID, nil
}

// ListManagedContainers queries the daemon for all containers carrying
// the dockhand management label, including stopped ones; a stopped
// container still represents an environment for status/restart/clean.
// The label filter runs server-side, so unrelated containers never cross
// the wire.
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	return result, nil
}

// containerToInfo converts a Docker API container summary into the domain
// ContainerInfo. The API returns names with a leading "/" that is an
// artifact of the API, not meaningful to users, so it is stripped.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Image:         c.Image,
		State:         c.State,
		Labels:        c.Labels,
	}
}

// FindManagedContainer returns the managed container with the given name,
// or nil when none exists.
func FindManagedContainer(ctx context.Context, cli *Client, name string) (*model.ContainerInfo, error) {
	containers, err := ListManagedContainers(ctx, cli)
	if err != nil {
		return nil, err
	}
	for i := range containers {
		if containers[i].ContainerName == name {
			return &containers[i], nil
		}
	}
	return nil, nil
}

// GroupByEnvironment groups managed containers by their
// "dockhand.environment" label. Containers without the label (which
// should not happen for properly labeled containers) are skipped.
func GroupByEnvironment(containers []model.ContainerInfo) map[model.Environment][]model.ContainerInfo {
	groups := make(map[model.Environment][]model.ContainerInfo)

	for _, c := range containers {
		env, err := model.ParseEnvironment(c.Labels[LabelEnvironment])
		if err != nil {
			continue
		}
		groups[env] = append(groups[env], c)
	}

	return groups
}

// DetermineStatus computes the aggregate status of an environment from
// its containers: any running container means running, otherwise stopped;
// no containers at all means missing.
func DetermineStatus(containers []model.ContainerInfo) model.AppStatus {
	if len(containers) == 0 {
		return model.StatusMissing
	}
	for _, c := range containers {
		if c.State == "running" {
			return model.StatusRunning
		}
	}
	return model.StatusStopped
}

// BuildAppEnvironment reconstructs the AppEnvironment aggregate for one
// environment from its containers' labels and live state.
func BuildAppEnvironment(env model.Environment, containers []model.ContainerInfo) (*model.AppEnvironment, error) {
	if len(containers) == 0 {
		return nil, fmt.Errorf("cannot build environment %q: no containers provided", env)
	}

	// All of an environment's containers carry identical dockhand labels,
	// so the first one is as good as any.
	appEnv, err := ParseLabels(containers[0].Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labels for environment %q: %w", env, err)
	}

	appEnv.Container = &containers[0]
	appEnv.Status = DetermineStatus(containers)
	return appEnv, nil
}

// StartContainer starts a stopped container by ID.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", containerID),
			err,
		)
	}
	return nil
}

// StopContainer stops a running container by ID. The daemon sends SIGTERM
// and escalates to SIGKILL after its default timeout (10 seconds).
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by ID. With force true the daemon
// kills a running container before removing it.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	if err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}
