// run.go implements the run-prod and run-dev verbs.
package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
	"github.com/dockhand-dev/dockhand/internal/port"
)

// NewRunCommand creates one of the run verbs for the given environment.
func NewRunCommand(verb string, env model.Environment) *cobra.Command {
	return &cobra.Command{
		Use:   verb,
		Short: fmt.Sprintf("Run the %s container", env),
		Long: fmt.Sprintf(`Start the %s container on its configured port mapping.

The %s image is built first if it does not exist locally. An existing
container with the same name is replaced. Host ports are verified to be
free before the old container is removed; ports the replaced container
itself holds do not count as conflicts.

Examples:
  dockhand %s`, env, env.Target(), verb),

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), env)
		},
	}
}

// runRun is the shared implementation of the run verbs.
//
// The sequence is:
//  1. Load the manifest and resolve the environment's configuration.
//  2. Connect to Docker.
//  3. Look up the existing same-name container (it will be replaced).
//  4. Verify the host ports are free, skipping ports the existing
//     container itself holds; those free up when it is removed.
//  5. Build the environment's image if it is missing locally.
//  6. Remove the existing container.
//  7. Create and start the container with management labels.
func runRun(ctx context.Context, env model.Environment) error {
	m, err := loadProject()
	if err != nil {
		return err
	}
	envCfg, err := envConfig(m, env)
	if err != nil {
		return err
	}

	cli, err := newDockerClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	existing, err := docker.FindManagedContainer(ctx, cli, envCfg.ContainerName)
	if err != nil {
		return err
	}

	// A running container to be replaced binds its host ports through
	// docker-proxy; counting those as conflicts would make every re-run
	// fail. Ports held by anything else still fail fast here, before the
	// old container is touched.
	if err := port.NewScanner().EnsureAvailable(portsToPreflight(envCfg.Ports, existing)); err != nil {
		return err
	}

	imageRef := envCfg.ImageTag(m.Image)
	if !docker.ImageExists(ctx, cli, imageRef) {
		log.Info().Str("image", imageRef).Msg("image not found locally, building")
		err := docker.BuildImage(ctx, cli, docker.BuildOptions{
			ContextDir: m.Context,
			Dockerfile: m.Dockerfile,
			Target:     envCfg.Target,
			Tag:        imageRef,
			Labels: map[string]string{
				docker.LabelManagedBy: docker.ManagedByValue,
				docker.LabelApp:       m.App,
				docker.LabelTarget:    envCfg.Target.String(),
			},
		})
		if err != nil {
			return err
		}
	}

	// Replace the leftover container from a previous run. A stopped (or
	// even running) container with the fixed name would make
	// ContainerCreate fail with a name conflict.
	if existing != nil {
		log.Debug().Str("container", existing.ContainerName).Msg("removing existing container")
		if err := docker.RemoveContainer(ctx, cli, existing.ContainerID, true); err != nil {
			return err
		}
	}

	containerID, err := docker.CreateAndStart(ctx, cli, docker.RunSpec{
		Name:   envCfg.ContainerName,
		Image:  imageRef,
		Ports:  envCfg.Ports,
		Env:    envVarList(envCfg.Env),
		Labels: docker.BuildLabels(m.App, env, envCfg.Target, envCfg.Ports, time.Now()),
	})
	if err != nil {
		return err
	}

	printRunResult(m.App, env, envCfg.ContainerName, containerID, envCfg.Ports)
	return nil
}

// portsToPreflight returns the port mappings that must be free before a
// run can proceed. Host ports bound by the running container being
// replaced are excluded: docker-proxy holds them on its behalf and
// releases them when the container is removed. A stopped container holds
// nothing, so its mappings are checked normally.
func portsToPreflight(mappings []model.PortMapping, existing *model.ContainerInfo) []model.PortMapping {
	if existing == nil || existing.State != "running" {
		return mappings
	}

	held := make(map[int]bool)
	if bound, err := docker.ParsePortLabels(existing.Labels); err == nil {
		for _, pm := range bound {
			held[pm.HostPort] = true
		}
	}

	remaining := make([]model.PortMapping, 0, len(mappings))
	for _, pm := range mappings {
		if !held[pm.HostPort] {
			remaining = append(remaining, pm)
		}
	}
	return remaining
}

// envVarList flattens a manifest env map into the KEY=value form the
// Docker API expects, sorted for deterministic container configs.
func envVarList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	vars := make([]string, 0, len(env))
	for k, v := range env {
		vars = append(vars, k+"="+v)
	}
	sort.Strings(vars)
	return vars
}

// printRunResult outputs the started container and its URL.
func printRunResult(app string, env model.Environment, name, containerID string, ports []model.PortMapping) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"app":          app,
			"environment":  env.String(),
			"container":    name,
			"container_id": containerID,
			"url":          localURL(ports, "/"),
		})
		return
	}

	fmt.Printf("Started %s (%s)\n", name, shortID(containerID))
	if url := localURL(ports, "/"); url != "" {
		fmt.Printf("Available at %s\n", url)
	}
}

// localURL builds the localhost URL for the first published port, with
// the given path appended. Returns "" when no ports are published.
func localURL(ports []model.PortMapping, path string) string {
	if len(ports) == 0 {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d%s", ports[0].HostPort, path)
}

// shortID truncates a container ID to the familiar 12-character form.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
