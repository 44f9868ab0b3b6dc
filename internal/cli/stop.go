// stop.go implements the stop verb.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewStopCommand creates the stop verb. With no argument it stops every
// managed container; with an environment argument only that environment's
// containers stop.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [prod|dev]",
		Short: "Stop managed containers",
		Long: `Stop containers managed by dockhand. Without an argument both
prod and dev stop; with an environment argument only that one does.

Already-stopped containers are skipped. The containers are not removed;
run-prod/run-dev restart them fresh, and clean removes them.

Examples:
  dockhand stop
  dockhand stop dev`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			// The zero Environment means "all"; environmentArg is not
			// used here because its no-arg default is prod.
			var env model.Environment
			if len(args) == 1 {
				parsed, err := model.ParseEnvironment(args[0])
				if err != nil {
					return err
				}
				env = parsed
			}
			return runStop(cmd.Context(), env)
		},
	}
}

func runStop(ctx context.Context, env model.Environment) error {
	cli, err := newDockerClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	containers = filterByEnvironment(containers, env)

	stopped := make([]string, 0, len(containers))
	for _, c := range containers {
		if c.State != "running" {
			log.Debug().Str("container", c.ContainerName).Msg("already stopped, skipping")
			continue
		}
		log.Debug().Str("container", c.ContainerName).Msg("stopping container")
		if err := docker.StopContainer(ctx, cli, c.ContainerID); err != nil {
			return err
		}
		stopped = append(stopped, c.ContainerName)
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{"stopped": stopped})
		return nil
	}

	if len(stopped) == 0 {
		fmt.Println("No running containers to stop")
		return nil
	}
	for _, name := range stopped {
		fmt.Printf("Stopped %s\n", name)
	}
	return nil
}

// filterByEnvironment keeps the containers labeled with the given
// environment. The zero environment matches everything.
func filterByEnvironment(containers []model.ContainerInfo, env model.Environment) []model.ContainerInfo {
	if env == "" {
		return containers
	}
	filtered := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		if c.Labels[docker.LabelEnvironment] == env.String() {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
