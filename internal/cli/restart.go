// restart.go implements the restart verb.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewRestartCommand creates the restart verb.
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart [prod|dev]",
		Short: "Restart an environment's container",
		Long: `Restart the container of the given environment (default: prod).

The existing container is stopped and started again; the image is NOT
rebuilt. Use run-prod/run-dev to recreate a container from a fresh image.

Examples:
  dockhand restart
  dockhand restart dev`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environmentArg(args)
			if err != nil {
				return err
			}
			return runRestart(cmd.Context(), env)
		},
	}
}

// environmentArg resolves the optional environment positional argument,
// defaulting to prod. Shared by restart, logs, shell, and health.
func environmentArg(args []string) (model.Environment, error) {
	if len(args) == 0 {
		return model.EnvProduction, nil
	}
	env, err := model.ParseEnvironment(args[0])
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "invalid environment", err)
	}
	return env, nil
}

func runRestart(ctx context.Context, env model.Environment) error {
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

	c, err := docker.FindManagedContainer(ctx, cli, envCfg.ContainerName)
	if err != nil {
		return err
	}
	if c == nil {
		return model.NewCLIError(
			model.ExitContainerNotFound,
			fmt.Sprintf("no %s container found; run `dockhand run-%s` first", env, env),
		)
	}

	if c.State == "running" {
		log.Debug().Str("container", c.ContainerName).Msg("stopping container")
		if err := docker.StopContainer(ctx, cli, c.ContainerID); err != nil {
			return err
		}
	}

	log.Debug().Str("container", c.ContainerName).Msg("starting container")
	if err := docker.StartContainer(ctx, cli, c.ContainerID); err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"restarted":   c.ContainerName,
			"environment": env.String(),
		})
		return nil
	}
	fmt.Printf("Restarted %s\n", c.ContainerName)
	return nil
}
