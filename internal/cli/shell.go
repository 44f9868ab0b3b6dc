// shell.go implements the shell verb.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewShellCommand creates the shell verb.
func NewShellCommand() *cobra.Command {
	var shell string

	cmd := &cobra.Command{
		Use:   "shell [prod|dev]",
		Short: "Open a shell in a running container",
		Long: `Open an interactive shell inside an environment's container
(default: prod).

The container must be running. /bin/sh is used by default because the
production image is Alpine-based; pass --shell for something else.

Examples:
  dockhand shell
  dockhand shell dev
  dockhand shell dev --shell /bin/bash`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environmentArg(args)
			if err != nil {
				return err
			}
			return runShell(cmd.Context(), env, shell)
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "/bin/sh", "Shell to execute inside the container")

	return cmd
}

func runShell(ctx context.Context, env model.Environment, shell string) error {
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
	if c == nil || c.State != "running" {
		return model.NewCLIError(
			model.ExitContainerNotFound,
			fmt.Sprintf("%s container is not running; run `dockhand run-%s` first", env, env),
		)
	}

	return docker.InteractiveShell(ctx, envCfg.ContainerName, shell)
}
