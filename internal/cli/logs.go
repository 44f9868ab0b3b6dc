// logs.go implements the logs verb.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// logsFlags holds the flag values for the logs verb.
type logsFlags struct {
	follow bool
	tail   string
}

// NewLogsCommand creates the logs verb.
func NewLogsCommand() *cobra.Command {
	flags := &logsFlags{}

	cmd := &cobra.Command{
		Use:   "logs [prod|dev]",
		Short: "Show container logs",
		Long: `Stream logs from an environment's container (default: prod).

Stdout and stderr are demultiplexed to this process's stdout and stderr.
With --follow the stream stays open until interrupted.

Examples:
  dockhand logs
  dockhand logs dev --follow
  dockhand logs --tail 100`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environmentArg(args)
			if err != nil {
				return err
			}
			return runLogs(cmd.Context(), env, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.follow, "follow", "f", false, "Follow log output")
	cmd.Flags().StringVar(&flags.tail, "tail", "", "Number of lines to show from the end (default all)")

	return cmd
}

func runLogs(ctx context.Context, env model.Environment, flags *logsFlags) error {
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

	return docker.StreamLogs(ctx, cli, c.ContainerID, docker.LogsOptions{
		Follow: flags.follow,
		Tail:   flags.tail,
	}, os.Stdout, os.Stderr)
}
