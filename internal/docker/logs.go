package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// LogsOptions configures log streaming for the logs verb.
type LogsOptions struct {
	// Follow keeps the stream open and tails new output.
	Follow bool

	// Tail limits output to the last N lines; empty or "all" means
	// everything.
	Tail string
}

// StreamLogs copies a container's log output to the given writers until
// the stream ends (or indefinitely with Follow). Containers started
// without a TTY multiplex stdout and stderr into a single stream, so the
// SDK's stdcopy demultiplexer splits them back apart.
func StreamLogs(ctx context.Context, cli *Client, containerID string, opts LogsOptions, stdout, stderr io.Writer) error {
	tail := opts.Tail
	if tail == "" {
		tail = "all"
	}

	reader, err := cli.Inner().ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Tail:       tail,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to fetch logs for container %q", containerID),
			err,
		)
	}
	defer func() { _ = reader.Close() }()

	if _, err := stdcopy.StdCopy(stdout, stderr, reader); err != nil {
		// A canceled context (Ctrl-C during --follow) is a normal way to
		// leave the stream, not a failure.
		if ctx.Err() != nil {
			return nil
		}
		return model.WrapCLIError(
			model.ExitGeneralError,
			"failed to read container logs",
			err,
		)
	}
	return nil
}
