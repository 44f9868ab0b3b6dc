package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// InteractiveShell opens a shell inside a running container by executing
// "docker exec -it <container> <shell>" with this process's stdio
// attached.
//
// The docker CLI is used instead of the Engine API's exec endpoints
// because an interactive session needs raw-mode terminal handling, window
// resize propagation, and signal forwarding; all of which the docker CLI
// already does correctly. Non-interactive workflows in this package stay
// on the SDK.
func InteractiveShell(ctx context.Context, containerName, shell string) error {
	cmd := exec.CommandContext(ctx, "docker", "exec", "-it", containerName, shell)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// The shell itself exited non-zero (e.g. the user ran a
			// failing command and exited). Not a dockhand failure.
			if exitErr.ExitCode() > 0 {
				return nil
			}
		}
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to open shell in container %q", containerName),
			err,
		)
	}
	return nil
}
