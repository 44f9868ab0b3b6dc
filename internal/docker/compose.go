// compose.go drives docker compose as a child process. The Compose
// workflow is deliberately NOT reimplemented on the Engine API: compose
// owns service dependency ordering, network and volume lifecycle, and
// file merging, and the plugin-style `docker compose` invocation is the
// stable interface to all of it.
package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// ComposeUp starts services with "docker compose -f ... up -d". Compose
// merges the -f files in order, so the dockhand override must be the last
// entry in composeFiles to take precedence.
func ComposeUp(ctx context.Context, projectDir string, composeFiles []string, profile string, envVars map[string]string) error {
	args := composeArgs(composeFiles, profile)
	args = append(args, "up", "-d")
	_, err := runCompose(ctx, projectDir, args, envVars, false)
	return err
}

// ComposeRun runs a one-off service container in the foreground with
// "docker compose run --rm <service>" and returns the service's exit
// code. This backs compose-test: the test runner's exit code is the
// command's result.
func ComposeRun(ctx context.Context, projectDir string, composeFiles []string, service string, envVars map[string]string) (int, error) {
	args := composeArgs(composeFiles, "")
	args = append(args, "run", "--rm", service)
	return runCompose(ctx, projectDir, args, envVars, true)
}

// ComposeDown stops and removes compose-managed containers and networks.
// With removeVolumes true, named and anonymous volumes go too.
func ComposeDown(ctx context.Context, projectDir string, composeFiles []string, removeVolumes bool) error {
	args := composeArgs(composeFiles, "")
	args = append(args, "down")
	if removeVolumes {
		args = append(args, "-v")
	}
	_, err := runCompose(ctx, projectDir, args, nil, false)
	return err
}

// composeArgs builds the shared leading arguments: the compose subcommand,
// one -f per file (merge order matters), and an optional --profile.
func composeArgs(composeFiles []string, profile string) []string {
	args := make([]string, 0, len(composeFiles)*2+4)
	args = append(args, "compose")
	for _, f := range composeFiles {
		args = append(args, "-f", f)
	}
	if profile != "" {
		args = append(args, "--profile", profile)
	}
	return args
}

// runCompose executes "docker <args...>" in projectDir with extra
// environment variables appended. When passthrough is true, the child
// inherits this process's stdio (needed for foreground test runs);
// otherwise output is captured and only surfaced on failure.
//
// Returns the child's exit code alongside any error.
func runCompose(ctx context.Context, projectDir string, args []string, envVars map[string]string, passthrough bool) (int, error) {
	// "docker compose" (plugin) rather than the legacy docker-compose
	// binary; modern Docker ships compose as a plugin subcommand.
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = projectDir

	cmd.Env = os.Environ()
	for k, v := range envVars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if passthrough {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				// The service ran and exited non-zero; that exit code is
				// the meaningful result, not a compose failure.
				return exitErr.ExitCode(), nil
			}
			return -1, model.WrapCLIError(
				model.ExitDockerNotRunning,
				"docker compose failed",
				err,
			)
		}
		return 0, nil
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return -1, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker compose failed: %s", strings.TrimSpace(string(output))),
			err,
		)
	}
	return 0, nil
}
