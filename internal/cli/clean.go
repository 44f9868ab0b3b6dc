// clean.go implements the clean verb.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/manifest"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewCleanCommand creates the clean verb.
func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all managed containers and images",
		Long: `Remove everything dockhand created: managed containers (running ones
are force-removed), the project's images for every target tag, and the
generated Compose override file.

Cleanup continues past individual failures and reports them at the end,
so one stuck resource never blocks the rest.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context())
		},
	}
}

func runClean(ctx context.Context) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	cli, err := newDockerClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	var removed []string
	var failures []string

	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	for _, c := range containers {
		if err := docker.RemoveContainer(ctx, cli, c.ContainerID, true); err != nil {
			log.Warn().Str("container", c.ContainerName).Err(err).Msg("failed to remove container")
			failures = append(failures, fmt.Sprintf("container %s: %v", c.ContainerName, err))
			continue
		}
		removed = append(removed, "container "+c.ContainerName)
	}

	// One image per runnable target. A tag that was never built simply
	// does not exist locally and is skipped.
	for _, target := range []model.BuildTarget{
		model.TargetProduction,
		model.TargetDevelopment,
		model.TargetTesting,
	} {
		ref := m.Image + ":" + target.Tag()
		if !docker.ImageExists(ctx, cli, ref) {
			continue
		}
		if err := docker.RemoveImage(ctx, cli, ref, true); err != nil {
			log.Warn().Str("image", ref).Err(err).Msg("failed to remove image")
			failures = append(failures, fmt.Sprintf("image %s: %v", ref, err))
			continue
		}
		removed = append(removed, "image "+ref)
	}

	overridePath := filepath.Join(".", manifest.OverrideFileName)
	if _, err := os.Stat(overridePath); err == nil {
		if err := os.Remove(overridePath); err != nil {
			failures = append(failures, fmt.Sprintf("file %s: %v", overridePath, err))
		} else {
			removed = append(removed, "file "+manifest.OverrideFileName)
		}
	}

	printCleanResult(removed, failures)

	if len(failures) > 0 {
		return model.NewCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("clean completed with %d failure(s)", len(failures)),
		)
	}
	return nil
}

func printCleanResult(removed, failures []string) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"removed":  removed,
			"failures": failures,
		})
		return
	}

	if len(removed) == 0 && len(failures) == 0 {
		fmt.Println("Nothing to clean")
		return
	}
	for _, item := range removed {
		fmt.Printf("Removed %s\n", item)
	}
	for _, item := range failures {
		fmt.Printf("Failed: %s\n", item)
	}
}
