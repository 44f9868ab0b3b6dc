// build.go implements the build-prod, build-dev, and build-test verbs.
//
// All three share one implementation parameterized by the target stage;
// the daemon resolves the shared builder stage on its own, so building
// any target transparently reuses (or rebuilds) the compile stage.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// buildFlags holds the flag values for the build verbs.
type buildFlags struct {
	noCache bool   // --no-cache: disable the build cache
	pull    bool   // --pull: always pull newer base images
	tag     string // --tag: override the default image tag
}

// NewBuildCommand creates one of the build verbs for the given target.
func NewBuildCommand(verb string, target model.BuildTarget) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   verb,
		Short: fmt.Sprintf("Build the %s image", target),
		Long: fmt.Sprintf(`Build the %s stage of the project's multi-stage Dockerfile.

The resulting image is tagged <image>:%s unless --tag overrides it.

Examples:
  dockhand %s
  dockhand %s --no-cache
  dockhand %s --pull`, target, target.Tag(), verb, verb, verb),

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), target, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Do not use the build cache")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Always attempt to pull newer base images")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "Image tag (default: <image>:"+target.Tag()+")")

	return cmd
}

// runBuild is the shared implementation of the build verbs.
func runBuild(ctx context.Context, target model.BuildTarget, flags *buildFlags) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	cli, err := newDockerClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	tag := flags.tag
	if tag == "" {
		tag = m.Image + ":" + target.Tag()
	}

	log.Debug().
		Str("target", target.String()).
		Str("tag", tag).
		Bool("no_cache", flags.noCache).
		Bool("pull", flags.pull).
		Msg("building image")

	start := time.Now()
	err = docker.BuildImage(ctx, cli, docker.BuildOptions{
		ContextDir: m.Context,
		Dockerfile: m.Dockerfile,
		Target:     target,
		Tag:        tag,
		NoCache:    flags.noCache,
		Pull:       flags.pull,
		Labels: map[string]string{
			docker.LabelManagedBy: docker.ManagedByValue,
			docker.LabelApp:       m.App,
			docker.LabelTarget:    target.String(),
		},
	})
	if err != nil {
		return err
	}

	printBuildResult(tag, target, time.Since(start))
	return nil
}

// printBuildResult outputs the build result in text or JSON format.
func printBuildResult(tag string, target model.BuildTarget, elapsed time.Duration) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"image":   tag,
			"target":  target.String(),
			"elapsed": elapsed.Round(time.Millisecond).String(),
		})
		return
	}
	fmt.Printf("Built %s (target %s) in %s\n", tag, target, elapsed.Round(time.Millisecond))
}
