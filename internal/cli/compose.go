// compose.go implements the compose-up, compose-dev, compose-test, and
// compose-down verbs.
//
// Every compose verb regenerates the dockhand override file and passes it
// as the LAST -f argument, so the project name, management labels, and
// port mappings always reflect the current manifest.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/manifest"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewComposeUpCommand creates a compose up verb. With an empty profile
// the default services start (compose-up); with a profile the profile's
// services start as well (compose-dev).
func NewComposeUpCommand(verb, profile string) *cobra.Command {
	short := "Start services with Docker Compose"
	if profile != "" {
		short = fmt.Sprintf("Start Compose services with the %q profile", profile)
	}

	return &cobra.Command{
		Use:   verb,
		Short: short,
		Long: short + `.

The dockhand override file (` + manifest.OverrideFileName + `) is regenerated
first and merged last, applying the project name, management labels, and
the manifest's port mappings.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposeUp(cmd.Context(), profile)
		},
	}
}

func runComposeUp(ctx context.Context, profile string) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	files, projectName, err := prepareComposeFiles(m)
	if err != nil {
		return err
	}

	log.Debug().
		Strs("files", files).
		Str("profile", profile).
		Str("project", projectName).
		Msg("running docker compose up")

	err = docker.ComposeUp(ctx, ".", files, profile, map[string]string{
		"COMPOSE_PROJECT_NAME": projectName,
	})
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"project": projectName,
			"profile": profile,
			"files":   files,
		})
		return nil
	}
	fmt.Printf("Compose project %q is up\n", projectName)
	return nil
}

// NewComposeTestCommand creates the compose-test verb.
func NewComposeTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compose-test",
		Short: "Run the test service with Docker Compose",
		Long: `Run the manifest's test service as a one-off foreground container
("docker compose run --rm <service>") and exit with the service's own
exit code; a failing test suite fails the command.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposeTest(cmd.Context())
		},
	}
}

func runComposeTest(ctx context.Context) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	files, projectName, err := prepareComposeFiles(m)
	if err != nil {
		return err
	}

	log.Debug().
		Str("service", m.TestService).
		Str("project", projectName).
		Msg("running test service")

	code, err := docker.ComposeRun(ctx, ".", files, m.TestService, map[string]string{
		"COMPOSE_PROJECT_NAME": projectName,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		// The test runner's exit code IS the result; pass it through.
		return model.NewCLIError(
			model.ExitCode(code),
			fmt.Sprintf("test service %q exited with code %d", m.TestService, code),
		)
	}

	if !IsJSONOutput() {
		fmt.Printf("Test service %q passed\n", m.TestService)
	} else {
		printJSON(map[string]interface{}{
			"service": m.TestService,
			"passed":  true,
		})
	}
	return nil
}

// NewComposeDownCommand creates the compose-down verb.
func NewComposeDownCommand() *cobra.Command {
	var removeVolumes bool

	cmd := &cobra.Command{
		Use:   "compose-down",
		Short: "Stop and remove Compose services",
		Long: `Stop and remove the Compose project's containers and networks.

Volumes are preserved unless --volumes is given.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposeDown(cmd.Context(), removeVolumes)
		},
	}

	cmd.Flags().BoolVar(&removeVolumes, "volumes", false, "Also remove named and anonymous volumes")

	return cmd
}

func runComposeDown(ctx context.Context, removeVolumes bool) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	files, projectName, err := prepareComposeFiles(m)
	if err != nil {
		return err
	}

	log.Debug().Str("project", projectName).Bool("volumes", removeVolumes).Msg("running docker compose down")

	if err := docker.ComposeDown(ctx, ".", files, removeVolumes); err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"project": projectName,
			"down":    true,
		})
		return nil
	}
	fmt.Printf("Compose project %q is down\n", projectName)
	return nil
}

// prepareComposeFiles regenerates the dockhand override file and returns
// the full -f file list (base files first, override last) along with the
// Compose project name.
func prepareComposeFiles(m *manifest.Manifest) ([]string, string, error) {
	projectName := composeProjectName(m)

	// Port mappings apply to the Compose service backing each environment;
	// other services keep whatever the base file declares.
	servicePorts := make(map[string][]model.PortMapping)
	for _, envCfg := range m.Environments {
		if envCfg.Service != "" {
			servicePorts[envCfg.Service] = envCfg.Ports
		}
	}

	labels, serviceLabels := composeServiceLabels(m)

	data, err := manifest.GenerateComposeOverride(projectName, m.ComposeServices, servicePorts, labels, serviceLabels)
	if err != nil {
		return nil, "", model.WrapCLIError(
			model.ExitGeneralError,
			"failed to generate compose override",
			err,
		)
	}

	overridePath := filepath.Join(".", manifest.OverrideFileName)
	if err := manifest.WriteComposeOverride(overridePath, data); err != nil {
		return nil, "", model.WrapCLIError(
			model.ExitGeneralError,
			"failed to write compose override",
			err,
		)
	}

	for _, f := range m.ComposeFiles {
		if _, err := os.Stat(f); err != nil {
			return nil, "", model.NewCLIError(
				model.ExitManifestError,
				fmt.Sprintf("compose file %q not found", f),
			)
		}
	}

	files := make([]string, 0, len(m.ComposeFiles)+1)
	files = append(files, m.ComposeFiles...)
	files = append(files, overridePath)
	return files, projectName, nil
}

// composeServiceLabels builds the label sets for the override file. Every
// service gets the common managed-by and app labels; a service backing an
// environment additionally gets that environment's identity and port
// labels, so a Compose-started container carries the full label set that
// status and stop reconstruct containers from.
func composeServiceLabels(m *manifest.Manifest) (map[string]string, map[string]map[string]string) {
	common := map[string]string{
		docker.LabelManagedBy: docker.ManagedByValue,
		docker.LabelApp:       m.App,
	}

	perService := make(map[string]map[string]string)
	for env, envCfg := range m.Environments {
		if envCfg.Service == "" {
			continue
		}
		svcLabels := map[string]string{
			docker.LabelEnvironment: env.String(),
			docker.LabelTarget:      envCfg.Target.String(),
		}
		for _, pm := range envCfg.Ports {
			svcLabels[docker.PortLabelKey(pm.ContainerPort)] = strconv.Itoa(pm.HostPort)
		}
		perService[envCfg.Service] = svcLabels
	}
	return common, perService
}
