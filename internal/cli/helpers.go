package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/manifest"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// loadProject resolves and loads the project manifest. The lookup order
// is: explicit DOCKHAND_MANIFEST_PATH / config setting, then
// dockhand.jsonc in the working directory, then built-in defaults.
func loadProject() (*manifest.Manifest, error) {
	path := cfg.ManifestPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
		}
		path = manifest.Find(cwd)
	}

	if path == "" {
		log.Debug().Msg("no dockhand.jsonc found, using defaults")
	} else {
		log.Debug().Str("path", path).Msg("loading manifest")
	}

	return manifest.Load(path)
}

// newDockerClient connects to the Docker daemon and verifies it responds.
// Callers must Close the returned client.
func newDockerClient(ctx context.Context) (*docker.Client, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}
	log.Debug().Msg("connected to Docker daemon")
	return cli, nil
}

// envConfig looks up an environment's configuration in the manifest.
func envConfig(m *manifest.Manifest, env model.Environment) (manifest.EnvConfig, error) {
	envCfg, ok := m.Environments[env]
	if !ok {
		return manifest.EnvConfig{}, model.NewCLIError(
			model.ExitManifestError,
			fmt.Sprintf("environment %q is not configured", env),
		)
	}
	return envCfg, nil
}

// composeProjectName returns the Compose project name: the configured
// override when set, otherwise the application name.
func composeProjectName(m *manifest.Manifest) string {
	if cfg.Compose.ProjectName != "" {
		return cfg.Compose.ProjectName
	}
	return m.App
}
