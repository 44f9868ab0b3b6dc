package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// writeManifest writes a dockhand.jsonc file into a temp project dir and
// returns its path.
func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestDefault verifies the built-in manifest reproduces the conventional
// scaffold: prod on 3000→80 (production stage), dev on 3001→3000
// (development stage), the standard compose service trio.
func TestDefault(t *testing.T) {
	m := Default()

	assert.Equal(t, "frontend-app", m.App)
	assert.Equal(t, "frontend-app", m.Image)
	assert.Equal(t, "Dockerfile", m.Dockerfile)
	assert.Equal(t, "/health", m.HealthPath)

	prod := m.Environments[model.EnvProduction]
	assert.Equal(t, "frontend-app-prod", prod.ContainerName)
	assert.Equal(t, model.TargetProduction, prod.Target)
	require.Len(t, prod.Ports, 1)
	assert.Equal(t, 3000, prod.Ports[0].HostPort)
	assert.Equal(t, 80, prod.Ports[0].ContainerPort)
	assert.Equal(t, "app", prod.Service)

	dev := m.Environments[model.EnvDevelopment]
	assert.Equal(t, "frontend-app-dev", dev.ContainerName)
	assert.Equal(t, model.TargetDevelopment, dev.Target)
	require.Len(t, dev.Ports, 1)
	assert.Equal(t, 3001, dev.Ports[0].HostPort)
	assert.Equal(t, 3000, dev.Ports[0].ContainerPort)
	assert.Equal(t, "dev", dev.Service)

	assert.Equal(t, []string{"docker-compose.yml"}, m.ComposeFiles)
	assert.Equal(t, []string{"app", "dev", "test"}, m.ComposeServices)
	assert.Equal(t, "test", m.TestService)

	// The defaults must validate; an absent manifest is the common case.
	assert.NoError(t, m.Validate())
}

// TestFind verifies manifest discovery in a project directory.
func TestFind(t *testing.T) {
	t.Run("manifest present", func(t *testing.T) {
		path := writeManifest(t, "{}")
		found := Find(filepath.Dir(path))
		assert.Equal(t, path, found)
	})

	t.Run("manifest absent", func(t *testing.T) {
		assert.Empty(t, Find(t.TempDir()),
			"a missing manifest is not an error; defaults apply")
	})
}

// TestLoad_EmptyPath verifies that an empty path yields the defaults.
func TestLoad_EmptyPath(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().App, m.App)
}

// TestLoad_JSONCComments verifies that JSONC comments are stripped before
// parsing; manifests are hand-edited, so comments are common.
func TestLoad_JSONCComments(t *testing.T) {
	path := writeManifest(t, `{
  // the application name
  "app": "shop-frontend",
  /* block comment */
  "healthPath": "/healthz",
}`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shop-frontend", m.App)
	assert.Equal(t, "/healthz", m.HealthPath)
}

// TestLoad_AppNameDerivesOtherNames verifies that setting only the app
// name renames the image and the per-environment containers.
func TestLoad_AppNameDerivesOtherNames(t *testing.T) {
	path := writeManifest(t, `{"app": "shop-frontend"}`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop-frontend", m.Image)
	assert.Equal(t, "shop-frontend-prod", m.Environments[model.EnvProduction].ContainerName)
	assert.Equal(t, "shop-frontend-dev", m.Environments[model.EnvDevelopment].ContainerName)
}

// TestLoad_EnvironmentOverrides verifies that partial environment entries
// merge over the defaults instead of replacing them.
func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeManifest(t, `{
  "environments": {
    "dev": {
      "ports": ["4001:3000"],
      "env": {"VITE_API_URL": "http://localhost:8080"}
    }
  }
}`)

	m, err := Load(path)
	require.NoError(t, err)

	dev := m.Environments[model.EnvDevelopment]
	require.Len(t, dev.Ports, 1)
	assert.Equal(t, 4001, dev.Ports[0].HostPort)
	assert.Equal(t, 3000, dev.Ports[0].ContainerPort)
	assert.Equal(t, "http://localhost:8080", dev.Env["VITE_API_URL"])
	// Untouched fields keep their defaults.
	assert.Equal(t, model.TargetDevelopment, dev.Target)
	assert.Equal(t, "frontend-app-dev", dev.ContainerName)

	// Prod is untouched entirely.
	assert.Equal(t, 3000, m.Environments[model.EnvProduction].Ports[0].HostPort)
}

// TestLoad_ComposeFilesStringOrArray verifies both accepted shapes of the
// compose files field.
func TestLoad_ComposeFilesStringOrArray(t *testing.T) {
	t.Run("single string", func(t *testing.T) {
		path := writeManifest(t, `{"compose": {"files": "compose.yml"}}`)
		m, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"compose.yml"}, m.ComposeFiles)
	})

	t.Run("array", func(t *testing.T) {
		path := writeManifest(t, `{"compose": {"files": ["a.yml", "b.yml"]}}`)
		m, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.yml", "b.yml"}, m.ComposeFiles)
	})
}

// TestLoad_Invalid verifies the failure modes all surface as
// ExitManifestError CLIErrors.
func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"app": }`},
		{"bad app name", `{"app": "Shop Frontend"}`},
		{"unknown environment", `{"environments": {"staging": {}}}`},
		{"builder not runnable", `{"environments": {"prod": {"target": "builder"}}}`},
		{"bad port entry", `{"environments": {"prod": {"ports": [true]}}}`},
		{"duplicate host port across environments", `{"environments": {"dev": {"ports": ["3000:3000"]}}}`},
		{"bad health path", `{"healthPath": "health"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, tc.content)

			_, err := Load(path)
			require.Error(t, err)

			cliErr, ok := err.(*model.CLIError)
			require.True(t, ok, "manifest failures should be CLIErrors")
			assert.Equal(t, model.ExitManifestError, cliErr.Code)
		})
	}
}

// TestParsePorts verifies the two accepted port entry shapes.
func TestParsePorts(t *testing.T) {
	t.Run("number publishes same port", func(t *testing.T) {
		ports, err := parsePorts([]interface{}{float64(8080)})
		require.NoError(t, err)
		require.Len(t, ports, 1)
		assert.Equal(t, 8080, ports[0].HostPort)
		assert.Equal(t, 8080, ports[0].ContainerPort)
		assert.Equal(t, "tcp", ports[0].Protocol)
	})

	t.Run("host colon container", func(t *testing.T) {
		ports, err := parsePorts([]interface{}{"3000:80"})
		require.NoError(t, err)
		require.Len(t, ports, 1)
		assert.Equal(t, 3000, ports[0].HostPort)
		assert.Equal(t, 80, ports[0].ContainerPort)
	})

	t.Run("protocol suffix", func(t *testing.T) {
		ports, err := parsePorts([]interface{}{"5000:5000/udp"})
		require.NoError(t, err)
		assert.Equal(t, "udp", ports[0].Protocol)
	})

	t.Run("missing colon", func(t *testing.T) {
		_, err := parsePorts([]interface{}{"3000"})
		assert.Error(t, err)
	})
}

// TestEnvConfigImageTag verifies the environment → image reference rule.
func TestEnvConfigImageTag(t *testing.T) {
	prod := EnvConfig{Target: model.TargetProduction}
	dev := EnvConfig{Target: model.TargetDevelopment}

	assert.Equal(t, "frontend-app:latest", prod.ImageTag("frontend-app"))
	assert.Equal(t, "frontend-app:dev", dev.ImageTag("frontend-app"))
}
