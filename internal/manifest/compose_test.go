package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// parsedOverride mirrors the generated YAML for assertions.
type parsedOverride struct {
	Name     string `yaml:"name"`
	Services map[string]struct {
		Ports  []string          `yaml:"ports"`
		Labels map[string]string `yaml:"labels"`
	} `yaml:"services"`
}

// TestGenerateComposeOverride verifies the override content: project
// name, labels on every service, and ports only on services that declare
// mappings.
func TestGenerateComposeOverride(t *testing.T) {
	labels := map[string]string{
		"dockhand.managed-by": "dockhand",
		"dockhand.app":        "frontend-app",
	}
	servicePorts := map[string][]model.PortMapping{
		"app": {{HostPort: 3000, ContainerPort: 80, Protocol: "tcp"}},
		"dev": {{HostPort: 3001, ContainerPort: 3000, Protocol: "tcp"}},
	}

	data, err := GenerateComposeOverride("frontend-app", []string{"app", "dev", "test"}, servicePorts, labels, nil)
	require.NoError(t, err)

	var parsed parsedOverride
	require.NoError(t, yaml.Unmarshal(data, &parsed), "generated override must be valid YAML")

	assert.Equal(t, "frontend-app", parsed.Name)
	require.Len(t, parsed.Services, 3)

	// Every service carries the management labels.
	for name, svc := range parsed.Services {
		assert.Equal(t, labels, svc.Labels, "service %q should carry the management labels", name)
	}

	// Ports only where declared; the test service keeps the base file's.
	assert.Equal(t, []string{"3000:80"}, parsed.Services["app"].Ports)
	assert.Equal(t, []string{"3001:3000"}, parsed.Services["dev"].Ports)
	assert.Empty(t, parsed.Services["test"].Ports,
		"a service without declared mappings must omit ports so the base file's list survives the merge")
}

// TestGenerateComposeOverride_Header verifies the do-not-edit header is
// present; the file is regenerated on every compose command.
func TestGenerateComposeOverride_Header(t *testing.T) {
	data, err := GenerateComposeOverride("frontend-app", []string{"app"}, nil, nil, nil)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# Auto-generated by dockhand"))
	assert.Contains(t, text, "DO NOT EDIT")
}

// TestGenerateComposeOverride_Deterministic verifies two generations of
// the same input produce identical bytes; the file may be committed, so
// diffs must stay quiet.
func TestGenerateComposeOverride_Deterministic(t *testing.T) {
	services := []string{"test", "app", "dev"}
	labels := map[string]string{"dockhand.managed-by": "dockhand"}

	serviceLabels := map[string]map[string]string{
		"app": {"dockhand.environment": "prod"},
	}

	first, err := GenerateComposeOverride("frontend-app", services, nil, labels, serviceLabels)
	require.NoError(t, err)
	second, err := GenerateComposeOverride("frontend-app", services, nil, labels, serviceLabels)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

// TestGenerateComposeOverride_ServiceLabels verifies per-service labels
// merge over the common set, and services without an entry keep only the
// common labels.
func TestGenerateComposeOverride_ServiceLabels(t *testing.T) {
	labels := map[string]string{
		"dockhand.managed-by": "dockhand",
		"dockhand.app":        "frontend-app",
	}
	serviceLabels := map[string]map[string]string{
		"app": {
			"dockhand.environment": "prod",
			"dockhand.target":      "production",
			"dockhand.port.80":     "3000",
		},
	}

	data, err := GenerateComposeOverride("frontend-app", []string{"app", "test"}, nil, labels, serviceLabels)
	require.NoError(t, err)

	var parsed parsedOverride
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	app := parsed.Services["app"].Labels
	assert.Equal(t, "dockhand", app["dockhand.managed-by"])
	assert.Equal(t, "prod", app["dockhand.environment"],
		"the environment-backing service must carry its environment identity")
	assert.Equal(t, "production", app["dockhand.target"])
	assert.Equal(t, "3000", app["dockhand.port.80"])

	assert.Equal(t, labels, parsed.Services["test"].Labels,
		"services without per-service labels keep only the common set")
}

// TestWriteComposeOverride verifies the file lands on disk, creating
// parent directories as needed.
func TestWriteComposeOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", OverrideFileName)

	require.NoError(t, WriteComposeOverride(path, []byte("name: test\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name: test\n", string(data))
}
