// compose.go generates the Docker Compose override file used by the
// compose-* verbs.
//
// dockhand does not rewrite the project's docker-compose.yml. Instead it
// writes a separate override file and passes it as the LAST -f argument,
// so Docker Compose merges it over the base file(s). The override carries:
//   - a top-level `name` that sets COMPOSE_PROJECT_NAME
//   - dockhand management labels on every service, so Compose-managed
//     containers show up in `dockhand status` through the same label
//     filter as SDK-managed ones
//   - published ports for services that have declared mappings
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// OverrideFileName is the name of the generated Compose override file.
const OverrideFileName = "docker-compose.dockhand.yml"

// composeOverride is the YAML structure of the generated override file,
// serialized with yaml.v3.
type composeOverride struct {
	// Name sets the Compose project name. Compose prefixes container,
	// network, and volume names with it.
	Name string `yaml:"name"`

	// Services maps service names to their override configuration.
	Services map[string]composeServiceOverride `yaml:"services"`
}

// composeServiceOverride holds only the fields the override changes;
// Docker Compose merges them with the base service definition.
type composeServiceOverride struct {
	// Ports lists port mappings in "hostPort:containerPort" format.
	// Present only for services with declared mappings; a ports entry
	// REPLACES the base file's list, so omitting it preserves the base.
	Ports []string `yaml:"ports,omitempty"`

	// Labels carries the dockhand management labels.
	Labels map[string]string `yaml:"labels"`
}

// GenerateComposeOverride builds the override YAML bytes.
//
// Parameters:
//   - projectName: the Compose project name (usually the app name)
//   - services: ALL service names from the base Compose file(s); every
//     one gets labels so every container is discoverable
//   - servicePorts: published ports per service; services absent from the
//     map keep the base file's ports
//   - labels: the management labels to apply to all services
//   - serviceLabels: extra labels per service, merged over the common
//     set. Services backing an environment carry their environment and
//     target identity here, so Compose-started containers reconstruct in
//     status exactly like SDK-started ones.
func GenerateComposeOverride(projectName string, services []string, servicePorts map[string][]model.PortMapping, labels map[string]string, serviceLabels map[string]map[string]string) ([]byte, error) {
	override := composeOverride{
		Name:     projectName,
		Services: make(map[string]composeServiceOverride),
	}

	// Sort service names so the generated YAML is reproducible and
	// diff-friendly.
	sorted := make([]string, len(services))
	copy(sorted, services)
	sort.Strings(sorted)

	for _, svc := range sorted {
		svcOverride := composeServiceOverride{
			Labels: make(map[string]string, len(labels)+len(serviceLabels[svc])),
		}
		for k, v := range labels {
			svcOverride.Labels[k] = v
		}
		for k, v := range serviceLabels[svc] {
			svcOverride.Labels[k] = v
		}

		for _, pm := range servicePorts[svc] {
			svcOverride.Ports = append(svcOverride.Ports,
				fmt.Sprintf("%d:%d", pm.HostPort, pm.ContainerPort))
		}

		override.Services[svc] = svcOverride
	}

	yamlBytes, err := yaml.Marshal(&override)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize compose override YAML: %w", err)
	}

	// Header comment warning against manual edits; the file is
	// regenerated on every compose-* invocation.
	header := fmt.Sprintf(
		"# Auto-generated by dockhand for project %q\n# DO NOT EDIT - this file is regenerated on each compose command\n",
		projectName,
	)

	return []byte(header + string(yamlBytes)), nil
}

// WriteComposeOverride writes the override bytes next to the project's
// compose files, creating parent directories as needed.
func WriteComposeOverride(outputPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
