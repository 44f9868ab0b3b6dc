package docker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// Label key constants define the Docker labels dockhand writes on every
// container it creates. The labels are the sole persistence mechanism:
// status, stop, restart, and clean all reconstruct their view of the
// world from them, and nothing is written to disk.
//
// All keys share the "dockhand." prefix to avoid collisions with labels
// set by other tools (Docker Compose, IDEs, ...).
const (
	// LabelPrefix is the common prefix for all dockhand labels.
	LabelPrefix = "dockhand."

	// LabelManagedBy identifies containers managed by dockhand.
	// Key: "dockhand.managed-by", value: always "dockhand".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelApp stores the application name from the manifest.
	LabelApp = LabelPrefix + "app"

	// LabelEnvironment stores the environment identity ("prod", "dev").
	LabelEnvironment = LabelPrefix + "environment"

	// LabelTarget stores the Dockerfile stage the image was built from.
	LabelTarget = LabelPrefix + "target"

	// LabelCreatedAt stores the RFC3339 creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"

	// LabelPortPrefix prefixes one label per published port:
	//   "dockhand.port.80" = "3000"
	// (container port in the key, host port in the value). Per-port labels
	// keep each mapping independently parseable and readable in
	// `docker inspect` output.
	LabelPortPrefix = LabelPrefix + "port."
)

// ManagedByValue is the constant value of the LabelManagedBy label.
const ManagedByValue = "dockhand"

// BuildLabels constructs the label map applied to an environment's
// container. The full AppEnvironment can be reconstructed from these
// labels alone via ParseLabels.
func BuildLabels(app string, env model.Environment, target model.BuildTarget, ports []model.PortMapping, createdAt time.Time) map[string]string {
	labels := map[string]string{
		LabelManagedBy:   ManagedByValue,
		LabelApp:         app,
		LabelEnvironment: env.String(),
		LabelTarget:      target.String(),
		// UTC keeps the timestamp consistent regardless of host timezone.
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}

	for _, pm := range ports {
		labels[PortLabelKey(pm.ContainerPort)] = strconv.Itoa(pm.HostPort)
	}

	return labels
}

// ParseLabels reconstructs an AppEnvironment from a container's labels.
// This is the inverse of BuildLabels. Status and Container are filled in
// by the caller from live Docker state, not from labels.
func ParseLabels(labels map[string]string) (*model.AppEnvironment, error) {
	required := []string{LabelManagedBy, LabelApp, LabelEnvironment, LabelTarget}

	// Collect all missing keys before failing so the error names every
	// problem at once.
	var missing []string
	for _, key := range required {
		if labels[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	env, err := model.ParseEnvironment(labels[LabelEnvironment])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelEnvironment, err)
	}

	target, err := model.ParseBuildTarget(labels[LabelTarget])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelTarget, err)
	}

	ports, err := ParsePortLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse port labels: %w", err)
	}

	return &model.AppEnvironment{
		App:         labels[LabelApp],
		Environment: env,
		Target:      target,
		Ports:       ports,
	}, nil
}

// PortLabelKey generates the label key for a container port, e.g.
// PortLabelKey(80) → "dockhand.port.80".
func PortLabelKey(containerPort int) string {
	return fmt.Sprintf("%s%d", LabelPortPrefix, containerPort)
}

// ParsePortLabels extracts all port mappings from a label map. The
// container port comes from the key suffix, the host port from the value.
//
// Returns an empty slice (not nil) when no port labels exist, and an
// error for malformed keys or values.
func ParsePortLabels(labels map[string]string) ([]model.PortMapping, error) {
	mappings := make([]model.PortMapping, 0, 2)

	for key, value := range labels {
		if !strings.HasPrefix(key, LabelPortPrefix) {
			continue
		}

		containerPort, err := strconv.Atoi(strings.TrimPrefix(key, LabelPortPrefix))
		if err != nil {
			return nil, fmt.Errorf("invalid container port in label key %q: %w", key, err)
		}

		hostPort, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid host port in label %q=%q: %w", key, value, err)
		}

		mappings = append(mappings, model.PortMapping{
			ContainerPort: containerPort,
			HostPort:      hostPort,
			// Labels only cover TCP; a UDP mapping would need its own
			// label scheme, and nothing in the managed stack uses UDP.
			Protocol: "tcp",
		})
	}

	return mappings, nil
}
