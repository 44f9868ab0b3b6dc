package cli

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// replaceableContainer builds the ContainerInfo of a running managed
// container that publishes the given host→container port.
func replaceableContainer(state string, hostPort, containerPort int) *model.ContainerInfo {
	return &model.ContainerInfo{
		ContainerID:   "abc123",
		ContainerName: "frontend-app-prod",
		State:         state,
		Labels: map[string]string{
			docker.LabelManagedBy:                 docker.ManagedByValue,
			docker.LabelApp:                       "frontend-app",
			docker.LabelEnvironment:               "prod",
			docker.LabelTarget:                    "production",
			docker.PortLabelKey(containerPort): strconv.Itoa(hostPort),
		},
	}
}

// TestPortsToPreflight verifies that re-running an environment does not
// trip over the ports its own previous container still binds: the
// replaced container's host ports are excluded from the pre-flight check,
// everything else is kept.
func TestPortsToPreflight(t *testing.T) {
	mappings := []model.PortMapping{
		{HostPort: 3000, ContainerPort: 80, Protocol: "tcp"},
	}

	t.Run("no existing container checks everything", func(t *testing.T) {
		assert.Equal(t, mappings, portsToPreflight(mappings, nil))
	})

	t.Run("running container's own ports are excluded", func(t *testing.T) {
		existing := replaceableContainer("running", 3000, 80)

		remaining := portsToPreflight(mappings, existing)

		assert.Empty(t, remaining,
			"the port held by the container being replaced must not count as a conflict")
	})

	t.Run("stopped container holds nothing", func(t *testing.T) {
		existing := replaceableContainer("exited", 3000, 80)

		remaining := portsToPreflight(mappings, existing)

		assert.Equal(t, mappings, remaining,
			"a stopped container binds no host ports, so its mappings are checked normally")
	})

	t.Run("unrelated ports stay checked", func(t *testing.T) {
		// The existing container binds 3005; the new config wants 3000.
		existing := replaceableContainer("running", 3005, 80)

		remaining := portsToPreflight(mappings, existing)

		assert.Equal(t, mappings, remaining,
			"ports not held by the replaced container must still be verified")
	})
}
