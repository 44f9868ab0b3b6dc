package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

func managedContainer(name string, env model.Environment) model.ContainerInfo {
	return model.ContainerInfo{
		ContainerName: name,
		State:         "running",
		Labels: map[string]string{
			docker.LabelManagedBy:   docker.ManagedByValue,
			docker.LabelApp:         "frontend-app",
			docker.LabelEnvironment: env.String(),
		},
	}
}

// TestFilterByEnvironment verifies the stop verb's environment scoping:
// no argument touches everything, an argument narrows to that
// environment only.
func TestFilterByEnvironment(t *testing.T) {
	containers := []model.ContainerInfo{
		managedContainer("frontend-app-prod", model.EnvProduction),
		managedContainer("frontend-app-dev", model.EnvDevelopment),
	}

	t.Run("zero environment matches everything", func(t *testing.T) {
		assert.Len(t, filterByEnvironment(containers, ""), 2)
	})

	t.Run("prod keeps only prod", func(t *testing.T) {
		filtered := filterByEnvironment(containers, model.EnvProduction)

		require.Len(t, filtered, 1)
		assert.Equal(t, "frontend-app-prod", filtered[0].ContainerName)
	})

	t.Run("dev keeps only dev", func(t *testing.T) {
		filtered := filterByEnvironment(containers, model.EnvDevelopment)

		require.Len(t, filtered, 1)
		assert.Equal(t, "frontend-app-dev", filtered[0].ContainerName)
	})
}

// TestNewStopCommand_Args verifies stop accepts an optional environment
// argument and rejects more than one.
func TestNewStopCommand_Args(t *testing.T) {
	cmd := NewStopCommand()

	assert.NoError(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"dev"}))
	assert.Error(t, cmd.Args(cmd, []string{"dev", "prod"}),
		"stop takes at most one environment argument")
}
