package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// TestBuildLabels verifies that BuildLabels produces the full management
// label set, including one port label per mapping.
func TestBuildLabels(t *testing.T) {
	// Arrange: a prod environment with the conventional 3000→80 mapping.
	createdAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	ports := []model.PortMapping{
		{HostPort: 3000, ContainerPort: 80, Protocol: "tcp"},
	}

	// Act
	labels := BuildLabels("frontend-app", model.EnvProduction, model.TargetProduction, ports, createdAt)

	// Assert: static labels.
	assert.Equal(t, ManagedByValue, labels[LabelManagedBy],
		"managed-by label should always carry the constant value")
	assert.Equal(t, "frontend-app", labels[LabelApp])
	assert.Equal(t, "prod", labels[LabelEnvironment])
	assert.Equal(t, "production", labels[LabelTarget])
	assert.Equal(t, "2026-08-01T09:30:00Z", labels[LabelCreatedAt])

	// Assert: one port label, container port in the key, host port in the
	// value.
	assert.Equal(t, "3000", labels["dockhand.port.80"])

	// 5 static labels + 1 port label.
	assert.Len(t, labels, 6)
}

// TestBuildLabels_TimestampIsUTC verifies that a non-UTC creation time is
// normalized to UTC in the label value.
func TestBuildLabels_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	createdAt := time.Date(2026, 8, 1, 18, 30, 0, 0, loc)

	labels := BuildLabels("frontend-app", model.EnvDevelopment, model.TargetDevelopment, nil, createdAt)

	assert.Equal(t, "2026-08-01T09:30:00Z", labels[LabelCreatedAt],
		"timestamp should be stored in UTC regardless of host timezone")
}

// TestParseLabels verifies that ParseLabels reconstructs an AppEnvironment
// from a label map. This is the inverse of BuildLabels.
func TestParseLabels(t *testing.T) {
	labels := map[string]string{
		LabelManagedBy:      ManagedByValue,
		LabelApp:            "frontend-app",
		LabelEnvironment:    "dev",
		LabelTarget:         "development",
		LabelCreatedAt:      "2026-08-01T09:30:00Z",
		"dockhand.port.3000": "3001",
	}

	appEnv, err := ParseLabels(labels)

	require.NoError(t, err, "ParseLabels should succeed with valid labels")
	assert.Equal(t, "frontend-app", appEnv.App)
	assert.Equal(t, model.EnvDevelopment, appEnv.Environment)
	assert.Equal(t, model.TargetDevelopment, appEnv.Target)

	require.Len(t, appEnv.Ports, 1)
	assert.Equal(t, 3001, appEnv.Ports[0].HostPort)
	assert.Equal(t, 3000, appEnv.Ports[0].ContainerPort)
}

// TestParseLabels_MissingRequired verifies that every missing required
// label is detected and named in the error.
func TestParseLabels_MissingRequired(t *testing.T) {
	testCases := []struct {
		name       string
		missingKey string
	}{
		{"missing managed-by", LabelManagedBy},
		{"missing app", LabelApp},
		{"missing environment", LabelEnvironment},
		{"missing target", LabelTarget},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			labels := map[string]string{
				LabelManagedBy:   ManagedByValue,
				LabelApp:         "frontend-app",
				LabelEnvironment: "prod",
				LabelTarget:      "production",
			}
			delete(labels, tc.missingKey)

			_, err := ParseLabels(labels)
			require.Error(t, err, "should fail when %s is missing", tc.missingKey)
			assert.Contains(t, err.Error(), tc.missingKey,
				"error message should name the missing label key")
		})
	}
}

// TestParseLabels_ForeignManagedBy verifies that containers labeled by a
// different tool are rejected rather than adopted.
func TestParseLabels_ForeignManagedBy(t *testing.T) {
	labels := map[string]string{
		LabelManagedBy:   "some-other-tool",
		LabelApp:         "frontend-app",
		LabelEnvironment: "prod",
		LabelTarget:      "production",
	}

	_, err := ParseLabels(labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected value")
}

// TestPortLabelKey verifies the label key format for container ports.
func TestPortLabelKey(t *testing.T) {
	assert.Equal(t, "dockhand.port.80", PortLabelKey(80))
	assert.Equal(t, "dockhand.port.3000", PortLabelKey(3000))
}

// TestParsePortLabels verifies port extraction from a mixed label map.
func TestParsePortLabels(t *testing.T) {
	labels := map[string]string{
		// Non-port labels should be ignored.
		LabelManagedBy: ManagedByValue,
		LabelApp:       "frontend-app",
		// Port labels to be parsed.
		"dockhand.port.80":   "3000",
		"dockhand.port.3000": "3001",
	}

	mappings, err := ParsePortLabels(labels)
	require.NoError(t, err)
	assert.Len(t, mappings, 2)

	// Map iteration order is not guaranteed; assert via lookup map.
	portMap := make(map[int]int)
	for _, pm := range mappings {
		portMap[pm.ContainerPort] = pm.HostPort
		assert.Equal(t, "tcp", pm.Protocol, "port labels only cover tcp")
	}
	assert.Equal(t, 3000, portMap[80])
	assert.Equal(t, 3001, portMap[3000])
}

// TestParsePortLabels_Empty verifies the no-ports case returns an empty
// slice, not nil; callers range over it without a nil check.
func TestParsePortLabels_Empty(t *testing.T) {
	mappings, err := ParsePortLabels(map[string]string{LabelManagedBy: ManagedByValue})
	require.NoError(t, err)
	assert.NotNil(t, mappings)
	assert.Empty(t, mappings)
}

// TestParsePortLabels_InvalidFormat verifies malformed keys and values
// are rejected.
func TestParsePortLabels_InvalidFormat(t *testing.T) {
	t.Run("non-numeric container port", func(t *testing.T) {
		_, err := ParsePortLabels(map[string]string{"dockhand.port.http": "3000"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid container port")
	})

	t.Run("non-numeric host port", func(t *testing.T) {
		_, err := ParsePortLabels(map[string]string{"dockhand.port.80": "not-a-port"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid host port")
	})
}

// TestBuildAndParseLabelRoundTrip verifies that BuildLabels and
// ParseLabels are inverse operations for the fields labels persist.
func TestBuildAndParseLabelRoundTrip(t *testing.T) {
	ports := []model.PortMapping{
		{HostPort: 3001, ContainerPort: 3000, Protocol: "tcp"},
	}

	labels := BuildLabels("frontend-app", model.EnvDevelopment, model.TargetDevelopment, ports, time.Now())
	parsed, err := ParseLabels(labels)
	require.NoError(t, err)

	assert.Equal(t, "frontend-app", parsed.App)
	assert.Equal(t, model.EnvDevelopment, parsed.Environment)
	assert.Equal(t, model.TargetDevelopment, parsed.Target)
	require.Len(t, parsed.Ports, 1)
	assert.Equal(t, ports[0].HostPort, parsed.Ports[0].HostPort)
	assert.Equal(t, ports[0].ContainerPort, parsed.Ports[0].ContainerPort)
}
