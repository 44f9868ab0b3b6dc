package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// TestNewRootCommand_VerbTable verifies that every verb is registered
// under its literal name; scripts call `dockhand build-prod`, not
// `dockhand build prod`.
func TestNewRootCommand_VerbTable(t *testing.T) {
	rootCmd := NewRootCommand()

	expected := []string{
		"build-prod", "build-dev", "build-test",
		"run-prod", "run-dev",
		"stop", "restart", "clean",
		"logs", "shell", "health", "status",
		"compose-up", "compose-dev", "compose-test", "compose-down",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, verb := range expected {
		assert.True(t, registered[verb], "verb %q should be registered", verb)
	}
}

// TestNewRootCommand_GlobalFlags verifies the persistent flags every
// subcommand inherits.
func TestNewRootCommand_GlobalFlags(t *testing.T) {
	rootCmd := NewRootCommand()

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("json"))

	// -v is the shorthand for --verbose.
	verbose := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

// TestNewRootCommand_BuildFlags verifies the build verbs expose
// --no-cache and --pull.
func TestNewRootCommand_BuildFlags(t *testing.T) {
	rootCmd := NewRootCommand()

	for _, verb := range []string{"build-prod", "build-dev", "build-test"} {
		cmd, _, err := rootCmd.Find([]string{verb})
		require.NoError(t, err)
		assert.NotNil(t, cmd.Flags().Lookup("no-cache"), "%s should have --no-cache", verb)
		assert.NotNil(t, cmd.Flags().Lookup("pull"), "%s should have --pull", verb)
	}
}

// TestExecute_UnknownVerb verifies that an unknown verb produces an
// error from cobra (translated to exit code 1 by Execute) and that usage
// is available to print.
func TestExecute_UnknownVerb(t *testing.T) {
	rootCmd := NewRootCommand()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"deploy"})

	err := rootCmd.Execute()

	require.Error(t, err, "an unknown verb must not silently succeed")
	assert.Contains(t, err.Error(), "deploy")
}

type ctxKey struct{}

// TestExecuteContext_Propagation verifies the context handed to the root
// command reaches subcommand RunE functions via cmd.Context(). Signal
// cancellation in main relies on this path: a canceled context must be
// observable inside a running verb.
func TestExecuteContext_Propagation(t *testing.T) {
	rootCmd := NewRootCommand()

	var received context.Context
	rootCmd.AddCommand(&cobra.Command{
		Use: "ctx-echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			received = cmd.Context()
			return nil
		},
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "sentinel")
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"ctx-echo"})

	require.NoError(t, rootCmd.ExecuteContext(ctx))
	require.NotNil(t, received, "the subcommand must see a context")
	assert.Equal(t, "sentinel", received.Value(ctxKey{}),
		"cmd.Context() must be derived from the context passed to ExecuteContext")
}

// TestEnvironmentArg verifies the shared optional-environment argument
// handling used by restart, logs, shell, and health.
func TestEnvironmentArg(t *testing.T) {
	t.Run("default is prod", func(t *testing.T) {
		env, err := environmentArg(nil)
		require.NoError(t, err)
		assert.Equal(t, "prod", env.String())
	})

	t.Run("explicit dev", func(t *testing.T) {
		env, err := environmentArg([]string{"dev"})
		require.NoError(t, err)
		assert.Equal(t, "dev", env.String())
	})

	t.Run("invalid environment", func(t *testing.T) {
		_, err := environmentArg([]string{"staging"})
		assert.Error(t, err)
	})
}

// TestLocalURL verifies URL construction from port mappings.
func TestLocalURL(t *testing.T) {
	t.Run("first mapping wins", func(t *testing.T) {
		ports := []model.PortMapping{
			{HostPort: 3000, ContainerPort: 80},
			{HostPort: 3443, ContainerPort: 443},
		}
		assert.Equal(t, "http://localhost:3000/health", localURL(ports, "/health"))
	})

	t.Run("no ports", func(t *testing.T) {
		assert.Empty(t, localURL(nil, "/"))
	})
}

// TestShortID verifies container ID truncation to the familiar
// 12-character form.
func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortID("abc"))
}

// TestEnvVarList verifies the manifest env map flattens to sorted
// KEY=value pairs for the Docker API.
func TestEnvVarList(t *testing.T) {
	vars := envVarList(map[string]string{
		"NODE_ENV":     "production",
		"API_BASE_URL": "http://localhost:8080",
	})

	assert.Equal(t, []string{
		"API_BASE_URL=http://localhost:8080",
		"NODE_ENV=production",
	}, vars, "pairs should be sorted for deterministic container configs")

	assert.Nil(t, envVarList(nil))
}
