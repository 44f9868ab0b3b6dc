package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComposeArgs verifies the leading argument construction: one -f per
// file in order, with an optional --profile.
func TestComposeArgs(t *testing.T) {
	t.Run("single file no profile", func(t *testing.T) {
		args := composeArgs([]string{"docker-compose.yml"}, "")
		assert.Equal(t, []string{"compose", "-f", "docker-compose.yml"}, args)
	})

	t.Run("multiple files preserve merge order", func(t *testing.T) {
		args := composeArgs([]string{"docker-compose.yml", "docker-compose.dockhand.yml"}, "")
		assert.Equal(t, []string{
			"compose",
			"-f", "docker-compose.yml",
			"-f", "docker-compose.dockhand.yml",
		}, args, "the override file must stay last so its values win the merge")
	})

	t.Run("profile appended after files", func(t *testing.T) {
		args := composeArgs([]string{"docker-compose.yml"}, "dev")
		assert.Equal(t, []string{
			"compose",
			"-f", "docker-compose.yml",
			"--profile", "dev",
		}, args)
	})
}
