package manifest

import (
	"fmt"
	"strings"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// Validate checks the resolved manifest for internal consistency:
// usable names, valid targets and port ranges, and host port uniqueness
// across environments. A manifest that passes here can still fail at
// run time (ports taken by other processes, missing Dockerfile); those
// conditions are checked by the commands that need them.
func (m *Manifest) Validate() error {
	if err := model.ValidateName(m.App); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := model.ValidateName(m.Image); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if m.Dockerfile == "" {
		return fmt.Errorf("dockerfile must not be empty")
	}
	if m.Context == "" {
		return fmt.Errorf("context must not be empty")
	}
	if !strings.HasPrefix(m.HealthPath, "/") {
		return fmt.Errorf("healthPath %q must start with '/'", m.HealthPath)
	}

	// Host ports must be unique across ALL environments, not just within
	// one: prod and dev are expected to run side by side.
	var allPorts []model.PortMapping

	for env, cfg := range m.Environments {
		if err := model.ValidateName(cfg.ContainerName); err != nil {
			return fmt.Errorf("environment %q container name: %w", env, err)
		}
		if !cfg.Target.IsValid() {
			return fmt.Errorf("environment %q: invalid target %q", env, cfg.Target)
		}
		if cfg.Target == model.TargetBuilder {
			return fmt.Errorf("environment %q: the builder stage is not runnable", env)
		}
		if len(cfg.Ports) == 0 {
			return fmt.Errorf("environment %q: at least one port mapping is required", env)
		}
		allPorts = append(allPorts, cfg.Ports...)
	}

	if err := model.ValidatePortMappings(allPorts); err != nil {
		return err
	}

	if len(m.ComposeFiles) == 0 {
		return fmt.Errorf("compose: at least one compose file is required")
	}
	if m.TestService == "" {
		return fmt.Errorf("compose: testService must not be empty")
	}

	return nil
}
