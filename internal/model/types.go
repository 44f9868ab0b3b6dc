// Package model defines the domain types for the dockhand CLI.
//
// All entities here are transient representations of the managed
// application's container state. The sole persistence mechanism is Docker
// container labels (see internal/docker/label.go); there is no state file
// on disk, so every type in this package can be reconstructed from Docker
// API queries at runtime.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// BuildTarget names a stage in the application's multi-stage Dockerfile.
// Each stage produces an independent filesystem image:
//
//	builder → production (nginx static serving)
//	        → development (dev server with hot reload)
//	        → testing (test runner)
//
// The builder stage is an intermediate dependency of the others and is not
// directly buildable through a CLI verb.
type BuildTarget string

const (
	// TargetBuilder is the shared compile stage. It exists only as a
	// dependency of the other targets.
	TargetBuilder BuildTarget = "builder"

	// TargetProduction is the nginx static-serving stage built by build-prod.
	TargetProduction BuildTarget = "production"

	// TargetDevelopment is the dev-server stage built by build-dev.
	TargetDevelopment BuildTarget = "development"

	// TargetTesting is the test-runner stage built by build-test.
	TargetTesting BuildTarget = "testing"
)

// String returns the string representation of BuildTarget.
// This satisfies fmt.Stringer for CLI output and logging.
func (t BuildTarget) String() string {
	return string(t)
}

// IsValid checks whether the BuildTarget is one of the known stage names.
func (t BuildTarget) IsValid() bool {
	switch t {
	case TargetBuilder, TargetProduction, TargetDevelopment, TargetTesting:
		return true
	default:
		return false
	}
}

// Tag returns the image tag suffix conventionally used for this target:
// "latest" for production, "dev" for development, "test" for testing.
func (t BuildTarget) Tag() string {
	switch t {
	case TargetDevelopment:
		return "dev"
	case TargetTesting:
		return "test"
	default:
		return "latest"
	}
}

// ParseBuildTarget converts a string to a BuildTarget. Short verb-style
// aliases are accepted ("prod", "dev", "test") in addition to the full
// Dockerfile stage names.
func ParseBuildTarget(s string) (BuildTarget, error) {
	switch strings.ToLower(s) {
	case "prod", "production":
		return TargetProduction, nil
	case "dev", "development":
		return TargetDevelopment, nil
	case "test", "testing":
		return TargetTesting, nil
	case "builder":
		return TargetBuilder, nil
	default:
		return "", fmt.Errorf("invalid build target: %q (valid: production, development, testing)", s)
	}
}

// Environment identifies one of the runnable container environments.
// Each environment owns a fixed container name, a build target, and a
// host→container port mapping:
//
//	prod: host 3000 → container 80   (nginx)
//	dev:  host 3001 → container 3000 (dev server)
type Environment string

const (
	// EnvProduction is the production environment (nginx static serving).
	EnvProduction Environment = "prod"

	// EnvDevelopment is the development environment (hot-reload dev server).
	EnvDevelopment Environment = "dev"
)

// String returns the string representation of Environment.
func (e Environment) String() string {
	return string(e)
}

// IsValid checks whether the Environment is one of the known environments.
func (e Environment) IsValid() bool {
	switch e {
	case EnvProduction, EnvDevelopment:
		return true
	default:
		return false
	}
}

// Target returns the build target this environment runs.
func (e Environment) Target() BuildTarget {
	if e == EnvDevelopment {
		return TargetDevelopment
	}
	return TargetProduction
}

// ParseEnvironment converts a string to an Environment.
// Accepts "prod"/"production" and "dev"/"development".
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "prod", "production":
		return EnvProduction, nil
	case "dev", "development":
		return EnvDevelopment, nil
	default:
		return "", fmt.Errorf("invalid environment: %q (valid: prod, dev)", s)
	}
}

// AppStatus represents the aggregate lifecycle state of an environment.
// The transitions are:
//
//	[missing] → running ⇄ stopped → [missing] (after clean)
type AppStatus string

const (
	// StatusRunning indicates the environment's container is running.
	StatusRunning AppStatus = "running"

	// StatusStopped indicates the container exists but is not running.
	StatusStopped AppStatus = "stopped"

	// StatusMissing indicates no container exists for the environment.
	StatusMissing AppStatus = "missing"
)

// String returns the string representation of AppStatus.
func (s AppStatus) String() string {
	return string(s)
}

// IsValid checks whether the AppStatus is one of the known states.
func (s AppStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusMissing:
		return true
	default:
		return false
	}
}

// nameRegex validates image and container names: lowercase alphanumeric
// plus separators, starting with an alphanumeric. This is deliberately a
// subset of what Docker accepts, so names stay portable.
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateName checks if the given name is usable as an image or container
// name. Docker itself is more permissive; rejecting anything outside
// lowercase alphanumerics, dots, underscores, and hyphens up front means
// the error surfaces before the daemon is involved.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: must be lowercase alphanumeric with '.', '_' or '-' separators", name)
	}
	return nil
}

// PortMapping represents a single published port: a container port exposed
// on a fixed host port. Unlike dynamic allocation schemes, dockhand's
// mappings are declared in the manifest and never shifted.
type PortMapping struct {
	// HostPort is the port number on the host machine (1-65535).
	HostPort int `json:"hostPort"`

	// ContainerPort is the port number inside the container (1-65535).
	ContainerPort int `json:"containerPort"`

	// Protocol is the network protocol. Defaults to "tcp".
	Protocol string `json:"protocol,omitempty"`
}

// Validate checks port ranges and the protocol value.
// An empty protocol is normalized to "tcp".
func (p *PortMapping) Validate() error {
	if p.ContainerPort < 1 || p.ContainerPort > 65535 {
		return fmt.Errorf("port mapping: container port %d out of range (1-65535)", p.ContainerPort)
	}
	if p.HostPort < 1 || p.HostPort > 65535 {
		return fmt.Errorf("port mapping: host port %d out of range (1-65535)", p.HostPort)
	}
	if p.Protocol == "" {
		p.Protocol = "tcp"
	}
	if p.Protocol != "tcp" && p.Protocol != "udp" {
		return fmt.Errorf("port mapping: invalid protocol %q (valid: tcp, udp)", p.Protocol)
	}
	return nil
}

// String returns a human-readable representation of the mapping.
// Format: "hostPort→containerPort/protocol".
func (p *PortMapping) String() string {
	proto := p.Protocol
	if proto == "" {
		proto = "tcp"
	}
	return fmt.Sprintf("%d→%d/%s", p.HostPort, p.ContainerPort, proto)
}

// ValidatePortMappings checks each mapping individually and rejects
// duplicate host port/protocol pairs across the set. Two environments
// publishing the same host port can never run together, so this is caught
// at manifest load rather than at docker run time.
func ValidatePortMappings(mappings []PortMapping) error {
	// Key: "hostPort/protocol". Same port on different protocols is fine.
	seen := make(map[string]bool)

	for i := range mappings {
		if err := mappings[i].Validate(); err != nil {
			return err
		}
		key := fmt.Sprintf("%d/%s", mappings[i].HostPort, mappings[i].Protocol)
		if seen[key] {
			return fmt.Errorf("port mapping: host port %s declared more than once", key)
		}
		seen[key] = true
	}
	return nil
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched from the Docker API on demand, never persisted.
type ContainerInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable container name (without the
	// leading "/" the Docker API prepends).
	ContainerName string `json:"containerName"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`

	// State is the raw Docker container state ("running", "exited", ...).
	State string `json:"state"`

	// Labels is the full label set on the container, including the
	// dockhand.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// AppEnvironment is the aggregate view of one managed environment: its
// identity, its container (if any), and its published ports. It is
// reconstructed from container labels by internal/docker.
type AppEnvironment struct {
	// App is the application name the environment belongs to.
	App string `json:"app"`

	// Environment is the environment identity (prod/dev).
	Environment Environment `json:"environment"`

	// Target is the build target the environment's image was built from.
	Target BuildTarget `json:"target"`

	// Status is the aggregate lifecycle state.
	Status AppStatus `json:"status"`

	// Container is the environment's container, when one exists.
	Container *ContainerInfo `json:"container,omitempty"`

	// Ports lists the environment's published ports.
	Ports []PortMapping `json:"ports,omitempty"`
}
