// Package manifest handles the dockhand.jsonc project manifest.
//
// The manifest describes the managed application: image name, Dockerfile,
// per-environment container names, targets and ports, Compose files, and
// the health endpoint path. It supports JSONC (JSON with Comments) via
// github.com/tidwall/jsonc, so comments are stripped before parsing with
// the standard encoding/json library.
//
// A manifest is optional. When no dockhand.jsonc exists, Default() supplies
// the conventional setup for a scaffolded front-end application:
//
//	prod: target production, host 3000 → container 80
//	dev:  target development, host 3001 → container 3000
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// FileName is the manifest file name looked up at the project root.
const FileName = "dockhand.jsonc"

// rawManifest mirrors the JSON structure of dockhand.jsonc. Fields not
// listed here are silently ignored during parsing. Port entries use
// interface{} because a port can be a number (container port published on
// the same host port) or a "hostPort:containerPort" string.
type rawManifest struct {
	// App is the application name. Used for container name prefixes,
	// labels, and the default Compose project name.
	App string `json:"app,omitempty"`

	// Image is the image repository name. Defaults to the app name.
	Image string `json:"image,omitempty"`

	// Dockerfile is the path to the multi-stage Dockerfile, relative to
	// the build context.
	Dockerfile string `json:"dockerfile,omitempty"`

	// Context is the Docker build context directory.
	Context string `json:"context,omitempty"`

	// HealthPath is the HTTP path of the health endpoint.
	HealthPath string `json:"healthPath,omitempty"`

	// Environments maps environment names ("prod", "dev") to their
	// container settings. Missing environments keep their defaults.
	Environments map[string]rawEnvironment `json:"environments,omitempty"`

	// Compose configures the compose-* verbs.
	Compose *rawCompose `json:"compose,omitempty"`
}

// rawEnvironment is the JSON shape of one environment entry.
type rawEnvironment struct {
	ContainerName string `json:"containerName,omitempty"`

	// Target is the Dockerfile stage to build and run.
	Target string `json:"target,omitempty"`

	// Ports lists published ports: numbers or "host:container" strings.
	Ports []interface{} `json:"ports,omitempty"`

	// Env sets environment variables inside the container.
	Env map[string]string `json:"env,omitempty"`

	// Service is the Compose service backing this environment.
	Service string `json:"service,omitempty"`
}

// rawCompose is the JSON shape of the compose section.
// Files can be a single string or an array of strings, matching the
// convention established by devcontainer.json's dockerComposeFile field.
type rawCompose struct {
	Files interface{} `json:"files,omitempty"`

	// Services lists all service names defined in the Compose file(s).
	// Needed to label every service in the generated override.
	Services []string `json:"services,omitempty"`

	// TestService is the service run by compose-test.
	TestService string `json:"testService,omitempty"`
}

// EnvConfig is the resolved configuration for one runnable environment.
type EnvConfig struct {
	// ContainerName is the fixed container name for this environment.
	ContainerName string

	// Target is the Dockerfile stage this environment runs.
	Target model.BuildTarget

	// Ports are the published port mappings.
	Ports []model.PortMapping

	// Env holds container environment variables as KEY=value pairs
	// is assembled lazily; the map preserves the manifest form.
	Env map[string]string

	// Service is the Compose service that corresponds to this
	// environment. Used to apply the environment's port mappings in the
	// generated Compose override.
	Service string
}

// ImageTag returns the image reference for this environment's target,
// e.g. "frontend-app:latest" or "frontend-app:dev".
func (e *EnvConfig) ImageTag(image string) string {
	return image + ":" + e.Target.Tag()
}

// Manifest is the fully resolved project manifest: raw input merged with
// defaults and validated.
type Manifest struct {
	App        string
	Image      string
	Dockerfile string
	Context    string
	HealthPath string

	// Environments is keyed by the typed environment identity.
	Environments map[model.Environment]EnvConfig

	// ComposeFiles lists the Compose file paths, in merge order.
	ComposeFiles []string

	// ComposeServices lists all service names for override generation.
	ComposeServices []string

	// TestService is the Compose service run by compose-test.
	TestService string
}

// Default returns the manifest used when no dockhand.jsonc exists.
// The values reproduce the conventional scaffold: one image with
// production/development/testing stages, prod published on 3000→80 and
// dev on 3001→3000, a docker-compose.yml with app/dev/test services.
func Default() *Manifest {
	return &Manifest{
		App:        "frontend-app",
		Image:      "frontend-app",
		Dockerfile: "Dockerfile",
		Context:    ".",
		HealthPath: "/health",
		Environments: map[model.Environment]EnvConfig{
			model.EnvProduction: {
				ContainerName: "frontend-app-prod",
				Target:        model.TargetProduction,
				Ports: []model.PortMapping{
					{HostPort: 3000, ContainerPort: 80, Protocol: "tcp"},
				},
				Service: "app",
			},
			model.EnvDevelopment: {
				ContainerName: "frontend-app-dev",
				Target:        model.TargetDevelopment,
				Ports: []model.PortMapping{
					{HostPort: 3001, ContainerPort: 3000, Protocol: "tcp"},
				},
				Service: "dev",
			},
		},
		ComposeFiles:    []string{"docker-compose.yml"},
		ComposeServices: []string{"app", "dev", "test"},
		TestService:     "test",
	}
}

// Find locates the manifest file for a project directory.
// Returns the manifest path, or an empty string when none exists
// (an absent manifest is not an error; defaults apply).
func Find(projectDir string) string {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Load reads a dockhand.jsonc file, strips JSONC comments, parses it, and
// merges it over the defaults. Passing an empty path returns the defaults
// unchanged.
//
// Returns a CLIError with ExitManifestError on read, parse, or validation
// failure.
func Load(path string) (*Manifest, error) {
	m := Default()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitManifestError,
			fmt.Sprintf("failed to read manifest %s", path),
			err,
		)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// handing the bytes to encoding/json. Manifests are hand-edited, so
	// comments are common.
	cleanJSON := jsonc.ToJSON(data)

	var raw rawManifest
	if err := json.Unmarshal(cleanJSON, &raw); err != nil {
		return nil, model.WrapCLIError(
			model.ExitManifestError,
			fmt.Sprintf("failed to parse manifest %s", path),
			err,
		)
	}

	if err := m.merge(&raw); err != nil {
		return nil, model.WrapCLIError(
			model.ExitManifestError,
			fmt.Sprintf("invalid manifest %s", path),
			err,
		)
	}

	if err := m.Validate(); err != nil {
		return nil, model.WrapCLIError(
			model.ExitManifestError,
			fmt.Sprintf("invalid manifest %s", path),
			err,
		)
	}

	return m, nil
}

// merge overlays raw manifest values onto the defaults. Only fields the
// user actually set are applied; everything else keeps its default.
func (m *Manifest) merge(raw *rawManifest) error {
	if raw.App != "" {
		m.App = raw.App
		// The image and container names derive from the app name unless
		// overridden explicitly below.
		m.Image = raw.App
		for env, cfg := range m.Environments {
			cfg.ContainerName = raw.App + "-" + env.String()
			m.Environments[env] = cfg
		}
	}
	if raw.Image != "" {
		m.Image = raw.Image
	}
	if raw.Dockerfile != "" {
		m.Dockerfile = raw.Dockerfile
	}
	if raw.Context != "" {
		m.Context = raw.Context
	}
	if raw.HealthPath != "" {
		m.HealthPath = raw.HealthPath
	}

	for name, rawEnv := range raw.Environments {
		env, err := model.ParseEnvironment(name)
		if err != nil {
			return err
		}

		cfg := m.Environments[env]
		if rawEnv.ContainerName != "" {
			cfg.ContainerName = rawEnv.ContainerName
		}
		if rawEnv.Target != "" {
			target, err := model.ParseBuildTarget(rawEnv.Target)
			if err != nil {
				return fmt.Errorf("environment %q: %w", name, err)
			}
			cfg.Target = target
		}
		if len(rawEnv.Ports) > 0 {
			ports, err := parsePorts(rawEnv.Ports)
			if err != nil {
				return fmt.Errorf("environment %q: %w", name, err)
			}
			cfg.Ports = ports
		}
		if len(rawEnv.Env) > 0 {
			cfg.Env = rawEnv.Env
		}
		if rawEnv.Service != "" {
			cfg.Service = rawEnv.Service
		}
		m.Environments[env] = cfg
	}

	if raw.Compose != nil {
		if files := normalizeFiles(raw.Compose.Files); files != nil {
			m.ComposeFiles = files
		}
		if len(raw.Compose.Services) > 0 {
			m.ComposeServices = raw.Compose.Services
		}
		if raw.Compose.TestService != "" {
			m.TestService = raw.Compose.TestService
		}
	}

	return nil
}

// parsePorts normalizes the manifest's port entries into PortMappings.
// Each entry is either:
//   - a number: the container port, published on the same host port
//   - a string "hostPort:containerPort"
func parsePorts(entries []interface{}) ([]model.PortMapping, error) {
	ports := make([]model.PortMapping, 0, len(entries))

	for _, entry := range entries {
		switch v := entry.(type) {
		case float64:
			// JSON numbers decode to float64 through interface{}.
			ports = append(ports, model.PortMapping{
				HostPort:      int(v),
				ContainerPort: int(v),
				Protocol:      "tcp",
			})
		case string:
			pm, err := parsePortString(v)
			if err != nil {
				return nil, err
			}
			ports = append(ports, *pm)
		default:
			return nil, fmt.Errorf("invalid port entry %v: must be a number or \"host:container\" string", entry)
		}
	}

	return ports, nil
}

// parsePortString parses a "hostPort:containerPort" string, with an
// optional "/protocol" suffix on the container port.
func parsePortString(s string) (*model.PortMapping, error) {
	protocol := "tcp"
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		protocol = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid port entry %q: expected \"host:container\"", s)
	}

	hostPort, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid host port in %q: %w", s, err)
	}
	containerPort, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid container port in %q: %w", s, err)
	}

	return &model.PortMapping{
		HostPort:      hostPort,
		ContainerPort: containerPort,
		Protocol:      protocol,
	}, nil
}

// normalizeFiles accepts the compose files field as a string or an array
// of strings and returns a consistent []string. Returns nil when unset.
func normalizeFiles(files interface{}) []string {
	switch v := files.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
