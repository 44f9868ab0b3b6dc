// Package docker provides Docker Engine API wrappers and container
// lifecycle management for the dockhand CLI.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Container label management for persisting environment metadata
//     (Docker labels are the sole state storage mechanism)
//   - Multi-stage image builds with target selection
//   - Container lifecycle operations: create, start, stop, remove, list
//   - Log streaming with stdout/stderr demultiplexing
//   - Docker Compose operations via the docker CLI: up, run, down
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
