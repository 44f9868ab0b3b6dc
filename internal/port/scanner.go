// Package port implements host port availability checks.
//
// The run-prod/run-dev verbs publish fixed host ports (3000 and 3001 by
// default). Docker's own error when a port is taken surfaces late; after
// image resolution and container creation; and names the daemon's view of
// the conflict rather than the user's. Checking up front with the OS
// network stack turns the failure into an immediate, precise message.
package port

import (
	"fmt"
	"net"

	"github.com/dockhand-dev/dockhand/internal/model"
)

// Scanner checks whether specific ports are free on the host machine.
//
// It asks the operating system directly via net.Listen/net.ListenPacket,
// which is more reliable than parsing /proc/net/* and needs no elevated
// permissions. The struct is stateless; it exists (rather than bare
// functions) so future options like a bind address can be added without
// breaking callers, and so it can be injected for testing.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable reports whether a single port is free for the protocol.
//
// The check binds to all interfaces (":port") because Docker publishes on
// 0.0.0.0 by default; checking 127.0.0.1 alone would miss conflicts on
// other interfaces. The probe listener is closed immediately.
func (s *Scanner) IsAvailable(portNum int, protocol string) bool {
	addr := fmt.Sprintf(":%d", portNum)

	switch protocol {
	case "tcp", "":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = listener.Close() }()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = conn.Close() }()
		return true

	default:
		// Unknown protocol; fail safe by reporting unavailable.
		return false
	}
}

// EnsureAvailable verifies every host port in the mappings is free.
// Returns a CLIError with ExitPortConflict naming the first taken port,
// so the run verbs can refuse to start before touching the daemon.
func (s *Scanner) EnsureAvailable(mappings []model.PortMapping) error {
	for _, pm := range mappings {
		if !s.IsAvailable(pm.HostPort, pm.Protocol) {
			return model.NewCLIError(
				model.ExitPortConflict,
				fmt.Sprintf("host port %d/%s is already in use", pm.HostPort, pm.Protocol),
			)
		}
	}
	return nil
}
