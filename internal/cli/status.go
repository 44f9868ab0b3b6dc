// status.go implements the status verb.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/docker"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// NewStatusCommand creates the status verb.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of all environments",
		Long: `Show each configured environment and its container state.

The view is reconstructed entirely from Docker labels and live container
state; dockhand keeps no state files. Environments with no container
show as "missing".`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// statusRow is one environment's line in the status output.
type statusRow struct {
	Environment string `json:"environment"`
	Status      string `json:"status"`
	Container   string `json:"container,omitempty"`
	Image       string `json:"image,omitempty"`
	Ports       string `json:"ports,omitempty"`
}

func runStatus(ctx context.Context) error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	cli, err := newDockerClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	groups := docker.GroupByEnvironment(containers)

	// Fixed environment order keeps the output stable between runs.
	rows := make([]statusRow, 0, 2)
	for _, env := range []model.Environment{model.EnvProduction, model.EnvDevelopment} {
		envCfg, ok := m.Environments[env]
		if !ok {
			continue
		}

		group := groups[env]
		if len(group) == 0 {
			rows = append(rows, statusRow{
				Environment: env.String(),
				Status:      model.StatusMissing.String(),
				Container:   envCfg.ContainerName,
			})
			continue
		}

		appEnv, err := docker.BuildAppEnvironment(env, group)
		if err != nil {
			// A container with mangled labels still deserves a row; show
			// the live state without the label-derived detail.
			log.Warn().Str("environment", env.String()).Err(err).Msg("failed to parse container labels")
			rows = append(rows, statusRow{
				Environment: env.String(),
				Status:      docker.DetermineStatus(group).String(),
				Container:   group[0].ContainerName,
				Image:       group[0].Image,
			})
			continue
		}

		rows = append(rows, statusRow{
			Environment: env.String(),
			Status:      appEnv.Status.String(),
			Container:   appEnv.Container.ContainerName,
			Image:       appEnv.Container.Image,
			Ports:       formatPorts(appEnv.Ports),
		})
	}

	if IsJSONOutput() {
		printJSON(rows)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENVIRONMENT\tSTATUS\tCONTAINER\tIMAGE\tPORTS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Environment, row.Status, dash(row.Container), dash(row.Image), dash(row.Ports))
	}
	return w.Flush()
}

// formatPorts renders port mappings as "3000->80, 3001->3000".
func formatPorts(ports []model.PortMapping) string {
	parts := make([]string, 0, len(ports))
	for _, pm := range ports {
		parts = append(parts, fmt.Sprintf("%d->%d", pm.HostPort, pm.ContainerPort))
	}
	return strings.Join(parts, ", ")
}

// dash substitutes "-" for empty table cells.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
