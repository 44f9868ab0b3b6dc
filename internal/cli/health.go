// health.go implements the health verb.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/health"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// healthFlags holds the flag values for the health verb.
type healthFlags struct {
	timeout  time.Duration
	interval time.Duration
}

// NewHealthCommand creates the health verb.
func NewHealthCommand() *cobra.Command {
	flags := &healthFlags{}

	cmd := &cobra.Command{
		Use:   "health [prod|dev]",
		Short: "Check the application health endpoint",
		Long: `Poll the health endpoint of an environment (default: prod) until it
answers, or the timeout elapses.

Healthy means HTTP 200 with the exact body "healthy\n"; both are part
of the contract.

Examples:
  dockhand health
  dockhand health --timeout 60s
  dockhand health dev --interval 5s`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environmentArg(args)
			if err != nil {
				return err
			}
			// Config supplies the defaults; explicit flags win.
			if !cmd.Flags().Changed("timeout") {
				flags.timeout = time.Duration(cfg.Health.TimeoutSeconds) * time.Second
			}
			if !cmd.Flags().Changed("interval") {
				flags.interval = time.Duration(cfg.Health.IntervalSeconds) * time.Second
			}
			return runHealth(cmd.Context(), env, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Overall deadline for the check")
	cmd.Flags().DurationVar(&flags.interval, "interval", 2*time.Second, "Delay between poll attempts")

	return cmd
}

func runHealth(ctx context.Context, env model.Environment, flags *healthFlags) error {
	m, err := loadProject()
	if err != nil {
		return err
	}
	envCfg, err := envConfig(m, env)
	if err != nil {
		return err
	}

	if len(envCfg.Ports) == 0 {
		return model.NewCLIError(
			model.ExitManifestError,
			fmt.Sprintf("environment %q publishes no ports to check", env),
		)
	}

	url := localURL(envCfg.Ports, m.HealthPath)
	log.Debug().
		Str("url", url).
		Dur("timeout", flags.timeout).
		Dur("interval", flags.interval).
		Msg("waiting for health endpoint")

	checker := health.NewChecker(url, flags.timeout, flags.interval)
	start := time.Now()
	if err := checker.Wait(ctx); err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"healthy": true,
			"url":     url,
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		})
		return nil
	}
	fmt.Printf("Healthy: %s (after %s)\n", url, time.Since(start).Round(time.Millisecond))
	return nil
}
