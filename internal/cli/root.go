// Package cli implements the cobra-based commands for dockhand.
//
// Each verb (build-prod, run-dev, stop, ...) is defined in its own file
// within this package. This file defines the root command, global flags,
// and the error-to-exit-code translation.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dockhand-dev/dockhand/internal/config"
	"github.com/dockhand-dev/dockhand/internal/logger"
	"github.com/dockhand-dev/dockhand/internal/model"
)

// Global flag variables bound to cobra persistent flags on the root
// command, making them available to every subcommand.
var (
	// jsonOutput switches command output to structured JSON on stdout.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool
)

// cfg and log are initialized once in the root command's
// PersistentPreRunE and shared by all subcommands.
var (
	cfg *config.Config
	log zerolog.Logger
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package for --version output.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command performs no action itself; it provides help text,
// global flags, and configuration loading. Functionality lives in the
// verb subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dockhand",
		Short: "Container lifecycle manager for the web application",
		Long: `dockhand builds, runs, and supervises the application's Docker containers.

It replaces the project's docker wrapper script with a single binary:
multi-stage image builds (production, development, testing), prod/dev
containers with fixed port mappings, log streaming, health checks, and
Docker Compose profiles.

Project settings are read from dockhand.jsonc when present; otherwise the
conventional defaults apply (prod on :3000, dev on :3001).`,

		// Errors are formatted by Execute; cobra's automatic usage and
		// error printing would duplicate that.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(); err != nil {
				return err
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			log = logger.Setup(cfg.Logging.Level, verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Build verbs; one per target stage.
	rootCmd.AddCommand(NewBuildCommand("build-prod", model.TargetProduction))
	rootCmd.AddCommand(NewBuildCommand("build-dev", model.TargetDevelopment))
	rootCmd.AddCommand(NewBuildCommand("build-test", model.TargetTesting))

	// Run verbs; one per environment.
	rootCmd.AddCommand(NewRunCommand("run-prod", model.EnvProduction))
	rootCmd.AddCommand(NewRunCommand("run-dev", model.EnvDevelopment))

	// Lifecycle and inspection verbs.
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewRestartCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewShellCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewStatusCommand())

	// Compose verbs.
	rootCmd.AddCommand(NewComposeUpCommand("compose-up", ""))
	rootCmd.AddCommand(NewComposeUpCommand("compose-dev", "dev"))
	rootCmd.AddCommand(NewComposeTestCommand())
	rootCmd.AddCommand(NewComposeDownCommand())

	return rootCmd
}

// Execute runs the root command under ctx and handles exit codes. The
// context flows into every verb via cmd.Context(), so canceling it
// (signal delivery in main) interrupts blocking Docker operations.
// CLIError values carry their own exit code; anything else exits with
// the general error code 1; which also covers unknown verbs and flag
// parse failures.
func Execute(ctx context.Context, rootCmd *cobra.Command) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		// Usage errors (unknown verbs, bad flags) get the usage text; a
		// CLIError above is an operational failure and does not.
		if !jsonOutput {
			fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		}
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error in the format selected by --json.
// Errors always go to stderr; stdout is reserved for command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			errObj["error"].(map[string]interface{})["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set. Subcommands use
// this to pick their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
