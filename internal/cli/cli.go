// Package cli implements the crategen command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crategen/pkg/buildinfo"
	"github.com/matzehuels/crategen/pkg/commit"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/observability"
	"github.com/matzehuels/crategen/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdout receives command output (generated Cargo.toml, DOT).
	Stdout io.Writer
	// Stderr receives status lines and diagnostics.
	Stderr io.Writer

	verbose bool
}

// New creates a new CLI instance writing logs to w.
func New(stdout, stderr io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(stderr, level),
		Stdout: stdout,
		Stderr: stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "crategen",
		Short: "crategen generates GN build files for vendored Rust crates",
		Long: `crategen resolves the Rust dependencies declared in third_party/rust/third_party.toml
with cargo, checks the result against the vendored crate tree and writes one
BUILD.gn per vendored crate. With --for-std it does the same for the Rust
standard library.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			observability.SetToolHooks(&toolLogger{logger: c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.genCommand())
	root.AddCommand(c.graphCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for validated options.
func (c *CLI) newRunner(opts pipeline.Options) *pipeline.Runner {
	r := pipeline.NewRunner(
		&deps.CargoResolver{Cargo: opts.Cargo},
		commit.GNFormatter{GN: opts.GN},
		opts.Logger,
	)
	r.Jobs = opts.Jobs
	return r
}

// addToolFlags registers the flags shared by every command that runs cargo.
func addToolFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Root, "root", "", "source root (default: $"+pipeline.RootEnv+" or the enclosing checkout)")
	cmd.Flags().StringVar(&opts.Cargo, "cargo", "", "cargo binary (default: $CARGO or cargo)")
	cmd.Flags().BoolVar(&opts.ForStd, "for-std", false, "operate on the Rust standard library instead of third-party crates")
}
