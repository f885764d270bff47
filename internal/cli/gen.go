package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/pipeline"
)

// genCommand creates the gen command, which regenerates BUILD.gn files.
func (c *CLI) genCommand() *cobra.Command {
	var (
		opts            pipeline.Options
		outputCargoToml bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate BUILD.gn files from third_party.toml",
		Long: `Generate BUILD.gn files for every vendored crate.

The synthetic Cargo.toml is written next to third_party.toml, resolved with
cargo metadata and checked against the crates vendored under
third_party/rust/<name>/<epoch>/. Every problem found is reported and nothing
is written unless the check passes.`,
		Example: `  # Regenerate third-party build files
  crategen gen

  # Show the Cargo.toml cargo would see
  crategen gen --output-cargo-toml

  # Regenerate the standard library build file
  crategen gen --for-std`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = c.verbose
			opts.Logger = loggerFromContext(cmd.Context())
			if outputCargoToml && opts.ForStd {
				return errors.New(errors.ErrCodeInvalidInput, "--output-cargo-toml cannot be combined with --for-std")
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if outputCargoToml {
				return c.newRunner(opts).CargoManifest(pipeline.NewPaths(opts.Root), c.Stdout)
			}
			return c.runGen(cmd.Context(), opts)
		},
	}

	addToolFlags(cmd, &opts)
	cmd.Flags().BoolVar(&outputCargoToml, "output-cargo-toml", false, "print the generated Cargo.toml and exit")
	cmd.Flags().StringVar(&opts.GN, "gn", "", "gn binary used to format output (default: gn)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent gn format processes (default: number of CPUs)")

	return cmd
}

func (c *CLI) runGen(ctx context.Context, opts pipeline.Options) error {
	paths := pipeline.NewPaths(opts.Root)
	runner := c.newRunner(opts)
	prog := newProgress(opts.Logger)

	target := "third-party crates"
	if opts.ForStd {
		target = "standard library"
	}

	var spinner *Spinner
	if opts.Verbose {
		printInfo(c.Stderr, "Source root %s", paths.Root)
	} else if isTerminal(c.Stderr) {
		spinner = newSpinner(ctx, c.Stderr, fmt.Sprintf("Generating build files for %s...", target))
		spinner.Start()
	}

	var (
		result *pipeline.Result
		err    error
	)
	if opts.ForStd {
		result, err = runner.GenerateStd(ctx, paths)
	} else {
		result, err = runner.GenerateThirdParty(ctx, paths)
	}
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Generated %d build files", len(result.Files)))
	printSuccess(c.Stderr, "Generated build files for %s", target)
	printStats(c.Stderr,
		fmt.Sprintf("%d packages", len(result.Packages)),
		fmt.Sprintf("%d files", len(result.Files)),
		fmt.Sprintf("resolve %s", result.Stats.ResolveTime.Round(time.Millisecond)),
		fmt.Sprintf("commit %s", result.Stats.CommitTime.Round(time.Millisecond)),
	)
	if opts.Verbose {
		for _, f := range result.Files {
			printFile(c.Stderr, f)
		}
	}
	return nil
}
