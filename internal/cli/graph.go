package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crategen/pkg/dag"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/pipeline"
	"github.com/matzehuels/crategen/pkg/reconcile"
)

// graphCommand creates the graph command, which prints the resolved
// dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		opts     pipeline.Options
		svgPath  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the resolved dependency graph as DOT or SVG",
		Long: `Resolve the dependency graph the same way gen does and print it in Graphviz
DOT format. Packages that fail reconciliation are outlined in red. Nothing is
written to the build tree apart from the synthetic Cargo.toml.`,
		Example: `  crategen graph | dot -Tpng -o deps.png
  crategen graph --svg deps.svg
  crategen graph --for-std --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = c.verbose
			opts.Logger = loggerFromContext(cmd.Context())
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), opts, svgPath, detailed)
		},
	}

	addToolFlags(cmd, &opts)
	cmd.Flags().StringVar(&svgPath, "svg", "", "render SVG to this file instead of printing DOT")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include dependency kinds and locality in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, svgPath string, detailed bool) error {
	paths := pipeline.NewPaths(opts.Root)
	runner := c.newRunner(opts)

	var (
		pkgs   []deps.Package
		report *reconcile.Report
		err    error
	)
	if opts.ForStd {
		pkgs, _, err = runner.StdPackages(ctx, paths)
	} else {
		pkgs, report, err = runner.ResolveThirdParty(ctx, paths)
	}
	if err != nil {
		return err
	}

	dot := dag.ToDOT(deps.Graph(pkgs), dag.DOTOptions{
		Detailed:  detailed,
		Highlight: highlighted(report),
	})
	if report != nil && !report.OK() {
		printWarning(c.Stderr, "%d reconciliation findings, run gen for details", report.Len())
	}

	if svgPath == "" {
		_, err := io.WriteString(c.Stdout, dot)
		return err
	}
	svg, err := dag.RenderSVG(ctx, dot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "render svg")
	}
	if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", svgPath)
	}
	printSuccess(c.Stderr, "Rendered %d packages", len(pkgs))
	printFile(c.Stderr, svgPath)
	return nil
}

// highlighted returns the graph IDs of packages with reconciliation findings.
func highlighted(r *reconcile.Report) []string {
	if r == nil {
		return nil
	}
	var ids []string
	for _, col := range r.Collisions {
		ids = append(ids, col.First.ID(), col.Second.ID())
	}
	for _, p := range r.Missing {
		ids = append(ids, p.ID())
	}
	for _, p := range r.NonLocal {
		ids = append(ids, p.ID())
	}
	return ids
}
