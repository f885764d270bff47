package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crategen/pkg/commit"
	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/gn"
	"github.com/matzehuels/crategen/pkg/manifest"
	"github.com/matzehuels/crategen/pkg/observability"
	"github.com/matzehuels/crategen/pkg/reconcile"
)

// Runner executes generation runs. It holds no per-run state, so one
// Runner may serve several runs, though never two against the same tree at
// once.
type Runner struct {
	Resolver  deps.Resolver
	Formatter commit.Formatter
	Logger    *log.Logger
	Jobs      int
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(resolver deps.Resolver, formatter commit.Formatter, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Resolver:  resolver,
		Formatter: formatter,
		Logger:    logger,
	}
}

// thirdPartyState is everything known about the vendored tree before
// reconciliation.
type thirdPartyState struct {
	manifest  *manifest.ThirdPartyManifest
	metadata  manifest.Metadata
	inventory crates.Inventory
}

func (r *Runner) loadThirdParty(paths Paths) (*thirdPartyState, error) {
	data, err := os.ReadFile(paths.Manifest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", paths.Manifest)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	decls, err := m.Declarations()
	if err != nil {
		return nil, err
	}
	m.MergeDevDependencies()

	inv, err := crates.CollectThirdPartyCrates(paths.ThirdParty)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded manifest", "declarations", len(decls), "vendored", len(inv))
	return &thirdPartyState{manifest: m, metadata: manifest.Index(decls), inventory: inv}, nil
}

// CargoManifest writes the synthetic Cargo.toml for the vendored tree to w
// without touching disk.
func (r *Runner) CargoManifest(paths Paths, w io.Writer) error {
	st, err := r.loadThirdParty(paths)
	if err != nil {
		return err
	}
	cm := manifest.GenerateCargoManifest(st.manifest, manifest.PatchesFor(st.inventory))
	return cm.Encode(w)
}

// ResolveThirdParty writes the synthetic project, resolves it and checks
// the result against the inventory. The report is returned even when it
// has findings.
func (r *Runner) ResolveThirdParty(ctx context.Context, paths Paths) ([]deps.Package, *reconcile.Report, error) {
	pkgs, _, report, _, err := r.resolveThirdParty(ctx, paths)
	return pkgs, report, err
}

func (r *Runner) resolveThirdParty(ctx context.Context, paths Paths) ([]deps.Package, *thirdPartyState, *reconcile.Report, Stats, error) {
	var stats Stats
	st, err := r.loadThirdParty(paths)
	if err != nil {
		return nil, nil, nil, stats, err
	}

	cm := manifest.GenerateCargoManifest(st.manifest, manifest.PatchesFor(st.inventory))
	if err := manifest.WriteCargoProject(paths.ThirdParty, cm); err != nil {
		return nil, nil, nil, stats, err
	}

	pkgs, d, err := r.resolve(ctx, paths.ThirdParty, deps.ResolveOptions{}, deps.Options{LocalRoot: paths.ThirdParty})
	stats.ResolveTime = d
	if err != nil {
		return nil, nil, nil, stats, err
	}

	start := time.Now()
	report := reconcile.Check(st.inventory, pkgs)
	stats.ReconcileTime = time.Since(start)
	observability.Pipeline().OnReconcileComplete(ctx, len(st.inventory), report.Len(), stats.ReconcileTime)
	r.Logger.Info("reconciled", "crates", len(st.inventory), "findings", report.Len(), "duration", stats.ReconcileTime)
	return pkgs, st, report, stats, nil
}

func (r *Runner) resolve(ctx context.Context, dir string, ropts deps.ResolveOptions, nopts deps.Options) ([]deps.Package, time.Duration, error) {
	observability.Pipeline().OnResolveStart(ctx, dir)
	start := time.Now()
	md, err := r.Resolver.Resolve(ctx, dir, ropts)
	var pkgs []deps.Package
	if err == nil {
		pkgs, err = deps.Normalize(md, nopts)
	}
	d := time.Since(start)
	observability.Pipeline().OnResolveComplete(ctx, dir, len(pkgs), d, err)
	if err != nil {
		return nil, d, err
	}
	r.Logger.Info("resolved dependencies", "packages", len(pkgs), "duration", d)
	return pkgs, d, nil
}

// GenerateThirdParty regenerates the BUILD.gn of every vendored crate.
// Nothing is written unless reconciliation finds no problem.
func (r *Runner) GenerateThirdParty(ctx context.Context, paths Paths) (*Result, error) {
	pkgs, st, report, stats, err := r.resolveThirdParty(ctx, paths)
	if err != nil {
		return nil, err
	}
	result := &Result{Packages: pkgs, Report: report, Stats: stats}
	if err := report.Err(); err != nil {
		return result, err
	}

	start := time.Now()
	buildFiles, err := gn.FromThirdPartyDeps(pkgs, st.inventory, st.metadata, paths.Layout())
	result.Stats.SynthesizeTime = time.Since(start)
	observability.Pipeline().OnSynthesizeComplete(ctx, len(buildFiles), result.Stats.SynthesizeTime, err)
	if err != nil {
		return result, err
	}

	stale := make([]string, 0, len(st.inventory))
	files := make([]commit.File, 0, len(st.inventory))
	for _, e := range st.inventory {
		path := gn.BuildFilePath(e.Path)
		stale = append(stale, path)
		content, err := buildFiles[e.Crate].Render()
		if err != nil {
			return result, err
		}
		files = append(files, commit.File{Path: path, Content: content})
	}

	if err := r.commit(ctx, stale, files, result); err != nil {
		return result, err
	}
	result.Stats.Crates = len(st.inventory)
	return result, nil
}

// GenerateStd regenerates the standard library BUILD.gn.
func (r *Runner) GenerateStd(ctx context.Context, paths Paths) (*Result, error) {
	cfg, err := gn.LoadBuildConfig(paths.StdConfig)
	if err != nil {
		return nil, err
	}

	lock := filepath.Join(paths.StdFakeRoot, "Cargo.lock")
	if err := os.Remove(lock); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "delete %s", lock)
	}

	pkgs, d, err := r.StdPackages(ctx, paths)
	if err != nil {
		return nil, err
	}
	result := &Result{Packages: pkgs, Stats: Stats{ResolveTime: d}}

	catalog, err := crates.CollectStdVendoredCrates(paths.RustSrcVendor)
	if err != nil {
		return result, err
	}

	start := time.Now()
	bf, err := gn.FromStdDeps(pkgs, catalog, cfg, paths.Layout())
	result.Stats.SynthesizeTime = time.Since(start)
	observability.Pipeline().OnSynthesizeComplete(ctx, 1, result.Stats.SynthesizeTime, err)
	if err != nil {
		return result, err
	}
	content, err := bf.Render()
	if err != nil {
		return result, err
	}

	path := paths.StdBuildFile()
	if err := r.commit(ctx, []string{path}, []commit.File{{Path: path, Content: content}}, result); err != nil {
		return result, err
	}
	result.Stats.Crates = len(bf.Rules)
	return result, nil
}

// StdPackages resolves the std tree offline from its fake root, keeping
// only the root and packages reached through normal edges.
func (r *Runner) StdPackages(ctx context.Context, paths Paths) ([]deps.Package, time.Duration, error) {
	return r.resolve(ctx, paths.StdFakeRoot,
		deps.ResolveOptions{Offline: true},
		deps.Options{Roots: []string{gn.StdRoot}, Kinds: deps.KindsOf(deps.Normal)})
}

func (r *Runner) commit(ctx context.Context, stale []string, files []commit.File, result *Result) error {
	w := &commit.Writer{
		Formatter: r.Formatter,
		Jobs:      r.Jobs,
		OnFile: func(path string, err error) {
			observability.Pipeline().OnCommitFile(ctx, path, err)
			if err == nil {
				result.Files = append(result.Files, path)
				r.Logger.Debug("wrote build file", "path", path)
			}
		},
	}
	start := time.Now()
	err := w.Commit(ctx, stale, files)
	result.Stats.CommitTime = time.Since(start)
	if err != nil {
		return err
	}
	r.Logger.Info("wrote build files", "files", len(files), "duration", result.Stats.CommitTime)
	return nil
}
