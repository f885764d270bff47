package deps

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/dag"
	"github.com/matzehuels/crategen/pkg/errors"
)

// Options configures [Normalize].
type Options struct {
	// Roots names the packages to start from. They are kept in the result.
	// When empty the workspace members are the roots and are omitted.
	Roots []string

	// Kinds keeps only packages reached through at least one of these
	// kinds. Roots are always kept. Empty keeps everything.
	Kinds KindSet

	// LocalRoot, when set, additionally requires a local package's manifest
	// to live under this directory.
	LocalRoot string
}

// Edge and node metadata keys on the graph built by Normalize.
const (
	metaName  = "name"
	metaKinds = "kinds"
)

// Normalize converts resolver output into one [Package] per package
// reachable from the roots, sorted by name then version.
//
// A normal edge passes the dependent's kinds on to the dependency, while
// build and dev edges mark the dependency Build or Dev. Dev edges are only
// followed from roots; cargo never builds a dependency's tests.
func Normalize(md *Metadata, opts Options) ([]Package, error) {
	if md == nil || md.Resolve == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cargo metadata has no resolve graph")
	}

	byID := make(map[string]*MetadataPackage, len(md.Packages))
	versions := make(map[string]*semver.Version, len(md.Packages))
	g := dag.New(nil)
	for i := range md.Packages {
		p := &md.Packages[i]
		v, err := semver.NewVersion(p.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "package %s has invalid version %q", p.Name, p.Version)
		}
		if err := g.AddNode(dag.Node{ID: p.ID, Meta: dag.Metadata{metaName: p.Name, "version": p.Version}}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "package %s", p.ID)
		}
		byID[p.ID] = p
		versions[p.ID] = v
	}

	roots, explicit, err := rootIDs(md, opts.Roots)
	if err != nil {
		return nil, err
	}
	isRoot := make(map[string]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	features := make(map[string][]string, len(md.Resolve.Nodes))
	for _, n := range md.Resolve.Nodes {
		features[n.ID] = slices.Sorted(slices.Values(n.Features))
		for _, d := range n.Deps {
			kinds := edgeKinds(d)
			if !isRoot[n.ID] {
				kinds = kinds.Without(Dev)
			}
			if kinds.Empty() {
				continue
			}
			err := g.AddEdge(dag.Edge{From: n.ID, To: d.Pkg, Meta: dag.Metadata{metaName: d.Name, metaKinds: kinds}})
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "edge %s -> %s", n.ID, d.Pkg)
			}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "resolved dependency graph")
	}

	kinds := propagateKinds(g, roots)
	paths := g.ShortestPaths(roots)

	var pkgs []Package
	for _, n := range g.Nodes() {
		k := kinds[n.ID]
		switch {
		case k.Empty():
			continue
		case isRoot[n.ID]:
			if !explicit {
				continue
			}
		case !opts.Kinds.Empty() && !k.Intersects(opts.Kinds):
			continue
		}

		mp := byID[n.ID]
		pkg := Package{
			Name:           mp.Name,
			Version:        versions[n.ID],
			Edition:        mp.Edition,
			Kinds:          k,
			IsLocal:        mp.Source == nil && within(opts.LocalRoot, mp.ManifestPath),
			Features:       features[n.ID],
			ManifestPath:   mp.ManifestPath,
			DependencyPath: describePath(paths[n.ID], byID),
		}
		pkg.LibTarget, pkg.BuildScript = targets(mp)
		for _, e := range g.OutEdges(n.ID) {
			pkg.Dependencies = append(pkg.Dependencies, Edge{
				Name:    e.Meta[metaName].(string),
				Package: byID[e.To].Name,
				Version: versions[e.To],
				Kinds:   e.Meta[metaKinds].(KindSet),
			})
		}
		pkgs = append(pkgs, pkg)
	}

	slices.SortFunc(pkgs, func(a, b Package) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), a.Version.Compare(b.Version))
	})
	return pkgs, nil
}

func rootIDs(md *Metadata, names []string) (ids []string, explicit bool, err error) {
	if len(names) == 0 {
		return md.WorkspaceMembers, false, nil
	}
	for _, name := range names {
		found := false
		for _, p := range md.Packages {
			if p.Name == name {
				ids = append(ids, p.ID)
				found = true
			}
		}
		if !found {
			return nil, true, errors.New(errors.ErrCodeInvalidInput, "root package %q not found in resolved graph", name)
		}
	}
	return ids, true, nil
}

// edgeKinds returns the kinds of a resolved edge. Cargo before 1.41 did
// not report dep_kinds; such edges are normal.
func edgeKinds(d MetadataNodeDep) KindSet {
	if len(d.DepKinds) == 0 {
		return KindsOf(Normal)
	}
	var s KindSet
	for _, dk := range d.DepKinds {
		s = s.With(parseKind(dk.Kind))
	}
	return s
}

func propagateKinds(g *dag.DAG, roots []string) map[string]KindSet {
	kinds := make(map[string]KindSet, g.NodeCount())
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		kinds[r] = kinds[r].With(Normal)
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.OutEdges(id) {
			ek := e.Meta[metaKinds].(KindSet)
			var add KindSet
			if ek.Has(Normal) {
				add |= kinds[id]
			}
			if ek.Has(Build) {
				add = add.With(Build)
			}
			if ek.Has(Dev) {
				add = add.With(Dev)
			}
			if merged := kinds[e.To] | add; merged != kinds[e.To] {
				kinds[e.To] = merged
				queue = append(queue, e.To)
			}
		}
	}
	return kinds
}

func describePath(path []dag.Edge, byID map[string]*MetadataPackage) []string {
	if len(path) == 0 {
		return nil
	}
	lines := make([]string, len(path))
	for i, e := range path {
		from, to := byID[e.From], byID[e.To]
		lines[i] = fmt.Sprintf("%s %s -> %s %s (%s)", from.Name, from.Version, to.Name, to.Version, e.Meta[metaKinds])
	}
	return lines
}

func targets(p *MetadataPackage) (lib *LibTarget, buildScript string) {
	for _, t := range p.Targets {
		switch {
		case lib == nil && isLibKind(t.Kind):
			lib = &LibTarget{
				Root:      t.SrcPath,
				CrateName: strings.ReplaceAll(t.Name, "-", "_"),
				ProcMacro: slices.Contains(t.Kind, "proc-macro"),
			}
		case buildScript == "" && slices.Contains(t.Kind, "custom-build"):
			buildScript = t.SrcPath
		}
	}
	return lib, buildScript
}

func isLibKind(kinds []string) bool {
	for _, k := range kinds {
		switch k {
		case "lib", "rlib", "dylib", "proc-macro":
			return true
		}
	}
	return false
}

// within reports whether path is inside root. An empty root matches
// everything. cargo reports paths with symlinks resolved, so both sides
// are compared again after resolving when the plain comparison fails.
func within(root, path string) bool {
	if root == "" {
		return true
	}
	return contains(filepath.Clean(root), filepath.Clean(path)) ||
		contains(RealPath(root), RealPath(path))
}

func contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RealPath returns path with symlinks resolved. A path that cannot be
// resolved, e.g. because it does not exist yet, is only cleaned.
func RealPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
