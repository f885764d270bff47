package gn

import (
	"slices"
	"strings"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
)

// StdRoot is the package the std dependency tree is resolved from.
const StdRoot = "test"

// FromStdDeps builds the single std build file.
//
// Only the root and packages reached through normal edges are built; build
// and dev dependencies are skipped since flags come from cfg. Every
// non-local package with a library target must have its sources under
// layout.RustSrc and appear in catalog, otherwise synthesis fails with
// UNVENDORED_STD_DEPENDENCY.
func FromStdDeps(pkgs []deps.Package, catalog crates.StdCatalog, cfg *BuildConfig, layout Layout) (*BuildFile, error) {
	var kept []*deps.Package
	for i := range pkgs {
		p := &pkgs[i]
		if p.Name == StdRoot || p.Kinds.Has(deps.Normal) {
			kept = append(kept, p)
		}
	}

	names := make(map[crates.StdKey]string, len(kept))
	libNames := make(map[crates.StdKey]string, len(kept))
	for _, p := range kept {
		if p.LibTarget == nil {
			continue
		}
		name := p.Name
		if !p.IsLocal {
			if _, ok := inside(layout.RustSrc, p.LibTarget.Root); !ok {
				return nil, errors.New(errors.ErrCodeUnvendoredStdDependency,
					"found dependency that was not locally available: %s (%s)", p.ID(), p.LibTarget.Root)
			}
			vc, ok := catalog.Lookup(p.StdKey())
			if !ok {
				return nil, errors.New(errors.ErrCodeUnvendoredStdDependency,
					"resolved dependency does not match any vendored crate: %s", p.ID())
			}
			name = stdRuleName(vc)
		}
		names[p.StdKey()] = name
		libNames[p.StdKey()] = p.LibTarget.CrateName
	}

	bf := &BuildFile{}
	for _, p := range kept {
		name, ok := names[p.StdKey()]
		if !ok {
			continue
		}
		conf := cfg.For(p.Name)
		r := Rule{
			Name:        name,
			CrateName:   p.LibTarget.CrateName,
			CrateType:   crateType(p.LibTarget.ProcMacro),
			CrateRoot:   layout.Source(layout.StdBuild, p.LibTarget.Root),
			Edition:     p.Edition,
			PackageName: p.Name,
			Version:     p.Version.String(),
			Features:    mergeFeatures(p.Features, conf.Features),
			Rustflags:   conf.Rustflags,
			Rustenv:     conf.Rustenv,
			Cfg:         conf.Cfg,
			Visibility:  crates.Public,
		}
		for _, e := range p.Dependencies {
			if !e.Kinds.Has(deps.Normal) {
				continue
			}
			key := crates.NewStdKey(e.Package, e.Version)
			target, ok := names[key]
			if !ok {
				continue
			}
			label := ":" + target
			if libNames[key] != e.Name {
				if r.AliasedDeps == nil {
					r.AliasedDeps = map[string]string{}
				}
				r.AliasedDeps[e.Name] = label
			}
			r.Deps = addDep(r.Deps, label)
		}
		slices.Sort(r.Deps)
		bf.Rules = append(bf.Rules, r)
	}

	slices.SortFunc(bf.Rules, func(a, b Rule) int { return strings.Compare(a.Name, b.Name) })
	return bf, nil
}

// stdRuleName is the crate name for the newest vendored version and
// "<name>-<version>" with dots replaced for older ones.
func stdRuleName(c crates.StdVendoredCrate) string {
	if c.IsLatest {
		return c.Name
	}
	return c.Name + "-" + strings.NewReplacer(".", "_", "+", "_").Replace(c.Version.String())
}

func mergeFeatures(resolved, extra []string) []string {
	out := slices.Clone(resolved)
	for _, f := range extra {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
