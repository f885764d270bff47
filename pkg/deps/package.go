package deps

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/crates"
)

// Package is one resolved package of the normalized graph.
type Package struct {
	Name    string
	Version *semver.Version
	Edition string

	// Kinds are the dependency kinds the package is reached through. Roots
	// count as Normal.
	Kinds KindSet

	// IsLocal is true when cargo bound the package to a path on disk
	// rather than an upstream registry.
	IsLocal bool

	LibTarget   *LibTarget
	BuildScript string // custom-build source path, empty if none
	Features    []string

	Dependencies []Edge

	// DependencyPath lists the edges from a root to this package, one per
	// line, e.g. "chromium 0.1.0 -> serde 1.0.195 (normal)". Empty for roots.
	DependencyPath []string

	ManifestPath string
}

// LibTarget is the library target of a package.
type LibTarget struct {
	Root      string // path of the crate root source file
	CrateName string // name used in `extern crate`
	ProcMacro bool
}

// Edge is a resolved dependency of a Package.
type Edge struct {
	Name    string // crate name the dependent uses, after renames
	Package string // package name of the dependency
	Version *semver.Version
	Kinds   KindSet
}

// ThirdPartyCrateID returns the vendored identity the package maps to.
func (p *Package) ThirdPartyCrateID() crates.VendoredCrate {
	return crates.VendoredCrate{Name: p.Name, Epoch: crates.EpochFromVersion(p.Version)}
}

// StdKey returns the std catalog key of the package.
func (p *Package) StdKey() crates.StdKey {
	return crates.NewStdKey(p.Name, p.Version)
}

// ID returns "name version".
func (p *Package) ID() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// CrateID returns the vendored identity of the edge's target.
func (e Edge) CrateID() crates.VendoredCrate {
	return crates.VendoredCrate{Name: e.Package, Epoch: crates.EpochFromVersion(e.Version)}
}
