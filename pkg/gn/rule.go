package gn

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
)

// BuildFile is the content of one BUILD.gn.
type BuildFile struct {
	Rules []Rule
}

// Rule is a cargo_crate target.
type Rule struct {
	Name        string
	CrateName   string
	Epoch       string // epoch label, e.g. "1" or "0.3"; empty for std
	CrateType   string // "rlib" or "proc-macro"
	CrateRoot   string
	Edition     string
	PackageName string
	Version     string

	Features []string
	Deps     []string
	// AliasedDeps maps the crate name used in code to a target label when
	// it differs from the dependency's own crate name.
	AliasedDeps map[string]string

	BuildRoot          string
	BuildDeps          []string
	BuildScriptOutputs []string

	Rustflags []string
	Rustenv   []string
	Cfg       []string

	Visibility crates.Visibility
	// VisibilityPattern is the label pattern ThirdParty rules are
	// restricted to. Empty means no restriction is written.
	VisibilityPattern string

	// ExtraVariables is raw GN text inserted into the rule body.
	ExtraVariables string
}

// Testonly reports whether the rule is restricted to test targets.
func (r Rule) Testonly() bool {
	return r.Visibility == crates.TestOnlyAndThirdParty
}

// RestrictedTo returns the visibility pattern written for the rule, or ""
// when the rule is visible to all targets.
func (r Rule) RestrictedTo() string {
	if r.Visibility == crates.ThirdParty {
		return r.VisibilityPattern
	}
	return ""
}

// SortedAliases returns the alias keys in order.
func (r Rule) SortedAliases() []string {
	keys := make([]string, 0, len(r.AliasedDeps))
	for k := range r.AliasedDeps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Layout maps filesystem locations onto GN labels.
type Layout struct {
	Root       string // source root, "//"
	ThirdParty string // vendored crates, holding third_party.toml
	RustSrc    string // Rust library sources for the std build
	StdBuild   string // directory of the std BUILD.gn
}

// Label returns the source-absolute label of dir, e.g.
// "//third_party/rust/foo/v1". Paths outside the root are returned as-is.
func (l Layout) Label(dir string) string {
	rel, ok := inside(l.Root, dir)
	if !ok {
		return filepath.ToSlash(dir)
	}
	if rel == "." {
		return "//"
	}
	return "//" + filepath.ToSlash(rel)
}

// Source returns path as written in a build file located in dir.
func (l Layout) Source(dir, path string) string {
	if rel, ok := inside(dir, path); ok {
		return filepath.ToSlash(rel)
	}
	return l.Label(path)
}

// ThirdPartyPattern is the visibility pattern for ThirdParty crates.
func (l Layout) ThirdPartyPattern() string {
	return strings.TrimSuffix(l.Label(l.ThirdParty), "/") + "/*"
}

func inside(root, path string) (string, bool) {
	if root == "" {
		return "", false
	}
	if rel, ok := relative(filepath.Clean(root), filepath.Clean(path)); ok {
		return rel, true
	}
	return relative(deps.RealPath(root), deps.RealPath(path))
}

func relative(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func crateType(procMacro bool) string {
	if procMacro {
		return "proc-macro"
	}
	return "rlib"
}

// addDep appends label to deps unless present.
func addDep(deps []string, label string) []string {
	if slices.Contains(deps, label) {
		return deps
	}
	return append(deps, label)
}
