package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/errors"
)

// AutogeneratedHeader is prepended, as a comment, to every generated file.
const AutogeneratedHeader = "!!! DO NOT EDIT -- Autogenerated by crategen from third_party.toml. Edit that file instead."

// Dependency is a third_party.toml entry: either a [ShortDependency] or a
// [FullDependency].
type Dependency interface {
	// Requirement returns the version requirement string.
	Requirement() string
	isDependency()
}

// ShortDependency is a bare version requirement: serde = "1".
type ShortDependency struct {
	Version string
}

// FullDependency is a table entry.
type FullDependency struct {
	Version         string
	DefaultFeatures *bool
	Features        []string

	// AllowFirstPartyUsage is true unless the manifest sets
	// allow-first-party-usage = false.
	AllowFirstPartyUsage bool
	// BuildScriptOutputs are files the crate's build.rs writes that GN must
	// know about.
	BuildScriptOutputs []string
	// GNVariablesLib is GN text spliced verbatim into the crate's rule.
	GNVariablesLib string
}

func (d ShortDependency) Requirement() string { return d.Version }
func (d FullDependency) Requirement() string  { return d.Version }

func (ShortDependency) isDependency() {}
func (FullDependency) isDependency()  {}

// DependencySpec holds the three dependency groups.
type DependencySpec struct {
	Dependencies      map[string]Dependency
	DevDependencies   map[string]Dependency
	BuildDependencies map[string]Dependency
}

// ThirdPartyManifest is a parsed third_party.toml.
type ThirdPartyManifest struct {
	Workspace map[string]any
	DependencySpec
}

type rawManifest struct {
	Workspace         map[string]any            `toml:"workspace"`
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
}

type rawFullDependency struct {
	Version              string   `toml:"version"`
	DefaultFeatures      *bool    `toml:"default-features"`
	Features             []string `toml:"features"`
	AllowFirstPartyUsage *bool    `toml:"allow-first-party-usage"`
	BuildScriptOutputs   []string `toml:"build-script-outputs"`
	GNVariablesLib       string   `toml:"gn-variables-lib"`
}

// Parse decodes third_party.toml. Unknown keys, entries without a version
// and invalid crate names fail with MALFORMED_MANIFEST.
func Parse(data []byte) (*ThirdPartyManifest, error) {
	var raw rawManifest
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedManifest, err, "could not parse third_party.toml")
	}

	m := &ThirdPartyManifest{Workspace: raw.Workspace}
	groups := []struct {
		name string
		raw  map[string]toml.Primitive
		dst  *map[string]Dependency
	}{
		{"dependencies", raw.Dependencies, &m.Dependencies},
		{"dev-dependencies", raw.DevDependencies, &m.DevDependencies},
		{"build-dependencies", raw.BuildDependencies, &m.BuildDependencies},
	}
	for _, g := range groups {
		deps := make(map[string]Dependency, len(g.raw))
		for name, prim := range g.raw {
			if err := errors.ValidateCrateName(name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedManifest, err, "[%s]", g.name)
			}
			dep, err := decodeDependency(md, prim)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedManifest, err, "[%s] %s", g.name, name)
			}
			deps[name] = dep
		}
		*g.dst = deps
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeMalformedManifest, "unknown keys in third_party.toml: %s", strings.Join(keys, ", "))
	}
	return m, nil
}

func decodeDependency(md toml.MetaData, prim toml.Primitive) (Dependency, error) {
	var short string
	if err := md.PrimitiveDecode(prim, &short); err == nil {
		return ShortDependency{Version: short}, nil
	}

	var full rawFullDependency
	if err := md.PrimitiveDecode(prim, &full); err != nil {
		return nil, fmt.Errorf("want a version string or a table: %w", err)
	}
	if full.Version == "" {
		return nil, fmt.Errorf("missing version")
	}
	for _, out := range full.BuildScriptOutputs {
		if err := errors.ValidateOutputName(out); err != nil {
			return nil, err
		}
	}
	dep := FullDependency{
		Version:              full.Version,
		DefaultFeatures:      full.DefaultFeatures,
		Features:             full.Features,
		AllowFirstPartyUsage: true,
		BuildScriptOutputs:   full.BuildScriptOutputs,
		GNVariablesLib:       full.GNVariablesLib,
	}
	if full.AllowFirstPartyUsage != nil {
		dep.AllowFirstPartyUsage = *full.AllowFirstPartyUsage
	}
	return dep, nil
}

// Declaration is everything the manifest says about one vendored crate.
type Declaration struct {
	Crate              crates.VendoredCrate
	Visibility         crates.Visibility
	BuildScriptOutputs []string
	ExtraVariables     string
}

// metadata extracts the four fields synthesis needs from an entry.
func metadata(dep Dependency) (req string, public bool, outputs []string, extra string) {
	switch d := dep.(type) {
	case ShortDependency:
		return d.Version, true, nil, ""
	case FullDependency:
		return d.Version, d.AllowFirstPartyUsage, d.BuildScriptOutputs, d.GNVariablesLib
	default:
		panic(fmt.Sprintf("manifest: unknown dependency type %T", dep))
	}
}

// Declarations returns one record per entry of the dev and runtime groups,
// dev entries first. Entries not visible to first-party code get
// [crates.ThirdParty]; otherwise dev entries get
// [crates.TestOnlyAndThirdParty] and runtime entries [crates.Public].
// Within a group records are sorted by crate name.
func (m *ThirdPartyManifest) Declarations() ([]Declaration, error) {
	var decls []Declaration
	walk := func(group map[string]Dependency, vis crates.Visibility) error {
		for _, name := range slices.Sorted(maps.Keys(group)) {
			req, public, outputs, extra := metadata(group[name])
			epoch, err := crates.EpochFromVersionReq(req)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "dependency %s", name)
			}
			d := Declaration{
				Crate:              crates.VendoredCrate{Name: name, Epoch: epoch},
				Visibility:         crates.ThirdParty,
				BuildScriptOutputs: outputs,
				ExtraVariables:     extra,
			}
			if public {
				d.Visibility = vis
			}
			decls = append(decls, d)
		}
		return nil
	}

	if err := walk(m.DevDependencies, crates.TestOnlyAndThirdParty); err != nil {
		return nil, err
	}
	if err := walk(m.Dependencies, crates.Public); err != nil {
		return nil, err
	}
	return decls, nil
}

// Metadata indexes declarations by crate identity.
type Metadata map[crates.VendoredCrate]Declaration

// Index keys decls by identity. A later declaration of the same crate
// replaces an earlier one, so runtime entries win over dev entries.
func Index(decls []Declaration) Metadata {
	md := make(Metadata, len(decls))
	for _, d := range decls {
		md[d.Crate] = d
	}
	return md
}

// Visibility returns the declared visibility of c. Crates only reached
// transitively are [crates.ThirdParty].
func (md Metadata) Visibility(c crates.VendoredCrate) crates.Visibility {
	if d, ok := md[c]; ok {
		return d.Visibility
	}
	return crates.ThirdParty
}

// MergeDevDependencies moves dev-dependencies into the runtime group.
// First-party tests link the production library rather than a separate
// test build, so both groups resolve together. When both groups name the
// same crate the dev entry replaces the runtime one. Calling it again is a
// no-op.
func (m *ThirdPartyManifest) MergeDevDependencies() {
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]Dependency, len(m.DevDependencies))
	}
	maps.Copy(m.Dependencies, m.DevDependencies)
	m.DevDependencies = map[string]Dependency{}
}
