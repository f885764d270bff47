package gn

import (
	"path/filepath"
	"slices"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/manifest"
)

// ThirdPartyRuleName is the target name of every vendored crate's library.
const ThirdPartyRuleName = "lib"

// FromThirdPartyDeps builds one file per vendored crate from a reconciled
// graph. Dependencies on crates missing from inv are skipped; dev edges are
// never built.
//
// The result is checked against inv once more: a crate without a build
// file fails with SYNTHESIS_MISMATCH, which signals a bug rather than
// drift since reconciliation already passed.
func FromThirdPartyDeps(pkgs []deps.Package, inv crates.Inventory, md manifest.Metadata, layout Layout) (map[crates.VendoredCrate]*BuildFile, error) {
	dirs := make(map[crates.VendoredCrate]string, len(inv))
	for _, e := range inv {
		dirs[e.Crate] = e.Path
	}
	libNames := make(map[crates.VendoredCrate]string, len(pkgs))
	for _, p := range pkgs {
		if p.LibTarget != nil {
			libNames[p.ThirdPartyCrateID()] = p.LibTarget.CrateName
		}
	}

	files := make(map[crates.VendoredCrate]*BuildFile, len(inv))
	for i := range pkgs {
		p := &pkgs[i]
		id := p.ThirdPartyCrateID()
		dir, ok := dirs[id]
		if !ok {
			continue
		}
		bf := &BuildFile{}
		if p.LibTarget != nil {
			bf.Rules = append(bf.Rules, thirdPartyRule(p, dir, md[id], md.Visibility(id), dirs, libNames, layout))
		}
		files[id] = bf
	}

	var diags errors.Diagnostics
	for id := range files {
		if !inv.Contains(id) {
			diags.Add(errors.New(errors.ErrCodeSynthesisMismatch, "generated a build file for %s which was not discovered", id))
		}
	}
	for _, c := range inv.Crates() {
		if _, ok := files[c]; !ok {
			diags.Add(errors.New(errors.ErrCodeSynthesisMismatch, "discovered crate %s, but no build file was generated", c))
		}
	}
	if err := diags.Err(errors.ErrCodeSynthesisMismatch, "generated build rules don't match input dependencies"); err != nil {
		return nil, err
	}
	return files, nil
}

func thirdPartyRule(p *deps.Package, dir string, decl manifest.Declaration, vis crates.Visibility,
	dirs map[crates.VendoredCrate]string, libNames map[crates.VendoredCrate]string, layout Layout) Rule {
	r := Rule{
		Name:               ThirdPartyRuleName,
		CrateName:          p.LibTarget.CrateName,
		Epoch:              p.ThirdPartyCrateID().Epoch.Label(),
		CrateType:          crateType(p.LibTarget.ProcMacro),
		CrateRoot:          layout.Source(dir, p.LibTarget.Root),
		Edition:            p.Edition,
		PackageName:        p.Name,
		Version:            p.Version.String(),
		Features:           slices.Clone(p.Features),
		BuildScriptOutputs: slices.Clone(decl.BuildScriptOutputs),
		ExtraVariables:     decl.ExtraVariables,
		Visibility:         vis,
		VisibilityPattern:  layout.ThirdPartyPattern(),
	}
	if p.BuildScript != "" {
		r.BuildRoot = layout.Source(dir, p.BuildScript)
	}

	for _, e := range p.Dependencies {
		target := e.CrateID()
		depDir, ok := dirs[target]
		if !ok {
			continue
		}
		label := layout.Label(depDir) + ":" + ThirdPartyRuleName
		switch {
		case e.Kinds.Has(deps.Normal):
			if name, ok := libNames[target]; ok && name != e.Name {
				if r.AliasedDeps == nil {
					r.AliasedDeps = map[string]string{}
				}
				r.AliasedDeps[e.Name] = label + "__rlib"
			}
			r.Deps = addDep(r.Deps, label)
		case e.Kinds.Has(deps.Build):
			r.BuildDeps = addDep(r.BuildDeps, label)
		}
		if e.Kinds.Has(deps.Normal) && e.Kinds.Has(deps.Build) {
			r.BuildDeps = addDep(r.BuildDeps, label)
		}
	}
	slices.Sort(r.Deps)
	slices.Sort(r.BuildDeps)
	return r
}

// BuildFilePath returns the BUILD.gn path of a vendored crate directory.
func BuildFilePath(crateDir string) string {
	return filepath.Join(crateDir, "BUILD.gn")
}
