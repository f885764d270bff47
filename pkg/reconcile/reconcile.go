// Package reconcile cross-checks the vendored inventory against the
// resolved dependency graph.
//
// Four checks run in order and every finding is collected, so a single run
// reports all drift between third_party.toml, the vendored tree and cargo:
//
//  1. two resolved packages collapse onto one vendored identity
//  2. a resolved package has no vendored directory
//  3. a resolved package was bound to an upstream source instead of its
//     vendored copy
//  4. a vendored directory is not used by the resolved graph
//
// Build files must not be generated unless [Reconcile] returns nil.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
)

// Collision is a pair of resolved packages sharing one identity.
type Collision struct {
	Crate  crates.VendoredCrate
	First  *deps.Package
	Second *deps.Package
}

// Report holds the findings of each check.
type Report struct {
	Collisions []Collision
	Missing    []*deps.Package
	NonLocal   []*deps.Package
	Unused     []crates.VendoredCrate

	// Requested is the identity set of the resolved graph.
	Requested map[crates.VendoredCrate]*deps.Package
}

// Check runs all four checks without stopping at the first finding.
func Check(inv crates.Inventory, pkgs []deps.Package) *Report {
	r := &Report{Requested: make(map[crates.VendoredCrate]*deps.Package, len(pkgs))}
	present := inv.Set()

	for i := range pkgs {
		p := &pkgs[i]
		id := p.ThirdPartyCrateID()
		if prev, dup := r.Requested[id]; dup {
			r.Collisions = append(r.Collisions, Collision{Crate: id, First: prev, Second: p})
			continue
		}
		r.Requested[id] = p
	}

	for i := range pkgs {
		p := &pkgs[i]
		switch {
		case !present[p.ThirdPartyCrateID()]:
			r.Missing = append(r.Missing, p)
		case !p.IsLocal:
			r.NonLocal = append(r.NonLocal, p)
		}
	}

	for _, c := range inv.Crates() {
		if _, ok := r.Requested[c]; !ok {
			r.Unused = append(r.Unused, c)
		}
	}
	return r
}

// OK reports whether the report has no findings.
func (r *Report) OK() bool {
	return len(r.Collisions) == 0 && len(r.Missing) == 0 && len(r.NonLocal) == 0 && len(r.Unused) == 0
}

// Len returns the total number of findings.
func (r *Report) Len() int {
	return len(r.Collisions) + len(r.Missing) + len(r.NonLocal) + len(r.Unused)
}

// Diagnostics converts the findings into errors, in check order.
func (r *Report) Diagnostics() errors.Diagnostics {
	var d errors.Diagnostics
	for _, c := range r.Collisions {
		d.Add(errors.New(errors.ErrCodeEpochCollision,
			"found another requested package with the same name and epoch: %s and %s both map to %s",
			c.First.ID(), c.Second.ID(), c.Crate))
	}
	for _, p := range r.Missing {
		msg := fmt.Sprintf("missing dependency: %s", p.ID())
		for _, edge := range p.DependencyPath {
			msg += "\n    " + edge
		}
		d.Add(errors.New(errors.ErrCodeMissingVendoredUnit, "%s", msg))
	}
	for _, p := range r.NonLocal {
		d.Add(errors.New(errors.ErrCodeNonLocalResolution,
			"resolved %s to an upstream source; the vendored %s likely has the same epoch but something requires a newer version\n    resolved version: %s",
			p.ID(), p.ThirdPartyCrateID(), p.Version))
	}
	for _, c := range r.Unused {
		d.Add(errors.New(errors.ErrCodeUnusedVendoredUnit, "unused crate: %s", c))
	}
	return d
}

// Err returns nil when the report is clean, otherwise a
// RECONCILIATION_FAILED error wrapping every finding.
func (r *Report) Err() error {
	return r.Diagnostics().Err(errors.ErrCodeReconciliation, "dependency resolution failed")
}

// Reconcile runs [Check] and returns [Report.Err].
func Reconcile(inv crates.Inventory, pkgs []deps.Package) error {
	return Check(inv, pkgs).Err()
}

// String summarizes the report counts.
func (r *Report) String() string {
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(len(r.Collisions), "collisions")
	add(len(r.Missing), "missing")
	add(len(r.NonLocal), "non-local")
	add(len(r.Unused), "unused")
	if len(parts) == 0 {
		return "ok"
	}
	return strings.Join(parts, ", ")
}
