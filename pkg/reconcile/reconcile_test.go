package reconcile

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
)

func pkg(name, version string, local bool) deps.Package {
	return deps.Package{
		Name:    name,
		Version: semver.MustParse(version),
		Kinds:   deps.KindsOf(deps.Normal),
		IsLocal: local,
	}
}

func vc(name string, e crates.Epoch) crates.VendoredCrate {
	return crates.VendoredCrate{Name: name, Epoch: e}
}

func inventory(cs ...crates.VendoredCrate) crates.Inventory {
	inv := make(crates.Inventory, len(cs))
	for i, c := range cs {
		inv[i] = crates.Entry{Crate: c, Path: "/vendor/" + c.BuildPath()}
	}
	return inv
}

var (
	v1   = crates.Epoch{Major: 1}
	v2   = crates.Epoch{Major: 2}
	v0_3 = crates.Epoch{Minor: 3}
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name  string
		inv   crates.Inventory
		pkgs  []deps.Package
		codes []errors.Code
	}{
		{
			name: "consistent",
			inv:  inventory(vc("bar", v0_3), vc("foo", v1)),
			pkgs: []deps.Package{pkg("bar", "0.3.1", true), pkg("foo", "1.2.0", true)},
		},
		{
			name:  "unused epoch",
			inv:   inventory(vc("foo", v1), vc("foo", v2)),
			pkgs:  []deps.Package{pkg("foo", "1.2.0", true)},
			codes: []errors.Code{errors.ErrCodeUnusedVendoredUnit},
		},
		{
			name:  "missing",
			inv:   inventory(vc("foo", v1)),
			pkgs:  []deps.Package{pkg("baz", "0.1.4", true), pkg("foo", "1.2.0", true)},
			codes: []errors.Code{errors.ErrCodeMissingVendoredUnit},
		},
		{
			name:  "upstream resolution",
			inv:   inventory(vc("foo", v1)),
			pkgs:  []deps.Package{pkg("foo", "1.9.0", false)},
			codes: []errors.Code{errors.ErrCodeNonLocalResolution},
		},
		{
			name: "epoch collision",
			inv:  inventory(vc("foo", v1)),
			pkgs: []deps.Package{pkg("foo", "1.2.0", true), pkg("foo", "1.9.0", false)},
			codes: []errors.Code{
				errors.ErrCodeEpochCollision,
				errors.ErrCodeNonLocalResolution,
			},
		},
		{
			name: "everything at once",
			inv:  inventory(vc("foo", v1), vc("old", v2)),
			pkgs: []deps.Package{pkg("foo", "1.9.0", false), pkg("new", "0.3.0", true)},
			codes: []errors.Code{
				errors.ErrCodeMissingVendoredUnit,
				errors.ErrCodeNonLocalResolution,
				errors.ErrCodeUnusedVendoredUnit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reconcile(tt.inv, tt.pkgs)
			if len(tt.codes) == 0 {
				if err != nil {
					t.Fatalf("Reconcile() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeReconciliation) {
				t.Fatalf("Reconcile() = %v, want RECONCILIATION_FAILED", err)
			}
			diags, ok := errors.DiagnosticsOf(err)
			if !ok {
				t.Fatal("error carries no diagnostics")
			}
			if diags.Len() != len(tt.codes) {
				t.Fatalf("got %d findings, want %d:\n%v", diags.Len(), len(tt.codes), diags)
			}
			for i, code := range tt.codes {
				if diags[i].Code != code {
					t.Errorf("finding %d = %s, want %s", i, diags[i].Code, code)
				}
			}
		})
	}
}

func TestCheckSetDifferences(t *testing.T) {
	inv := inventory(vc("a", v1), vc("b", v1), vc("c", v1))
	pkgs := []deps.Package{pkg("b", "1.0.0", true), pkg("c", "1.1.0", true), pkg("d", "1.0.0", true)}

	r := Check(inv, pkgs)
	if len(r.Unused) != 1 || r.Unused[0] != vc("a", v1) {
		t.Errorf("Unused = %v, want [a v1]", r.Unused)
	}
	if len(r.Missing) != 1 || r.Missing[0].Name != "d" {
		t.Errorf("Missing = %v, want [d]", r.Missing)
	}
	if r.OK() || r.Len() != 2 {
		t.Errorf("OK() = %v, Len() = %d", r.OK(), r.Len())
	}
	if got := r.String(); got != "1 missing, 1 unused" {
		t.Errorf("String() = %q", got)
	}
}

func TestMissingIncludesDependencyPath(t *testing.T) {
	p := pkg("baz", "0.1.4", true)
	p.DependencyPath = []string{
		"chromium 0.1.0 -> foo 1.2.0 (normal)",
		"foo 1.2.0 -> baz 0.1.4 (normal)",
	}
	err := Reconcile(nil, []deps.Package{p})
	diags, _ := errors.DiagnosticsOf(err)
	if diags.Len() != 1 {
		t.Fatalf("got %d findings", diags.Len())
	}
	msg := diags[0].Message
	for _, want := range append([]string{"missing dependency: baz 0.1.4"}, p.DependencyPath...) {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestNonLocalReportsResolvedVersion(t *testing.T) {
	r := Check(inventory(vc("foo", v1)), []deps.Package{pkg("foo", "1.9.0", false)})
	msg := r.Diagnostics()[0].Message
	if !strings.Contains(msg, "resolved version: 1.9.0") {
		t.Errorf("message %q lacks resolved version", msg)
	}
}
