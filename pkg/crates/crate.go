package crates

import (
	"cmp"
	"fmt"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VendoredCrate identifies a third-party crate directory: a name plus the
// epoch its vendored version belongs to.
type VendoredCrate struct {
	Name  string
	Epoch Epoch
}

// String returns "name epoch", e.g. "serde v1".
func (c VendoredCrate) String() string {
	return c.Name + " " + c.Epoch.String()
}

// Compare orders crates by name, then epoch.
func (c VendoredCrate) Compare(o VendoredCrate) int {
	return cmp.Or(strings.Compare(c.Name, o.Name), c.Epoch.Compare(o.Epoch))
}

// PatchName is the dependency key used in the synthetic Cargo.toml
// [patch.crates-io] table. It must be unique across epochs.
func (c VendoredCrate) PatchName() string {
	return c.Name + "_" + c.Epoch.String()
}

// BuildPath is the crate's directory relative to the vendored root, which
// holds the generated BUILD.gn.
func (c VendoredCrate) BuildPath() string {
	return path.Join(c.Name, c.Epoch.String())
}

// CratePath is the directory holding the crate's sources relative to the
// vendored root.
func (c VendoredCrate) CratePath() string {
	return path.Join(c.BuildPath(), "crate")
}

// Visibility controls which GN targets may depend on a crate.
type Visibility int

const (
	// ThirdParty crates may only be used by other vendored crates.
	ThirdParty Visibility = iota
	// TestOnlyAndThirdParty crates may be used by first-party tests.
	TestOnlyAndThirdParty
	// Public crates may be used by any first-party code.
	Public
)

// String returns the visibility name.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case TestOnlyAndThirdParty:
		return "test-only"
	default:
		return "third-party"
	}
}

// StdVendoredCrate identifies a crate vendored in the Rust source tree for
// building the standard library. Several versions of one crate may be
// vendored; IsLatest marks the one cargo vendor stored without a version
// suffix.
type StdVendoredCrate struct {
	Name     string
	Version  *semver.Version
	IsLatest bool
}

// StdKey is the lookup key for std crates. It ignores IsLatest.
type StdKey struct {
	Name    string
	Version string
}

// NewStdKey builds the lookup key for name at version v.
func NewStdKey(name string, v *semver.Version) StdKey {
	return StdKey{Name: name, Version: v.String()}
}

// Key returns the crate's lookup key.
func (c StdVendoredCrate) Key() StdKey {
	return NewStdKey(c.Name, c.Version)
}

// String returns "name version".
func (c StdVendoredCrate) String() string {
	return fmt.Sprintf("%s %s", c.Name, c.Version)
}
