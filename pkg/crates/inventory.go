package crates

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/crategen/pkg/errors"
)

// Entry is one vendored crate found on disk.
type Entry struct {
	Crate VendoredCrate
	Path  string // absolute path of the epoch directory
}

// Inventory is the set of vendored crates, sorted by identity.
type Inventory []Entry

// Crates returns the identities in inventory order.
func (inv Inventory) Crates() []VendoredCrate {
	out := make([]VendoredCrate, len(inv))
	for i, e := range inv {
		out[i] = e.Crate
	}
	return out
}

// Set returns the identities as a lookup set.
func (inv Inventory) Set() map[VendoredCrate]bool {
	set := make(map[VendoredCrate]bool, len(inv))
	for _, e := range inv {
		set[e.Crate] = true
	}
	return set
}

// Contains reports whether c is vendored.
func (inv Inventory) Contains(c VendoredCrate) bool {
	_, ok := slices.BinarySearchFunc(inv, c, func(e Entry, t VendoredCrate) int {
		return e.Crate.Compare(t)
	})
	return ok
}

// CollectThirdPartyCrates scans root for <name>/<epoch> directories.
// Directories whose names are not valid crate names, hidden directories and
// crate directories without any epoch subdirectory are ignored.
func CollectThirdPartyCrates(root string) (Inventory, error) {
	names, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read vendored crates in %s", root)
	}

	var inv Inventory
	for _, n := range names {
		if !n.IsDir() || strings.HasPrefix(n.Name(), ".") {
			continue
		}
		if errors.ValidateCrateName(n.Name()) != nil {
			continue
		}

		crateDir := filepath.Join(root, n.Name())
		epochs, err := os.ReadDir(crateDir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "read crate directory %s", crateDir)
		}
		for _, e := range epochs {
			if !e.IsDir() {
				continue
			}
			epoch, ok := ParseEpochDir(e.Name())
			if !ok {
				continue
			}
			inv = append(inv, Entry{
				Crate: VendoredCrate{Name: n.Name(), Epoch: epoch},
				Path:  filepath.Join(crateDir, e.Name()),
			})
		}
	}

	slices.SortFunc(inv, func(a, b Entry) int { return a.Crate.Compare(b.Crate) })
	return inv, nil
}

// StdCatalog maps std vendored crates by name and exact version.
type StdCatalog map[StdKey]StdVendoredCrate

// Lookup returns the vendored crate for name at version, if present.
func (c StdCatalog) Lookup(key StdKey) (StdVendoredCrate, bool) {
	v, ok := c[key]
	return v, ok
}

type vendoredCargoToml struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// CollectStdVendoredCrates reads <vendorDir>/*/Cargo.toml. cargo vendor
// stores the newest version of a crate as <name> and older ones as
// <name>-<version>; the former are marked IsLatest.
func CollectStdVendoredCrates(vendorDir string) (StdCatalog, error) {
	dirs, err := os.ReadDir(vendorDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read std vendor directory %s", vendorDir)
	}

	catalog := make(StdCatalog, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		manifestPath := filepath.Join(vendorDir, d.Name(), "Cargo.toml")
		var m vendoredCargoToml
		if _, err := toml.DecodeFile(manifestPath, &m); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", manifestPath)
		}
		v, err := semver.NewVersion(m.Package.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "invalid version in %s", manifestPath)
		}
		c := StdVendoredCrate{
			Name:     m.Package.Name,
			Version:  v,
			IsLatest: d.Name() == m.Package.Name,
		}
		catalog[c.Key()] = c
	}
	return catalog, nil
}
