package manifest

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crategen/pkg/crates"
	"github.com/matzehuels/crategen/pkg/errors"
)

// Name and version of the synthetic root package cargo resolves.
const (
	RootPackageName    = "chromium"
	RootPackageVersion = "0.1.0"
)

// CargoManifest is the synthetic Cargo.toml.
type CargoManifest struct {
	Package      CargoPackage                     `toml:"package"`
	Workspace    map[string]any                   `toml:"workspace"`
	Dependencies map[string]CargoDependency       `toml:"dependencies"`
	Patch        map[string]map[string]CargoPatch `toml:"patch,omitempty"`
}

// CargoPackage is the [package] table.
type CargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

// CargoDependency carries only the keys cargo understands.
type CargoDependency struct {
	Version         string   `toml:"version"`
	DefaultFeatures *bool    `toml:"default-features,omitempty"`
	Features        []string `toml:"features,omitempty"`
}

// CargoPatch redirects a registry crate to a vendored path.
type CargoPatch struct {
	Path    string `toml:"path"`
	Package string `toml:"package"`
}

// PatchSpecification describes one vendored crate for [patch.crates-io].
type PatchSpecification struct {
	PackageName string
	PatchName   string
	Path        string
}

// PatchesFor returns one patch per inventory entry, in inventory order.
func PatchesFor(inv crates.Inventory) []PatchSpecification {
	patches := make([]PatchSpecification, 0, len(inv))
	for _, e := range inv {
		patches = append(patches, PatchSpecification{
			PackageName: e.Crate.Name,
			PatchName:   e.Crate.PatchName(),
			Path:        e.Crate.CratePath(),
		})
	}
	return patches
}

// GenerateCargoManifest builds the synthetic project for m. Call
// [ThirdPartyManifest.MergeDevDependencies] first so dev entries resolve
// too.
func GenerateCargoManifest(m *ThirdPartyManifest, patches []PatchSpecification) *CargoManifest {
	cm := &CargoManifest{
		Package: CargoPackage{
			Name:    RootPackageName,
			Version: RootPackageVersion,
			Edition: "2021",
		},
		Workspace:    map[string]any{},
		Dependencies: make(map[string]CargoDependency, len(m.Dependencies)),
	}

	for _, name := range slices.Sorted(maps.Keys(m.Dependencies)) {
		switch d := m.Dependencies[name].(type) {
		case ShortDependency:
			cm.Dependencies[name] = CargoDependency{Version: d.Version}
		case FullDependency:
			cm.Dependencies[name] = CargoDependency{
				Version:         d.Version,
				DefaultFeatures: d.DefaultFeatures,
				Features:        d.Features,
			}
		}
	}

	if len(patches) > 0 {
		crateIO := make(map[string]CargoPatch, len(patches))
		for _, p := range patches {
			crateIO[p.PatchName] = CargoPatch{Path: p.Path, Package: p.PackageName}
		}
		cm.Patch = map[string]map[string]CargoPatch{"crates-io": crateIO}
	}
	return cm
}

// Encode writes cm as TOML preceded by the autogenerated header.
func (cm *CargoManifest) Encode(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", AutogeneratedHeader)
	if err := toml.NewEncoder(&buf).Encode(cm); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode Cargo.toml")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCargoProject writes dir/Cargo.toml and an empty dir/src/main.rs so
// cargo treats dir as a binary package.
func WriteCargoProject(dir string, cm *CargoManifest) error {
	var buf bytes.Buffer
	if err := cm.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write synthetic Cargo.toml")
	}

	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", srcDir)
	}
	mainRS := fmt.Sprintf("// %s\n", AutogeneratedHeader)
	if err := os.WriteFile(filepath.Join(srcDir, "main.rs"), []byte(mainRS), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write synthetic main.rs")
	}
	return nil
}
