package deps

import (
	"encoding/json"

	"github.com/matzehuels/crategen/pkg/errors"
)

// Metadata is the subset of `cargo metadata --format-version 1` output
// crategen reads.
type Metadata struct {
	Packages         []MetadataPackage `json:"packages"`
	WorkspaceMembers []string          `json:"workspace_members"`
	Resolve          *MetadataResolve  `json:"resolve"`
	WorkspaceRoot    string            `json:"workspace_root"`
}

// MetadataPackage is one entry of "packages".
type MetadataPackage struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	ID           string               `json:"id"`
	Source       *string              `json:"source"`
	Edition      string               `json:"edition"`
	ManifestPath string               `json:"manifest_path"`
	Targets      []MetadataTarget     `json:"targets"`
	Dependencies []MetadataDependency `json:"dependencies"`
}

// MetadataTarget is a build target of a package.
type MetadataTarget struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
	SrcPath    string   `json:"src_path"`
	Edition    string   `json:"edition"`
}

// MetadataDependency is a declared (unresolved) dependency of a package.
type MetadataDependency struct {
	Name     string  `json:"name"`
	Req      string  `json:"req"`
	Kind     *string `json:"kind"`
	Rename   *string `json:"rename"`
	Optional bool    `json:"optional"`
}

// MetadataResolve is the "resolve" section: the concrete graph.
type MetadataResolve struct {
	Nodes []MetadataNode `json:"nodes"`
	Root  *string        `json:"root"`
}

// MetadataNode is one resolved package and its outgoing edges.
type MetadataNode struct {
	ID       string            `json:"id"`
	Deps     []MetadataNodeDep `json:"deps"`
	Features []string          `json:"features"`
}

// MetadataNodeDep is one resolved edge. Name is the crate name the
// dependent uses, after renames.
type MetadataNodeDep struct {
	Name     string            `json:"name"`
	Pkg      string            `json:"pkg"`
	DepKinds []MetadataDepKind `json:"dep_kinds"`
}

// MetadataDepKind is one kind an edge is declared with. Kind is null for
// normal dependencies.
type MetadataDepKind struct {
	Kind   *string `json:"kind"`
	Target *string `json:"target"`
}

// ParseMetadata decodes cargo metadata JSON.
func ParseMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "decode cargo metadata")
	}
	if md.Resolve == nil {
		return nil, errors.New(errors.ErrCodeExternalTool, "cargo metadata has no resolve graph")
	}
	return &md, nil
}
