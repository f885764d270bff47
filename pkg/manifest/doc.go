// Package manifest reads third_party.toml and writes the synthetic
// Cargo.toml used to resolve it.
//
// # third_party.toml
//
// The manifest declares the crates first-party code may use, in three
// groups mirroring Cargo.toml:
//
//	[dependencies]
//	serde = "1"
//	bindgen = { version = "0.69", allow-first-party-usage = false, build-script-outputs = ["bindings.rs"] }
//
//	[dev-dependencies]
//	rstest = "0.18"
//
// Entries are either a bare requirement ([ShortDependency]) or a table
// ([FullDependency]). Tables may carry the extra keys
// allow-first-party-usage, build-script-outputs and gn-variables-lib on top
// of cargo's own version, features and default-features. The
// [build-dependencies] group is accepted and ignored.
//
// # Declarations
//
// [ThirdPartyManifest.Declarations] turns every entry into one [Declaration]
// carrying the crate identity, its visibility and its GN extras; [Index]
// keys them by identity for synthesis.
//
// # Synthetic project
//
// [GenerateCargoManifest] builds a Cargo.toml whose [patch.crates-io] table
// redirects every vendored crate to its local path, so cargo resolves the
// manifest against what is on disk.
package manifest
