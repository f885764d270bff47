// Package gn describes and renders GN build files for Rust crates.
//
// # Overview
//
// A [BuildFile] is a list of cargo_crate [Rule]s. Two synthesizers build
// them from the normalized dependency graph:
//
//   - [FromThirdPartyDeps] produces one file per vendored crate, with the
//     visibility, build script outputs and extra GN variables declared in
//     third_party.toml
//   - [FromStdDeps] produces the single file that builds the Rust standard
//     library's dependencies, with flags taken from a [BuildConfig]
//
// [BuildFile.Render] emits unformatted GN text; `gn format` is applied when
// files are committed (see package commit).
//
// # Paths
//
// A [Layout] maps filesystem paths to GN labels. Sources inside the
// directory holding the build file are written relative to it; anything
// else is written source-absolute ("//third_party/...").
package gn
