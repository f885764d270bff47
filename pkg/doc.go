// Package pkg provides the core libraries for crategen, the GN build file
// generator for vendored Rust crates.
//
// # Overview
//
// A Chromium-style checkout declares its third-party Rust dependencies in
// third_party/rust/third_party.toml and vendors each crate under
// third_party/rust/<name>/<epoch>/. crategen keeps the two in sync with the
// graph cargo resolves and writes the BUILD.gn files GN consumes.
//
// # Architecture
//
//	third_party.toml          vendored tree
//	       ↓                        ↓
//	  [manifest]                [crates]
//	       ↓                        │
//	  synthetic Cargo.toml          │
//	       ↓                        │
//	  [deps] (cargo metadata,       │
//	   normalized over [dag])       │
//	       ↓                        ↓
//	       └──────→ [reconcile] ←───┘
//	                    ↓
//	                  [gn] (rules, rendering)
//	                    ↓
//	                [commit] (gn format, atomic writes)
//
// [pipeline] runs the whole flow for the CLI and for tests.
//
// # Main Packages
//
// [manifest] - third_party.toml parsing, per-crate metadata and the
// synthetic Cargo.toml with its [patch.crates-io] table.
//
// [crates] - Epochs, vendored crate identities and on-disk inventories, for
// both third-party crates and the crates vendored with the Rust sources.
//
// [deps] - Runs cargo metadata and reduces its output to the packages
// reachable from the chosen roots through the chosen dependency kinds.
//
// [dag] - Directed graph used for cycle checks, dependency paths and DOT/SVG
// output.
//
// [reconcile] - Cross-checks the vendored inventory against the resolved
// graph and reports every finding at once.
//
// [gn] - Build rules for third-party and std crates and their rendering.
//
// [commit] - Formats build files with gn and writes them in place.
//
// [errors] - Error codes and aggregated diagnostics.
//
// [observability] - Hooks for pipeline stages and external tool calls.
//
// # Testing
//
//	go test ./...
//
// Tests that execute fake cargo or gn binaries use shell scripts and are
// skipped on Windows.
package pkg
