// Package crates models vendored Rust crates and scans them from disk.
//
// # Identity
//
// A third-party crate is identified by its name and [Epoch], the semver
// compatibility bucket its version falls in:
//
//	1.2.3  -> v1
//	0.3.7  -> v0_3
//	0.0.5  -> v0_0_5
//
// Two versions with the same epoch can be satisfied by a single vendored
// copy, so a [VendoredCrate] is the unit that owns a directory and a
// BUILD.gn file. Crates with the same name but different epochs coexist.
//
// Standard-library crates vendored in the Rust source tree are identified by
// exact version instead ([StdVendoredCrate]).
//
// # Inventory
//
// [CollectThirdPartyCrates] walks the vendored tree, which is laid out as
//
//	third_party/rust/<name>/<epoch>/crate/...
//
// and returns one [Entry] per epoch directory, sorted by identity so the
// synthetic Cargo.toml generated from it is reproducible.
package crates
