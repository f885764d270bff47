// Package pipeline runs crategen end to end.
//
// This package wires the manifest, inventory, resolver, reconciler,
// synthesizer and commit writer together so the CLI (and tests) only deal
// with a [Runner] and a [Paths] value.
//
// # Third-party crates
//
// [Runner.GenerateThirdParty] runs, in order:
//
//  1. Parse third_party.toml and index its declarations
//  2. Scan the vendored crates on disk
//  3. Write the synthetic Cargo.toml that patches every requested crate to
//     its vendored copy
//  4. Resolve with cargo and normalize the result
//  5. Reconcile; any finding aborts the run before anything is written
//  6. Synthesize one BUILD.gn per vendored crate and commit them
//
// # Standard library
//
// [Runner.GenerateStd] resolves the Rust standard library from a fake root
// workspace, offline, starting at the "test" crate, and writes a single
// BUILD.gn.
//
// # Usage
//
//	paths := pipeline.NewPaths(root)
//	runner := pipeline.NewRunner(&deps.CargoResolver{}, commit.GNFormatter{}, logger)
//	result, err := runner.GenerateThirdParty(ctx, paths)
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crategen/pkg/deps"
	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/reconcile"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a CLI invocation.
type Options struct {
	Root    string // source root; resolved with ResolveRoot when empty
	ForStd  bool   // generate the std build file instead of third-party ones
	Cargo   string // cargo binary
	GN      string // gn binary
	Jobs    int    // concurrent gn format processes
	Verbose bool

	// Runtime options
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults fills in defaults and checks the result. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Cargo == "" {
		o.Cargo = deps.DefaultCargo()
	}
	if o.GN == "" {
		o.GN = "gn"
	}
	if o.Jobs == 0 {
		o.Jobs = runtime.NumCPU()
	}
	if o.Jobs < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "jobs must be positive, got %d", o.Jobs)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	root, err := ResolveRoot(o.Root)
	if err != nil {
		return err
	}
	o.Root = root
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a generation run.
type Result struct {
	// Packages is the normalized dependency graph.
	Packages []deps.Package

	// Report is the reconciliation report; nil for std runs.
	Report *reconcile.Report

	// Files lists the build files written.
	Files []string

	Stats Stats
}

// Stats contains timing and size information.
type Stats struct {
	Crates         int
	ResolveTime    time.Duration
	ReconcileTime  time.Duration
	SynthesizeTime time.Duration
	CommitTime     time.Duration
}
