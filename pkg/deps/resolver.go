package deps

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/observability"
)

// ResolveOptions configures a single resolver invocation.
type ResolveOptions struct {
	// Offline restricts resolution to sources already on disk.
	Offline bool
}

// Resolver computes the dependency graph of the cargo project in dir.
type Resolver interface {
	Resolve(ctx context.Context, dir string, opts ResolveOptions) (*Metadata, error)
}

// CargoResolver runs `cargo metadata`.
type CargoResolver struct {
	// Cargo is the cargo binary. Defaults to $CARGO, then "cargo".
	Cargo string
	// Env is appended to the process environment.
	Env []string
}

// DefaultCargo returns $CARGO if set, otherwise "cargo".
func DefaultCargo() string {
	if c := os.Getenv("CARGO"); c != "" {
		return c
	}
	return "cargo"
}

// Resolve runs cargo in dir and decodes its output. A non-zero exit or
// unreadable output fails with EXTERNAL_TOOL_FAILURE carrying cargo's
// stderr.
func (r *CargoResolver) Resolve(ctx context.Context, dir string, opts ResolveOptions) (*Metadata, error) {
	bin := r.Cargo
	if bin == "" {
		bin = DefaultCargo()
	}
	args := []string{"metadata", "--format-version", "1"}
	if opts.Offline {
		args = append(args, "--offline")
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	observability.Tool().OnExec(ctx, "cargo", args)
	start := time.Now()
	err := cmd.Run()
	observability.Tool().OnExit(ctx, "cargo", time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "cargo metadata in %s: %s", dir, strings.TrimSpace(stderr.String()))
	}
	return ParseMetadata(stdout.Bytes())
}
